package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"nostrdrive/internal/drive"
)

// S3 stores blobs as objects keyed by their SHA-256 hex digest under an
// optional key prefix. Unlike the teacher's vault, whose S3 backend was
// never implemented, this one is real: the AWS SDK's manager package
// gives it multipart-aware uploads for free; Get reads each object with
// a single GetObject call.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3 builds an S3 blob store for bucket, using the default AWS
// credential chain scoped to region.
func NewS3(ctx context.Context, bucket, prefix, region string) (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}, nil
}

func (s *S3) key(hash string) string {
	if s.prefix == "" {
		return hash
	}
	return s.prefix + "/" + hash
}

// Put buffers r to compute its SHA-256 (S3 has no read-ahead hashing
// primitive usable mid-stream) then uploads via the multipart-aware
// manager.Uploader.
func (s *S3) Put(r io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	ctx := context.Background()
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(hash)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("uploading to s3: %w", err)
	}
	return hash, nil
}

func (s *S3) Get(hash string, w io.Writer) error {
	ctx := context.Background()
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(hash)),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return drive.NewNotFound("blob %s", hash)
		}
		return fmt.Errorf("downloading from s3: %w", err)
	}
	defer out.Body.Close()

	_, err = io.Copy(w, out.Body)
	return err
}

func (s *S3) Delete(hash string) error {
	ctx := context.Background()
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(hash)),
	})
	if err != nil {
		return fmt.Errorf("deleting from s3: %w", err)
	}
	return nil
}

var _ drive.BlobStore = (*S3)(nil)
