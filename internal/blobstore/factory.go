package blobstore

import (
	"context"
	"fmt"

	"nostrdrive/internal/drive"
)

// Config is the tagged-union configuration for a BlobStore backend,
// mirroring the shape of the teacher's vault configuration.
type Config struct {
	Type string // "memory", "filesystem", or "s3"

	FilesystemRoot string

	S3Bucket string
	S3Prefix string
	S3Region string
}

// New constructs a drive.BlobStore for cfg.Type.
func New(ctx context.Context, cfg Config) (drive.BlobStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemory(), nil
	case "filesystem":
		if cfg.FilesystemRoot == "" {
			return nil, fmt.Errorf("filesystem blob store requires filesystem_root to be set")
		}
		return NewFilesystem(cfg.FilesystemRoot)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 blob store requires s3_bucket to be set")
		}
		return NewS3(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unknown blob store type: %s", cfg.Type)
	}
}
