package app

import (
	"context"
	"fmt"
	"os"

	"nostrdrive/internal/blobstore"
	"nostrdrive/internal/config"
	"nostrdrive/internal/drive"
	"nostrdrive/internal/identity"
	"nostrdrive/internal/nostrcrypto"
	"nostrdrive/internal/nostrindex"
	"nostrdrive/internal/relaytransport"
)

// DriveApp is the application layer between the CLI and drive.Service.
// It constructs all dependencies from config, starts the sync engine,
// and manages their lifecycle on Close.
type DriveApp struct {
	cfg     *config.Config
	index   drive.Index
	relay   drive.RelayClient
	service *drive.Service
	engine  *drive.SyncEngine
	logFile *os.File
}

// NewDriveApp unlocks the local identity with passphrase, wires every
// collaborator from cfg, starts the sync engine against ctx, and
// returns a fully running DriveApp. The caller must call Close when
// done.
func NewDriveApp(ctx context.Context, cfg *config.Config, passphrase string) (*DriveApp, error) {
	ks := identity.NewKeyStore(cfg.Identity.KeyPath)
	privateKeyHex, err := ks.Unlock(passphrase)
	if err != nil {
		return nil, fmt.Errorf("unlocking identity: %w", err)
	}

	id, err := nostrcrypto.NewIdentity(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("loading identity: %w", err)
	}
	sealer := nostrcrypto.NewSealer(id)

	idx, err := nostrindex.New(nostrindex.Config{Type: cfg.Index.Type, DataDir: cfg.Index.DataDir}, id.PubKey())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	blob, err := blobstore.New(ctx, blobstore.Config{
		Type:           cfg.Blob.Type,
		FilesystemRoot: cfg.Blob.FilesystemRoot,
		S3Bucket:       cfg.Blob.S3Bucket,
		S3Prefix:       cfg.Blob.S3Prefix,
		S3Region:       cfg.Blob.S3Region,
	})
	if err != nil {
		idx.Close()
		return nil, fmt.Errorf("creating blob store: %w", err)
	}

	relay, err := relaytransport.New(ctx, relaytransport.Config{Type: cfg.Relay.Type, URLs: cfg.Relay.URLs})
	if err != nil {
		idx.Close()
		return nil, fmt.Errorf("creating relay client: %w", err)
	}

	logger, logFile, err := newLogger(cfg.LogDir)
	if err != nil {
		idx.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	var relayFactory drive.RelayClientFactory
	var sealerFactory drive.SealerFactory = nostrcrypto.SealerFactory{}
	switch cfg.Relay.Type {
	case "memory":
		relayFactory = relaytransport.NewFactory(relay.(*relaytransport.Memory))
	default:
		relayFactory = relaytransport.WebSocketFactory{}
	}

	stream := drive.NewChangeStream()
	engine := drive.NewSyncEngine(relay, idx, sealer, id, log, stream)
	if err := engine.Start(ctx); err != nil {
		idx.Close()
		logFile.Close()
		return nil, fmt.Errorf("starting sync engine: %w", err)
	}

	svc := drive.NewService(drive.Config{
		Signer: id,
		Sealer: sealer,
		Relay:  relay,
		Blob:   blob,
		Index:  idx,
		Clock:  drive.RealClock{},
		Log:    log,
		Stream: stream,

		KeyGenerator:  nostrcrypto.KeyGenerator{},
		ShareKeyCodec: nostrcrypto.ShareKeyCodec{},
		SealerFactory: sealerFactory,
		RelayFactory:  relayFactory,
		DefaultRelays: cfg.Relay.URLs,
	})

	return &DriveApp{
		cfg:     cfg,
		index:   idx,
		relay:   relay,
		service: svc,
		engine:  engine,
		logFile: logFile,
	}, nil
}

// Service exposes the wired drive.Service for the CLI layer to call
// into.
func (a *DriveApp) Service() *drive.Service { return a.service }

// Close stops the sync engine and releases the index, relay, and log
// file.
func (a *DriveApp) Close() error {
	var firstErr error

	a.engine.Dispose()

	if err := a.index.Close(); err != nil {
		firstErr = fmt.Errorf("closing index: %w", err)
	}
	if err := a.relay.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing relay client: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
