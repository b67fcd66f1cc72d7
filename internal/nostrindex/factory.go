package nostrindex

import (
	"fmt"
	"path/filepath"

	"nostrdrive/internal/drive"
)

// Config is the tagged-union configuration for an Index backend.
type Config struct {
	Type string // "sqlite" or "memory"

	DataDir string // only used for type=sqlite
}

// New constructs a drive.Index for cfg.Type, namespaced by pubkeyHex —
// the index is per-account, keyed by the signer's own public key, per
// the account-switch design note.
func New(cfg Config, pubkeyHex string) (drive.Index, error) {
	switch cfg.Type {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite index requires data_dir to be set")
		}
		dbPath := filepath.Join(cfg.DataDir, pubkeyHex+".db")
		return NewSQLite(dbPath)
	default:
		return nil, fmt.Errorf("unknown index type: %s", cfg.Type)
	}
}
