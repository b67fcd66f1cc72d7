package nostrindex

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"nostrdrive/internal/drive"
	"nostrdrive/internal/nostrindex/migrations"
	"nostrdrive/internal/nostrindex/sqlc"
)

// SQLite is a drive.Index backed by a single drive_events table, per the
// persisted-index contract of the design's local-index component.
type SQLite struct {
	db      *sql.DB
	queries *sqlc.Queries
}

// NewSQLite opens (creating if absent) a SQLite database at path — a
// file path, or ":memory:" — and migrates it to the latest schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating index schema: %w", err)
	}
	return &SQLite{db: db, queries: sqlc.New(db)}, nil
}

// OpenConnection opens a SQLite connection configured with the PRAGMAs
// this index relies on. Exported for tests that need a raw connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return db, nil
}

func (s *SQLite) Put(record *drive.IndexRecord) error {
	tagsJSON, err := json.Marshal(record.Event.Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	var encJSON sql.NullString
	if record.DecryptedContent.Encryption != nil {
		raw, err := json.Marshal(record.DecryptedContent.Encryption)
		if err != nil {
			return fmt.Errorf("marshaling encryption info: %w", err)
		}
		encJSON = sql.NullString{String: string(raw), Valid: true}
	}

	return s.queries.UpsertEvent(sqlc.UpsertEventParams{
		ID:                  record.Event.ID,
		Pubkey:              record.Event.PubKey,
		CreatedAt:           record.Event.CreatedAt,
		Kind:                int64(record.Event.Kind),
		Tags:                string(tagsJSON),
		Content:             record.Event.Content,
		Sig:                 record.Event.Sig,
		DecryptedType:       record.DecryptedContent.Type,
		DecryptedPath:       record.DecryptedContent.Path,
		DecryptedHash:       record.DecryptedContent.Hash,
		DecryptedSize:       record.DecryptedContent.Size,
		DecryptedFileType:   record.DecryptedContent.FileType,
		DecryptedEncryption: encJSON,
		SharedWith:          record.SharedWith,
		OriginalEventID:     record.OriginalEventID,
	})
}

func (s *SQLite) Get(id string) (*drive.IndexRecord, error) {
	row, err := s.queries.GetEventByID(id)
	if err != nil {
		return nil, fmt.Errorf("querying event: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	return rowToRecord(row)
}

func (s *SQLite) Has(id string) (bool, error) {
	ok, err := s.queries.EventExists(id)
	if err != nil {
		return false, fmt.Errorf("checking event existence: %w", err)
	}
	return ok, nil
}

func (s *SQLite) Delete(id string) error {
	if err := s.queries.DeleteEventByID(id); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

// Query narrows via SQL when a filter set includes an equality
// constraint on pubkey (the only secondary index this implementation
// takes advantage of at the SQL layer), then applies the remaining
// filters and predicate in Go over the candidate rows.
func (s *SQLite) Query(filters []drive.Filter, predicate drive.Predicate, limit int) ([]*drive.IndexRecord, error) {
	rows, err := s.candidateRows(filters)
	if err != nil {
		return nil, err
	}

	var out []*drive.IndexRecord
	for i := range rows {
		record, err := rowToRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		if !drive.MatchAll(record, filters) {
			continue
		}
		if predicate != nil && !predicate(record) {
			continue
		}
		out = append(out, record)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Event.CreatedAt != out[j].Event.CreatedAt {
			return out[i].Event.CreatedAt > out[j].Event.CreatedAt
		}
		return out[i].Event.ID < out[j].Event.ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *SQLite) candidateRows(filters []drive.Filter) ([]sqlc.DriveEvent, error) {
	for _, f := range filters {
		if f.Field == drive.FieldPubKey {
			return s.queries.ListEventsByPubkey(f.Value)
		}
	}
	return s.queries.ListAllEvents()
}

func (s *SQLite) Watermark() (int64, error) {
	max, err := s.queries.GetMaxCreatedAt()
	if err != nil {
		return 0, fmt.Errorf("computing watermark: %w", err)
	}
	return max, nil
}

func (s *SQLite) Scan() ([]*drive.IndexRecord, error) {
	rows, err := s.queries.ListAllEvents()
	if err != nil {
		return nil, fmt.Errorf("scanning index: %w", err)
	}
	out := make([]*drive.IndexRecord, 0, len(rows))
	for i := range rows {
		record, err := rowToRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func rowToRecord(row *sqlc.DriveEvent) (*drive.IndexRecord, error) {
	var tags [][]string
	if err := json.Unmarshal([]byte(row.Tags), &tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}

	var encInfo *drive.EncryptionInfo
	if row.DecryptedEncryption.Valid {
		encInfo = &drive.EncryptionInfo{}
		if err := json.Unmarshal([]byte(row.DecryptedEncryption.String), encInfo); err != nil {
			return nil, fmt.Errorf("unmarshaling encryption info: %w", err)
		}
	}

	return &drive.IndexRecord{
		Event: drive.Event{
			ID:        row.ID,
			PubKey:    row.Pubkey,
			CreatedAt: row.CreatedAt,
			Kind:      int(row.Kind),
			Tags:      tags,
			Content:   row.Content,
			Sig:       row.Sig,
		},
		DecryptedContent: drive.DriveContent{
			Type:       row.DecryptedType,
			Path:       row.DecryptedPath,
			Hash:       row.DecryptedHash,
			Size:       row.DecryptedSize,
			FileType:   row.DecryptedFileType,
			Encryption: encInfo,
		},
		SharedWith:      row.SharedWith,
		OriginalEventID: row.OriginalEventID,
	}, nil
}

var _ drive.Index = (*SQLite)(nil)
