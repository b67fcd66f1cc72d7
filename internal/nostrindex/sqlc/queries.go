package sqlc

import (
	"database/sql"
	"errors"
)

// UpsertEventParams bundles the arguments for UpsertEvent.
type UpsertEventParams struct {
	ID                  string
	Pubkey              string
	CreatedAt           int64
	Kind                int64
	Tags                string
	Content             string
	Sig                 string
	DecryptedType       string
	DecryptedPath       string
	DecryptedHash       string
	DecryptedSize       int64
	DecryptedFileType   string
	DecryptedEncryption sql.NullString
	SharedWith          string
	OriginalEventID     string
}

const upsertEvent = `
INSERT INTO drive_events (
	id, pubkey, created_at, kind, tags, content, sig,
	decrypted_type, decrypted_path, decrypted_hash, decrypted_size,
	decrypted_file_type, decrypted_encryption, shared_with, original_event_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	pubkey = excluded.pubkey,
	created_at = excluded.created_at,
	kind = excluded.kind,
	tags = excluded.tags,
	content = excluded.content,
	sig = excluded.sig,
	decrypted_type = excluded.decrypted_type,
	decrypted_path = excluded.decrypted_path,
	decrypted_hash = excluded.decrypted_hash,
	decrypted_size = excluded.decrypted_size,
	decrypted_file_type = excluded.decrypted_file_type,
	decrypted_encryption = excluded.decrypted_encryption,
	shared_with = excluded.shared_with,
	original_event_id = excluded.original_event_id
`

// UpsertEvent inserts or replaces the row for p.ID.
func (q *Queries) UpsertEvent(p UpsertEventParams) error {
	_, err := q.db.Exec(upsertEvent,
		p.ID, p.Pubkey, p.CreatedAt, p.Kind, p.Tags, p.Content, p.Sig,
		p.DecryptedType, p.DecryptedPath, p.DecryptedHash, p.DecryptedSize,
		p.DecryptedFileType, p.DecryptedEncryption, p.SharedWith, p.OriginalEventID,
	)
	return err
}

const getEventByID = `
SELECT id, pubkey, created_at, kind, tags, content, sig,
	decrypted_type, decrypted_path, decrypted_hash, decrypted_size,
	decrypted_file_type, decrypted_encryption, shared_with, original_event_id
FROM drive_events WHERE id = ?
`

// GetEventByID returns the row for id, or (nil, nil) if absent.
func (q *Queries) GetEventByID(id string) (*DriveEvent, error) {
	row := q.db.QueryRow(getEventByID, id)
	var e DriveEvent
	err := row.Scan(&e.ID, &e.Pubkey, &e.CreatedAt, &e.Kind, &e.Tags, &e.Content, &e.Sig,
		&e.DecryptedType, &e.DecryptedPath, &e.DecryptedHash, &e.DecryptedSize,
		&e.DecryptedFileType, &e.DecryptedEncryption, &e.SharedWith, &e.OriginalEventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const eventExists = `SELECT 1 FROM drive_events WHERE id = ?`

// EventExists reports whether a row for id is present.
func (q *Queries) EventExists(id string) (bool, error) {
	row := q.db.QueryRow(eventExists, id)
	var one int
	err := row.Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

const deleteEventByID = `DELETE FROM drive_events WHERE id = ?`

// DeleteEventByID removes the row for id. Deleting an absent id affects
// zero rows and is not an error.
func (q *Queries) DeleteEventByID(id string) error {
	_, err := q.db.Exec(deleteEventByID, id)
	return err
}

const listAllEvents = `
SELECT id, pubkey, created_at, kind, tags, content, sig,
	decrypted_type, decrypted_path, decrypted_hash, decrypted_size,
	decrypted_file_type, decrypted_encryption, shared_with, original_event_id
FROM drive_events
`

// ListAllEvents returns every row, for full-scan predicate evaluation
// and cleanup use.
func (q *Queries) ListAllEvents() ([]DriveEvent, error) {
	rows, err := q.db.Query(listAllEvents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DriveEvent
	for rows.Next() {
		var e DriveEvent
		if err := rows.Scan(&e.ID, &e.Pubkey, &e.CreatedAt, &e.Kind, &e.Tags, &e.Content, &e.Sig,
			&e.DecryptedType, &e.DecryptedPath, &e.DecryptedHash, &e.DecryptedSize,
			&e.DecryptedFileType, &e.DecryptedEncryption, &e.SharedWith, &e.OriginalEventID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const listEventsByPubkey = `
SELECT id, pubkey, created_at, kind, tags, content, sig,
	decrypted_type, decrypted_path, decrypted_hash, decrypted_size,
	decrypted_file_type, decrypted_encryption, shared_with, original_event_id
FROM drive_events WHERE pubkey = ?
`

// ListEventsByPubkey narrows the full scan by author, for callers whose
// filter set includes an equality constraint on pubkey.
func (q *Queries) ListEventsByPubkey(pubkey string) ([]DriveEvent, error) {
	rows, err := q.db.Query(listEventsByPubkey, pubkey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DriveEvent
	for rows.Next() {
		var e DriveEvent
		if err := rows.Scan(&e.ID, &e.Pubkey, &e.CreatedAt, &e.Kind, &e.Tags, &e.Content, &e.Sig,
			&e.DecryptedType, &e.DecryptedPath, &e.DecryptedHash, &e.DecryptedSize,
			&e.DecryptedFileType, &e.DecryptedEncryption, &e.SharedWith, &e.OriginalEventID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const getMaxCreatedAt = `SELECT COALESCE(MAX(created_at), 0) FROM drive_events`

// GetMaxCreatedAt returns the sync watermark: the greatest created_at
// currently stored, or 0 if the table is empty.
func (q *Queries) GetMaxCreatedAt() (int64, error) {
	row := q.db.QueryRow(getMaxCreatedAt)
	var max int64
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}
