// Code style follows sqlc's generated output, hand-authored here since
// the sqlc CLI cannot be invoked as part of this build. models.go holds
// the row shape for the single drive_events table; queries.go holds the
// prepared statements.
package sqlc

import "database/sql"

// DriveEvent is one row of the drive_events table.
type DriveEvent struct {
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
