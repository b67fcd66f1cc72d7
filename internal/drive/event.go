package drive

import "time"

// Event kinds used by this system, per the host ecosystem's kind
// registry: 5 is the generic deletion request, 9500 is this system's
// drive item kind.
const (
	KindDrive  = 9500
	KindDelete = 5
)

// Event is an immutable signed record distributed across relays. Id is
// the primary identity used throughout the system: a 32-byte hash (hex
// encoded) over the canonical serialization of
// [0, pubkey, created_at, kind, tags, content].
type Event struct {
	ID        string     `json:"id"`
	PubKey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig"`
}

// Tag returns the first tag whose first element matches name, or nil.
func (e *Event) Tag(name string) []string {
	for _, t := range e.Tags {
		if len(t) > 0 && t[0] == name {
			return t
		}
	}
	return nil
}

// TagValues returns the second element of every tag matching name.
func (e *Event) TagValues(name string) []string {
	var out []string
	for _, t := range e.Tags {
		if len(t) >= 2 && t[0] == name {
			out = append(out, t[1])
		}
	}
	return out
}

// HasPTag reports whether pubkey appears in any "p" tag.
func (e *Event) HasPTag(pubkey string) bool {
	for _, v := range e.TagValues("p") {
		if v == pubkey {
			return true
		}
	}
	return false
}

// EncryptionInfo describes how a file's bytes were encrypted. It travels
// only inside NIP-44-encrypted event content, never in a relay-visible
// tag.
type EncryptionInfo struct {
	Algorithm string `json:"encryption-algorithm"`
	Key       string `json:"decryption-key"`
	Nonce     string `json:"decryption-nonce"`
}

// DriveContent is the decrypted JSON body carried by a DRIVE event. Type
// discriminates File from Folder; folder content only ever populates
// Type and Path.
type DriveContent struct {
	Type       string `json:"type"` // "file" or "folder"
	Path       string `json:"path"`
	Hash       string `json:"hash,omitempty"`
	Size       int64  `json:"size,omitempty"`
	FileType   string `json:"file-type,omitempty"`
	Encryption *EncryptionInfo
}

// driveContentWire is the flattened JSON shape on the wire: encryption
// fields live alongside the rest rather than nested, per spec.md §4.C.
type driveContentWire struct {
	Type                string `json:"type"`
	Path                string `json:"path"`
	Hash                string `json:"hash,omitempty"`
	Size                int64  `json:"size,omitempty"`
	FileType            string `json:"file-type,omitempty"`
	EncryptionAlgorithm string `json:"encryption-algorithm,omitempty"`
	DecryptionKey       string `json:"decryption-key,omitempty"`
	DecryptionNonce     string `json:"decryption-nonce,omitempty"`
}

// IsFolder reports whether this content describes a folder.
func (c *DriveContent) IsFolder() bool { return c.Type == "folder" }

// IsFile reports whether this content describes a file.
func (c *DriveContent) IsFile() bool { return c.Type == "file" }

// DriveItem is the tagged union {File, Folder} presented to callers of
// the public API. Dispatch is by the IsFile/IsFolder tag rather than by
// type-switching on a class hierarchy, per the Design Notes.
type DriveItem struct {
	Path      string
	CreatedAt time.Time
	EventID   string

	IsFolder bool

	// File-only fields; zero-valued for folders.
	Hash       string
	Size       int64
	FileType   string
	Encryption *EncryptionInfo
}

// IndexRecord is what the local index stores per event: the event
// itself, its decrypted content, and fields derived during ingestion.
type IndexRecord struct {
	Event           Event
	DecryptedContent DriveContent
	SharedWith      string // recipient pubkey, for outbound share events
	OriginalEventID string // source file event id, for share events
}

func timeFromUnix(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

// ToDriveItem projects an IndexRecord into the DriveItem shape consumed
// by list/search/get_file_versions.
func (r *IndexRecord) ToDriveItem() DriveItem {
	item := DriveItem{
		Path:      r.DecryptedContent.Path,
		CreatedAt: time.Unix(r.Event.CreatedAt, 0).UTC(),
		EventID:   r.Event.ID,
		IsFolder:  r.DecryptedContent.IsFolder(),
	}
	if !item.IsFolder {
		item.Hash = r.DecryptedContent.Hash
		item.Size = r.DecryptedContent.Size
		item.FileType = r.DecryptedContent.FileType
		item.Encryption = r.DecryptedContent.Encryption
	}
	return item
}

// ChangeType enumerates the notifications emitted by drive operations and
// the sync engine.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeDeleted ChangeType = "deleted"
	ChangeUpdated ChangeType = "updated"
	ChangeShared  ChangeType = "shared"
)

// ChangeNotification is emitted on the change stream in arrival order.
type ChangeNotification struct {
	Type      ChangeType
	Path      string
	Timestamp time.Time
}

// SharePointer is the TLV payload encoded in bech32 with HRP "nevent".
type SharePointer struct {
	EventID string   // 32 bytes, type 0, required
	Relays  []string // type 1, zero or more
	Author  string   // 32 bytes, type 2, optional (empty if absent)
	Kind    *int     // type 3, optional, exactly 4 bytes big-endian
}

// FileMetadata is the caller-facing result of upload_file and
// access_shared_file.
type FileMetadata struct {
	EventID    string
	Path       string
	Hash       string
	Size       int64
	FileType   string
	Encryption *EncryptionInfo
	CreatedAt  time.Time
}

// SharedFileAccess is the programmatic surface returned by
// parse_share_link.
type SharedFileAccess struct {
	EventID             string
	Relays              []string
	Author              string
	Kind                int
	EncodedPrivateKey   string
	IsPasswordProtected bool
	Nevent              string
}
