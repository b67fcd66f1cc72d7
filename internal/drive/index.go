package drive

// Index is the durable local store of IndexRecord keyed by event id. It
// is logically single-writer: the sync engine and drive operations all
// serialize their mutations through one Index instance.
//
// Secondary access is by composable Filter values for the common
// equality lookups, falling back to an arbitrary Predicate closure for
// tag scans and path-prefix scans, per the Design Notes.
type Index interface {
	// Put upserts a record keyed by its event id. Re-ingestion of the
	// same event id is idempotent: the existing record is left as-is by
	// callers who check Has first, but Put itself always overwrites.
	Put(record *IndexRecord) error

	// Get returns the record for id, or nil if absent.
	Get(id string) (*IndexRecord, error)

	// Has reports whether id is already present, without fetching the
	// full record.
	Has(id string) (bool, error)

	// Delete removes the record for id. Deleting an absent id is a
	// no-op, consistent with idempotent deletion.
	Delete(id string) error

	// Query returns every record matching all of the given Filters,
	// applying any Predicate last, sorted by descending created_at with
	// ties broken by ascending event id for determinism. limit <= 0
	// means unlimited.
	Query(filters []Filter, predicate Predicate, limit int) ([]*IndexRecord, error)

	// Watermark returns the highest created_at currently stored, or 0 if
	// the index is empty.
	Watermark() (int64, error)

	// Scan returns every record in the index, for cleanup/maintenance
	// use (e.g. account switches, migrations).
	Scan() ([]*IndexRecord, error)

	// Close releases any resources held by the index.
	Close() error
}

// FilterField names the equality-filterable fields of an IndexRecord.
type FilterField string

const (
	FieldPubKey        FilterField = "pubkey"
	FieldDecryptedType FilterField = "type"
	FieldPath          FilterField = "path"
)

// Filter is a single equality constraint evaluated by the Index.
type Filter struct {
	Field FilterField
	Value string
}

// Predicate is an arbitrary closure evaluated over the whole record, used
// for tag scans and path-prefix scans that a plain equality Filter can't
// express.
type Predicate func(record *IndexRecord) bool

// Matches reports whether record satisfies every filter.
func (f Filter) Matches(record *IndexRecord) bool {
	switch f.Field {
	case FieldPubKey:
		return record.Event.PubKey == f.Value
	case FieldDecryptedType:
		return record.DecryptedContent.Type == f.Value
	case FieldPath:
		return record.DecryptedContent.Path == f.Value
	default:
		return false
	}
}

// MatchAll reports whether record satisfies every filter in filters.
func MatchAll(record *IndexRecord, filters []Filter) bool {
	for _, f := range filters {
		if !f.Matches(record) {
			return false
		}
	}
	return true
}
