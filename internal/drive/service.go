package drive

import (
	"bytes"
	"context"
	"sort"
	"strings"
)

// Service is the public API surface: list, create, upload, download,
// move, copy, delete, search, share, and open-share. It owns no state of
// its own beyond its collaborators — every mutation flows through the
// Index and, for network-visible effects, the RelayClient and BlobStore.
type Service struct {
	signer  Signer
	sealer  Sealer
	relay   RelayClient
	blob    BlobStore
	index   Index
	builder *EventBuilder
	clock   Clock
	log     Logger
	stream  *ChangeStream

	keygen        KeyGenerator
	keycodec      ShareKeyCodec
	sealerFactory SealerFactory
	relayFactory  RelayClientFactory
	defaultRelays []string
}

// Config bundles a Service's collaborators. Log, Clock and Stream default
// when nil. KeyGenerator, ShareKeyCodec, SealerFactory, RelayFactory and
// DefaultRelays are only required to call generate_share_link /
// access_shared_file / decode_share_key.
type Config struct {
	Signer Signer
	Sealer Sealer
	Relay  RelayClient
	Blob   BlobStore
	Index  Index
	Clock  Clock
	Log    Logger
	Stream *ChangeStream

	KeyGenerator  KeyGenerator
	ShareKeyCodec ShareKeyCodec
	SealerFactory SealerFactory
	RelayFactory  RelayClientFactory
	DefaultRelays []string
}

// NewService wires a Service handle. No package-level state is kept;
// every field of the returned Service is explicit, per the ambient-
// singleton design note.
func NewService(cfg Config) *Service {
	if cfg.Log == nil {
		cfg.Log = NewNopLogger()
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	if cfg.Stream == nil {
		cfg.Stream = NewChangeStream()
	}
	return &Service{
		signer:        cfg.Signer,
		sealer:        cfg.Sealer,
		relay:         cfg.Relay,
		blob:          cfg.Blob,
		index:         cfg.Index,
		builder:       NewEventBuilder(cfg.Signer, cfg.Sealer, cfg.Clock),
		clock:         cfg.Clock,
		log:           cfg.Log,
		stream:        cfg.Stream,
		keygen:        cfg.KeyGenerator,
		keycodec:      cfg.ShareKeyCodec,
		sealerFactory: cfg.SealerFactory,
		relayFactory:  cfg.RelayFactory,
		defaultRelays: cfg.DefaultRelays,
	}
}

// Changes returns a channel of future change notifications and an
// unsubscribe function, shared with any SyncEngine constructed over the
// same ChangeStream.
func (s *Service) Changes() (<-chan ChangeNotification, func()) {
	return s.stream.Subscribe()
}

func (s *Service) me() string { return s.signer.PubKey() }

func requireAbsolute(path string) error {
	if !IsAbsolute(path) {
		return NewInvalidArgument("path must be absolute: %q", path)
	}
	return nil
}

func isAccessible(record *IndexRecord, me string) bool {
	return record.Event.PubKey == me || record.Event.HasPTag(me)
}

func isMine(record *IndexRecord, me string) bool {
	return record.Event.PubKey == me
}

// isNewer reports whether a supersedes b under the current-version rule:
// greatest created_at, ties broken by the lexicographically greater
// event id.
func isNewer(a, b *IndexRecord) bool {
	if a.Event.CreatedAt != b.Event.CreatedAt {
		return a.Event.CreatedAt > b.Event.CreatedAt
	}
	return a.Event.ID > b.Event.ID
}

// reduceCurrentVersions keeps, per decrypted path, only the current
// version (invariant 2).
func reduceCurrentVersions(records []*IndexRecord) []*IndexRecord {
	best := make(map[string]*IndexRecord, len(records))
	for _, r := range records {
		path := r.DecryptedContent.Path
		if cur, ok := best[path]; !ok || isNewer(r, cur) {
			best[path] = r
		}
	}
	out := make([]*IndexRecord, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	return out
}

func toSortedItems(records []*IndexRecord) []DriveItem {
	items := make([]DriveItem, 0, len(records))
	for _, r := range records {
		items = append(items, r.ToDriveItem())
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items
}

func matchesMimeType(fileType string, wanted []string) bool {
	for _, w := range wanted {
		if strings.EqualFold(fileType, w) {
			return true
		}
	}
	return false
}

// List implements list(path, mime_types?, recursive?).
func (s *Service) List(path string, mimeTypes []string, recursive bool) ([]DriveItem, error) {
	if err := requireAbsolute(path); err != nil {
		return nil, err
	}
	path = Normalize(path)
	me := s.me()

	records, err := s.index.Query(nil, func(r *IndexRecord) bool {
		if !isAccessible(r, me) {
			return false
		}
		itemPath := r.DecryptedContent.Path
		switch {
		case recursive:
			if itemPath != path && !IsWithin(path, itemPath) {
				return false
			}
		default:
			if Dirname(itemPath) != path {
				return false
			}
		}
		if len(mimeTypes) > 0 {
			if !r.DecryptedContent.IsFile() || !matchesMimeType(r.DecryptedContent.FileType, mimeTypes) {
				return false
			}
		}
		return true
	}, 0)
	if err != nil {
		return nil, NewNetworkFailed("querying index", err)
	}

	return toSortedItems(reduceCurrentVersions(records)), nil
}

// GetFileVersions implements get_file_versions(path).
func (s *Service) GetFileVersions(path string) ([]DriveItem, error) {
	if err := requireAbsolute(path); err != nil {
		return nil, err
	}
	path = Normalize(path)
	me := s.me()

	filters := []Filter{
		{Field: FieldDecryptedType, Value: "file"},
		{Field: FieldPath, Value: path},
	}
	records, err := s.index.Query(filters, func(r *IndexRecord) bool {
		return isAccessible(r, me)
	}, 0)
	if err != nil {
		return nil, NewNetworkFailed("querying index", err)
	}

	items := make([]DriveItem, 0, len(records))
	for _, r := range records {
		items = append(items, r.ToDriveItem())
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].EventID > items[j].EventID
	})
	return items, nil
}

// CreateFolder implements create_folder(path).
func (s *Service) CreateFolder(ctx context.Context, path string) (*DriveItem, error) {
	if err := requireAbsolute(path); err != nil {
		return nil, err
	}
	path = Normalize(path)
	me := s.me()

	existing, err := s.currentAt(path, func(r *IndexRecord) bool { return isAccessible(r, me) })
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.DecryptedContent.IsFolder() {
		item := existing.ToDriveItem()
		return &item, nil
	}

	event, err := s.builder.BuildFolderEvent(path, me, nil)
	if err != nil {
		return nil, err
	}
	record := &IndexRecord{Event: *event, DecryptedContent: DriveContent{Type: "folder", Path: path}}
	if err := s.index.Put(record); err != nil {
		return nil, NewNetworkFailed("writing index", err)
	}
	if err := s.relay.Publish(ctx, event); err != nil {
		return nil, NewNetworkFailed("publishing folder event", err)
	}
	s.stream.Emit(ChangeNotification{Type: ChangeAdded, Path: path, Timestamp: s.clock.Now()})

	item := record.ToDriveItem()
	return &item, nil
}

// currentAt returns the current version at path matching predicate, or
// nil if none exists.
func (s *Service) currentAt(path string, predicate Predicate) (*IndexRecord, error) {
	records, err := s.index.Query([]Filter{{Field: FieldPath, Value: path}}, predicate, 0)
	if err != nil {
		return nil, NewNetworkFailed("querying index", err)
	}
	current := reduceCurrentVersions(records)
	if len(current) == 0 {
		return nil, nil
	}
	return current[0], nil
}

// UploadFile implements upload_file(bytes, path, mime?, encrypt=true).
func (s *Service) UploadFile(ctx context.Context, data []byte, path string, mimeType string, encrypt bool) (*FileMetadata, error) {
	if err := requireAbsolute(path); err != nil {
		return nil, err
	}
	path = Normalize(path)

	uploadBytes := data
	var encInfo *EncryptionInfo
	if encrypt {
		enc, err := Encrypt(data)
		if err != nil {
			return nil, err
		}
		uploadBytes = enc.Blob
		encInfo = EncodeEncryptionInfo(enc.Key, enc.Nonce)
	}

	hash, err := s.blob.Put(bytes.NewReader(uploadBytes), int64(len(uploadBytes)))
	if err != nil {
		return nil, NewNetworkFailed("uploading blob", err)
	}

	content := &DriveContent{
		Type:       "file",
		Path:       path,
		Hash:       hash,
		Size:       int64(len(uploadBytes)),
		FileType:   mimeType,
		Encryption: encInfo,
	}

	event, err := s.builder.BuildFileEvent(content, s.me(), nil)
	if err != nil {
		return nil, err
	}
	record := &IndexRecord{Event: *event, DecryptedContent: *content}
	if err := s.index.Put(record); err != nil {
		return nil, NewNetworkFailed("writing index", err)
	}
	if err := s.relay.Publish(ctx, event); err != nil {
		return nil, NewNetworkFailed("publishing file event", err)
	}
	s.stream.Emit(ChangeNotification{Type: ChangeAdded, Path: path, Timestamp: s.clock.Now()})

	return &FileMetadata{
		EventID:    event.ID,
		Path:       path,
		Hash:       hash,
		Size:       content.Size,
		FileType:   mimeType,
		Encryption: encInfo,
		CreatedAt:  timeFromUnix(event.CreatedAt),
	}, nil
}

// DownloadFile implements download_file(hash, key?, nonce?).
func (s *Service) DownloadFile(hash string, key, nonce []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.blob.Get(hash, &buf); err != nil {
		return nil, NewNetworkFailed("downloading blob", err)
	}
	data := buf.Bytes()

	if key == nil && nonce == nil {
		return data, nil
	}
	if len(key) != aesKeySize {
		return nil, NewCryptoFailed("key must be %d bytes, got %d", aesKeySize, len(key))
	}
	if len(nonce) != gcmNonceSize {
		return nil, NewCryptoFailed("nonce must be %d bytes, got %d", gcmNonceSize, len(nonce))
	}
	return Decrypt(data, key, nonce)
}

// deleteRecordByID removes id from the index, authorizing against me,
// and broadcasts the tombstone. It does not emit a change notification;
// callers that want one (DeleteByID) or a single aggregate one
// (DeleteByPath) do so themselves.
func (s *Service) deleteRecordByID(ctx context.Context, id string) (*IndexRecord, error) {
	record, err := s.index.Get(id)
	if err != nil {
		return nil, NewNetworkFailed("reading index", err)
	}
	if record == nil {
		return nil, nil
	}
	if record.Event.PubKey != s.me() {
		return nil, NewUnauthorized("event %s is not authored by the current identity", id)
	}
	if err := s.index.Delete(id); err != nil {
		return nil, NewNetworkFailed("deleting from index", err)
	}
	event, err := s.builder.BuildDeleteEvent([]string{id})
	if err != nil {
		return nil, err
	}
	if err := s.relay.Publish(ctx, event); err != nil {
		return nil, NewNetworkFailed("publishing delete event", err)
	}
	return record, nil
}

// DeleteByID implements delete_by_id(event_id). Deleting an absent id is
// a no-op, not an error.
func (s *Service) DeleteByID(ctx context.Context, eventID string) error {
	record, err := s.deleteRecordByID(ctx, eventID)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	s.stream.Emit(ChangeNotification{Type: ChangeDeleted, Path: record.DecryptedContent.Path, Timestamp: s.clock.Now()})
	return nil
}

// DeleteByPath implements delete_by_path(path), recursively cascading
// into a folder's children first.
func (s *Service) DeleteByPath(ctx context.Context, path string) error {
	if err := requireAbsolute(path); err != nil {
		return err
	}
	path = Normalize(path)
	me := s.me()

	targets, err := s.index.Query([]Filter{{Field: FieldPath, Value: path}}, func(r *IndexRecord) bool {
		return isMine(r, me)
	}, 0)
	if err != nil {
		return NewNetworkFailed("querying index", err)
	}
	if len(targets) == 0 {
		return nil
	}

	isFolder := false
	for _, t := range targets {
		if t.DecryptedContent.IsFolder() {
			isFolder = true
			break
		}
	}

	if isFolder {
		children, err := s.index.Query(nil, func(r *IndexRecord) bool {
			return isMine(r, me) && IsWithin(path, r.DecryptedContent.Path)
		}, 0)
		if err != nil {
			return NewNetworkFailed("querying index", err)
		}
		for _, c := range children {
			if _, err := s.deleteRecordByID(ctx, c.Event.ID); err != nil {
				return err
			}
		}
	}

	for _, t := range targets {
		if _, err := s.deleteRecordByID(ctx, t.Event.ID); err != nil {
			return err
		}
	}

	s.stream.Emit(ChangeNotification{Type: ChangeDeleted, Path: path, Timestamp: s.clock.Now()})
	return nil
}

func rewritePrefix(oldRoot, newRoot, path string) string {
	if path == oldRoot {
		return newRoot
	}
	suffix := strings.TrimPrefix(path, oldRoot+"/")
	return Join(newRoot, suffix)
}

// Move implements move(old, new): every version of old, and recursively
// every descendant, is re-emitted under the new path and the old event
// is tombstoned.
func (s *Service) Move(ctx context.Context, oldPath, newPath string) error {
	if err := requireAbsolute(oldPath); err != nil {
		return err
	}
	if err := requireAbsolute(newPath); err != nil {
		return err
	}
	oldPath = Normalize(oldPath)
	newPath = Normalize(newPath)

	if err := s.moveInternal(ctx, oldPath, newPath); err != nil {
		return err
	}

	now := s.clock.Now()
	s.stream.Emit(ChangeNotification{Type: ChangeDeleted, Path: oldPath, Timestamp: now})
	s.stream.Emit(ChangeNotification{Type: ChangeAdded, Path: newPath, Timestamp: now})
	return nil
}

func (s *Service) moveInternal(ctx context.Context, oldPath, newPath string) error {
	me := s.me()

	versions, err := s.index.Query([]Filter{{Field: FieldPath, Value: oldPath}}, func(r *IndexRecord) bool {
		return isMine(r, me)
	}, 0)
	if err != nil {
		return NewNetworkFailed("querying index", err)
	}
	if len(versions) == 0 {
		return NewNotFound("no record at %q authored by the current identity", oldPath)
	}

	isFolder := false
	for _, v := range versions {
		content := v.DecryptedContent
		content.Path = newPath

		var event *Event
		var err error
		if content.IsFolder() {
			isFolder = true
			event, err = s.builder.BuildFolderEvent(newPath, me, nil)
		} else {
			event, err = s.builder.BuildFileEvent(&content, me, nil)
		}
		if err != nil {
			return err
		}

		if err := s.index.Put(&IndexRecord{Event: *event, DecryptedContent: content}); err != nil {
			return NewNetworkFailed("writing index", err)
		}
		if err := s.relay.Publish(ctx, event); err != nil {
			return NewNetworkFailed("publishing moved event", err)
		}
		if _, err := s.deleteRecordByID(ctx, v.Event.ID); err != nil {
			return err
		}
	}

	if !isFolder {
		return nil
	}

	children, err := s.index.Query(nil, func(r *IndexRecord) bool {
		return isMine(r, me) && IsWithin(oldPath, r.DecryptedContent.Path)
	}, 0)
	if err != nil {
		return NewNetworkFailed("querying index", err)
	}
	childPaths := make(map[string]bool)
	var subfolders []string
	for _, c := range children {
		childPaths[c.DecryptedContent.Path] = true
		if c.DecryptedContent.IsFolder() {
			subfolders = append(subfolders, c.DecryptedContent.Path)
		}
	}
	for childPath := range childPaths {
		nested := false
		for _, f := range subfolders {
			nested = nested || IsWithin(f, childPath)
		}
		if nested {
			continue // moved by the recursive call for its enclosing subfolder
		}
		if err := s.moveInternal(ctx, childPath, rewritePrefix(oldPath, newPath, childPath)); err != nil {
			return err
		}
	}
	return nil
}

// Copy implements copy(src, dst): same as Move but no deletion and no
// deleted notification.
func (s *Service) Copy(ctx context.Context, src, dst string) error {
	if err := requireAbsolute(src); err != nil {
		return err
	}
	if err := requireAbsolute(dst); err != nil {
		return err
	}
	src = Normalize(src)
	dst = Normalize(dst)

	if err := s.copyInternal(ctx, src, dst); err != nil {
		return err
	}
	s.stream.Emit(ChangeNotification{Type: ChangeAdded, Path: dst, Timestamp: s.clock.Now()})
	return nil
}

func (s *Service) copyInternal(ctx context.Context, src, dst string) error {
	me := s.me()

	versions, err := s.index.Query([]Filter{{Field: FieldPath, Value: src}}, func(r *IndexRecord) bool {
		return isMine(r, me)
	}, 0)
	if err != nil {
		return NewNetworkFailed("querying index", err)
	}
	if len(versions) == 0 {
		return NewNotFound("no record at %q authored by the current identity", src)
	}

	isFolder := false
	for _, v := range versions {
		content := v.DecryptedContent
		content.Path = dst

		var event *Event
		var err error
		if content.IsFolder() {
			isFolder = true
			event, err = s.builder.BuildFolderEvent(dst, me, nil)
		} else {
			event, err = s.builder.BuildFileEvent(&content, me, nil)
		}
		if err != nil {
			return err
		}
		if err := s.index.Put(&IndexRecord{Event: *event, DecryptedContent: content}); err != nil {
			return NewNetworkFailed("writing index", err)
		}
		if err := s.relay.Publish(ctx, event); err != nil {
			return NewNetworkFailed("publishing copied event", err)
		}
	}

	if !isFolder {
		return nil
	}

	children, err := s.index.Query(nil, func(r *IndexRecord) bool {
		return isMine(r, me) && IsWithin(src, r.DecryptedContent.Path)
	}, 0)
	if err != nil {
		return NewNetworkFailed("querying index", err)
	}
	childPaths := make(map[string]bool)
	var subfolders []string
	for _, c := range children {
		childPaths[c.DecryptedContent.Path] = true
		if c.DecryptedContent.IsFolder() {
			subfolders = append(subfolders, c.DecryptedContent.Path)
		}
	}
	for childPath := range childPaths {
		nested := false
		for _, f := range subfolders {
			nested = nested || IsWithin(f, childPath)
		}
		if nested {
			continue // copied by the recursive call for its enclosing subfolder
		}
		if err := s.copyInternal(ctx, childPath, rewritePrefix(src, dst, childPath)); err != nil {
			return err
		}
	}
	return nil
}

// Search implements search(query): case-insensitive substring match
// against basename, full path, and (for files) file-type.
func (s *Service) Search(query string) ([]DriveItem, error) {
	me := s.me()
	q := strings.ToLower(query)

	records, err := s.index.Query(nil, func(r *IndexRecord) bool {
		if !isAccessible(r, me) {
			return false
		}
		content := r.DecryptedContent
		if strings.Contains(strings.ToLower(Basename(content.Path)), q) {
			return true
		}
		if strings.Contains(strings.ToLower(content.Path), q) {
			return true
		}
		if content.IsFile() && strings.Contains(strings.ToLower(content.FileType), q) {
			return true
		}
		return false
	}, 0)
	if err != nil {
		return nil, NewNetworkFailed("querying index", err)
	}

	return toSortedItems(reduceCurrentVersions(records)), nil
}

// ShareWithUser implements share_with_user(event_id, recipient_pubkey).
func (s *Service) ShareWithUser(ctx context.Context, eventID, recipientPubKey string) (*DriveItem, error) {
	record, err := s.index.Get(eventID)
	if err != nil {
		return nil, NewNetworkFailed("reading index", err)
	}
	if record == nil {
		return nil, NewNotFound("event %s", eventID)
	}
	if record.Event.PubKey != s.me() {
		return nil, NewUnauthorized("event %s is not authored by the current identity", eventID)
	}

	content := record.DecryptedContent
	var event *Event
	if content.IsFolder() {
		event, err = s.builder.BuildFolderEvent(content.Path, recipientPubKey, [][]string{{"p", recipientPubKey}})
	} else {
		event, err = s.builder.BuildFileEvent(&content, recipientPubKey, [][]string{{"p", recipientPubKey}})
	}
	if err != nil {
		return nil, err
	}

	shared := &IndexRecord{
		Event:            *event,
		DecryptedContent: content,
		SharedWith:       recipientPubKey,
		OriginalEventID:  eventID,
	}
	if err := s.index.Put(shared); err != nil {
		return nil, NewNetworkFailed("writing index", err)
	}
	if err := s.relay.Publish(ctx, event); err != nil {
		return nil, NewNetworkFailed("publishing share event", err)
	}
	s.stream.Emit(ChangeNotification{Type: ChangeShared, Path: content.Path, Timestamp: s.clock.Now()})

	item := shared.ToDriveItem()
	return &item, nil
}

// GenerateShareLink implements generate_share_link(event_id, password?,
// base_url, relays?).
func (s *Service) GenerateShareLink(ctx context.Context, eventID, password, baseURL string, relays []string) (string, error) {
	if s.keygen == nil || s.keycodec == nil {
		return "", NewInvalidArgument("share links require a key generator and codec")
	}

	skShare, pkShare, err := s.keygen.Generate()
	if err != nil {
		return "", NewCryptoFailed("generating share keypair: %v", err)
	}

	item, err := s.ShareWithUser(ctx, eventID, pkShare)
	if err != nil {
		return "", err
	}

	kind := KindDrive
	pointer := &SharePointer{EventID: item.EventID, Relays: relays, Author: s.me(), Kind: &kind}
	nevent, err := EncodeSharePointer(pointer)
	if err != nil {
		return "", err
	}

	var encodedKey string
	if password != "" {
		encodedKey, err = s.keycodec.EncodePassword(skShare, password)
	} else {
		encodedKey, err = s.keycodec.EncodePlain(skShare)
	}
	if err != nil {
		return "", NewCryptoFailed("encoding share key: %v", err)
	}

	return baseURL + "/" + nevent + "/" + encodedKey, nil
}

// AccessSharedFile implements access_shared_file(nevent, sk_share): a
// scratch relay client and sealer, scoped to the share's own key, are
// used and torn down without ever touching the main index or engine.
func (s *Service) AccessSharedFile(ctx context.Context, nevent, skShare string) (*FileMetadata, error) {
	if s.keygen == nil || s.sealerFactory == nil || s.relayFactory == nil {
		return nil, NewInvalidArgument("access_shared_file requires a key generator, sealer factory, and relay factory")
	}

	pointer, err := DecodeSharePointer(nevent)
	if err != nil {
		return nil, err
	}

	pkShare, err := s.keygen.PublicKey(skShare)
	if err != nil {
		return nil, NewCryptoFailed("deriving share public key: %v", err)
	}

	relays := pointer.Relays
	if len(relays) == 0 {
		relays = s.defaultRelays
	}

	scratch, err := s.relayFactory.NewClient(relays)
	if err != nil {
		return nil, NewNetworkFailed("opening scratch relay client", err)
	}
	defer scratch.Close()

	kind := KindDrive
	if pointer.Kind != nil {
		kind = *pointer.Kind
	}

	sub, err := scratch.Subscribe(ctx, []RelayFilter{{IDs: []string{pointer.EventID}, Kinds: []int{kind}, Limit: 1}})
	if err != nil {
		return nil, NewNetworkFailed("subscribing on scratch relay", err)
	}
	defer sub.Close()

	var event *Event
	select {
	case <-ctx.Done():
		return nil, NewNetworkFailed("waiting for shared event", ctx.Err())
	case ev, ok := <-sub.Events():
		if !ok {
			return nil, NewNotFound("event %s not found on the given relays", pointer.EventID)
		}
		event = ev
	}

	if !event.HasPTag(pkShare) {
		return nil, NewUnauthorized("share key does not match this event's recipient")
	}

	sealer, err := s.sealerFactory.ForKey(skShare)
	if err != nil {
		return nil, NewCryptoFailed("constructing scratch sealer: %v", err)
	}

	content, err := ParseDriveContent(event, sealer, event.PubKey)
	if err != nil {
		return nil, NewCryptoFailed("opening shared content: %v", err)
	}
	if !content.IsFile() {
		return nil, NewInvalidArgument("shared item is not a file")
	}

	return &FileMetadata{
		EventID:    event.ID,
		Path:       content.Path,
		Hash:       content.Hash,
		Size:       content.Size,
		FileType:   content.FileType,
		Encryption: content.Encryption,
		CreatedAt:  timeFromUnix(event.CreatedAt),
	}, nil
}

// ParseShareLink implements parse_share_link(link).
func ParseShareLink(link string) (*SharedFileAccess, error) {
	segments := strings.Split(link, "/")
	if len(segments) < 2 {
		return nil, NewInvalidArgument("malformed share link: %q", link)
	}
	nevent := segments[len(segments)-2]
	encodedKey := segments[len(segments)-1]

	pointer, err := DecodeSharePointer(nevent)
	if err != nil {
		return nil, err
	}

	kind := KindDrive
	if pointer.Kind != nil {
		kind = *pointer.Kind
	}

	return &SharedFileAccess{
		EventID:             pointer.EventID,
		Relays:              pointer.Relays,
		Author:              pointer.Author,
		Kind:                kind,
		EncodedPrivateKey:   encodedKey,
		IsPasswordProtected: strings.HasPrefix(encodedKey, "ncryptsec1"),
		Nevent:              nevent,
	}, nil
}

// DecodeShareKey implements decode_share_key(encoded, password?).
func (s *Service) DecodeShareKey(encoded string, password string) (string, error) {
	if s.keycodec == nil {
		return "", NewInvalidArgument("decoding a share key requires a key codec")
	}
	return s.keycodec.Decode(encoded, password)
}

// RevokeShare implements the supplemented revoke_share operation: a
// local-only deletion plus a broadcast DELETE tombstone. Relays are not
// obliged to honour the tombstone, so this is a local-view revocation,
// not a cryptographic one — the recipient's already-fetched copy of the
// shared metadata remains readable.
func (s *Service) RevokeShare(ctx context.Context, shareEventID string) error {
	record, err := s.index.Get(shareEventID)
	if err != nil {
		return NewNetworkFailed("reading index", err)
	}
	if record == nil {
		return nil
	}
	if record.SharedWith == "" {
		return NewInvalidArgument("event %s is not a share event", shareEventID)
	}
	return s.DeleteByID(ctx, shareEventID)
}
