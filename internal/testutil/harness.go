package testutil

import (
	"nostrdrive/internal/blobstore"
	"nostrdrive/internal/drive"
	"nostrdrive/internal/nostrindex"
	"nostrdrive/internal/relaytransport"
)

// Harness wires a full in-memory drive stack (relay, index, blob store,
// sync engine, service) for a single stub identity, and keeps handles
// to every collaborator so tests can inspect state the Service API
// doesn't expose directly.
type Harness struct {
	PubKey string
	Signer *StubSigner
	Sealer *StubSealer
	Relay  *relaytransport.Memory
	Index  drive.Index
	Blob   drive.BlobStore
	Stream *drive.ChangeStream
	Engine *drive.SyncEngine
	Service *drive.Service
}

// NewHarness builds a Harness for label (e.g. "alice"), all backed by a
// shared in-memory relay so multiple harnesses can be wired against the
// same relay to exercise cross-account sharing.
func NewHarness(label string, relay *relaytransport.Memory) *Harness {
	pubkey := FakePubKey(label)
	signer := NewStubSigner(pubkey)
	sealer := NewStubSealer()
	index := nostrindex.NewMemory()
	blob := blobstore.NewMemory()
	stream := drive.NewChangeStream()

	engine := drive.NewSyncEngine(relay, index, sealer, signer, nil, stream)

	service := drive.NewService(drive.Config{
		Signer:        signer,
		Sealer:        sealer,
		Relay:         relay,
		Blob:          blob,
		Index:         index,
		Clock:         drive.RealClock{},
		Stream:        stream,
		SealerFactory: StubSealerFactory{},
		RelayFactory:  relaytransport.NewFactory(relay),
	})

	return &Harness{
		PubKey:  pubkey,
		Signer:  signer,
		Sealer:  sealer,
		Relay:   relay,
		Index:   index,
		Blob:    blob,
		Stream:  stream,
		Engine:  engine,
		Service: service,
	}
}
