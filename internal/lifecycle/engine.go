package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/crypto"
	"github.com/cardanohealth/vault/internal/custody"
	"github.com/cardanohealth/vault/internal/entity"
	"github.com/cardanohealth/vault/internal/journal"
	"github.com/cardanohealth/vault/internal/objectstore"
	"github.com/cardanohealth/vault/internal/oracle"
	"github.com/cardanohealth/vault/internal/record"
)

// Engine is the Lifecycle Engine (C6): it orchestrates C1 (crypto),
// C2 (object store), C3 (custody), C4 (record store), C5 (oracle) and
// C7 (journal) into ingest/wrap/accessKey/revoke. C8 (the rate and
// signature gate) sits in front of Engine's callers — the transport
// layer — not inside it, so Engine's exported methods assume the
// caller has already passed the gate.
type Engine struct {
	store    record.Store
	objects  *objectstore.Adapter
	custody  *custody.Store
	oracle   *oracle.Oracle
	actors   ActorDirectory
	journal  *journal.Journal

	locksM sync.Mutex
	locks  map[string]*sync.Mutex
}

// New builds an Engine over its component dependencies.
func New(store record.Store, objects *objectstore.Adapter, cek *custody.Store, ora *oracle.Oracle, actors ActorDirectory, j *journal.Journal) *Engine {
	return &Engine{
		store: store, objects: objects, custody: cek, oracle: ora, actors: actors, journal: j,
		locks: make(map[string]*sync.Mutex),
	}
}

func (e *Engine) lockFor(recordID string) *sync.Mutex {
	e.locksM.Lock()
	defer e.locksM.Unlock()
	l, ok := e.locks[recordID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[recordID] = l
	}
	return l
}

func (e *Engine) emit(kind journal.Kind, build func(journal.Event) journal.Event) {
	ev, err := journal.NewEvent(uuid.NewString(), kind, time.Now())
	if err != nil {
		return
	}
	if build != nil {
		ev = build(ev)
	}
	e.journal.Record(ev)
}

// Ingest implements ingest(bytes, owner, intendedActors[]) → recordId:
// generate a CEK, seal bytes into a package, upload it, create the
// draft record, park the CEK for the subsequent wrap.
func (e *Engine) Ingest(ctx context.Context, plaintext []byte, owner string, originalName, mimeType string) (string, *apierr.Error) {
	recordID := uuid.NewString()
	l := e.lockFor(recordID)
	l.Lock()
	defer l.Unlock()

	cek, err := crypto.GenerateCEK()
	if err != nil {
		return "", apierr.Wrap(apierr.CryptoFailed, "ingest: failed to generate CEK", err)
	}

	pkg, aerr := crypto.Encrypt(plaintext, cek)
	if aerr != nil {
		return "", aerr
	}

	cid, aerr := e.objects.Upload(ctx, pkg)
	if aerr != nil {
		return "", aerr
	}

	rec := entity.Record{
		RecordID:      recordID,
		Owner:         owner,
		CID:           cid,
		CIDHash:       crypto.Sha256HexString(cid),
		WrappedKeys:   map[string]entity.WrappedKeyEnvelope{},
		Status:        entity.StatusDraft,
		Epoch:         1,
		OriginalName:  originalName,
		MimeType:      mimeType,
		OriginalSize:  int64(len(plaintext)),
		EncryptedSize: int64(len(pkg)),
		UploadedAt:    time.Now().UTC(),
		ContentHash:   crypto.Sha256Hex(plaintext),
		CreatedVia:    entity.CreatedViaServerOrchestrated,
	}
	if aerr := e.store.Upsert(ctx, rec); aerr != nil {
		return "", aerr
	}

	e.custody.Put(recordID, cek)

	e.emit(journal.KindFileUploaded, func(ev journal.Event) journal.Event {
		return ev.WithRecord(recordID).WithResult(journal.ResultSuccess)
	})

	return recordID, nil
}

// Wrap implements wrap(recordId, actorIds[]) → wrapped mapping: every
// actor must be a known registration; the stored CEK is wrapped per
// actor (X25519 preferred, RSA accepted), the record's entire
// wrapped-keys map is replaced in one write, and the record moves to
// anchored. The CEK is evicted from custody once every actor has a
// durable wrapped copy.
func (e *Engine) Wrap(ctx context.Context, recordID string, actorIDs []string) (map[string]entity.WrappedKeyEnvelope, *apierr.Error) {
	l := e.lockFor(recordID)
	l.Lock()
	defer l.Unlock()

	for _, actorID := range actorIDs {
		if _, ok := e.actors.Get(actorID); !ok {
			return nil, apierr.New(apierr.BadInput, "wrap: unknown actor "+actorID)
		}
	}

	cek, aerr := e.custody.Get(recordID)
	if aerr != nil {
		return nil, apierr.New(apierr.Conflict, "wrap: no CEK parked for record (already wrapped or expired)")
	}

	wrapped, aerr := e.wrapForActors(cek, actorIDs)
	if aerr != nil {
		return nil, aerr
	}

	rec, aerr := e.store.GetByID(ctx, recordID)
	if aerr != nil {
		return nil, aerr
	}

	if aerr := e.store.PatchWrappedKeys(ctx, recordID, wrapped, rec.Epoch); aerr != nil {
		return nil, aerr
	}
	if aerr := e.store.PatchStatus(ctx, recordID, entity.StatusAnchored); aerr != nil {
		return nil, aerr
	}

	e.custody.Evict(recordID)

	for actorID := range wrapped {
		e.emit(journal.KindCEKWrapped, func(ev journal.Event) journal.Event {
			return ev.WithRecord(recordID).WithActor(actorID).WithResult(journal.ResultSuccess)
		})
	}

	return wrapped, nil
}

// wrapForActors wraps cek for each actor, preferring X25519 when the
// actor registered both key types, per spec.md §4.1.
func (e *Engine) wrapForActors(cek []byte, actorIDs []string) (map[string]entity.WrappedKeyEnvelope, *apierr.Error) {
	out := make(map[string]entity.WrappedKeyEnvelope, len(actorIDs))
	for _, actorID := range actorIDs {
		actor, _ := e.actors.Get(actorID)

		switch {
		case len(actor.PublicKeys.X25519) > 0:
			wrapped, ephemeral, aerr := crypto.WrapX25519(cek, actor.PublicKeys.X25519)
			if aerr != nil {
				return nil, aerr
			}
			out[actorID] = entity.WrappedKeyEnvelope{
				Tag:                entity.EnvelopeX25519,
				EphemeralPublicKey: ephemeral,
				Ciphertext:         wrapped,
			}
		case len(actor.PublicKeys.RSAPEM) > 0:
			wrapped, aerr := crypto.WrapRSA(cek, actor.PublicKeys.RSAPEM)
			if aerr != nil {
				return nil, aerr
			}
			out[actorID] = entity.WrappedKeyEnvelope{
				Tag:        entity.EnvelopeRSA,
				Ciphertext: wrapped,
			}
		default:
			return nil, apierr.New(apierr.BadInput, "wrap: actor "+actorID+" has no usable public key")
		}
	}
	return out, nil
}

// AccessKey implements accessKey(recordId, actorId, authProof) →
// wrappedEnvelope: consults the oracle, and on a grant returns the
// stored envelope without ever unwrapping it server-side.
func (e *Engine) AccessKey(ctx context.Context, recordID, actorID string) (entity.WrappedKeyEnvelope, *apierr.Error) {
	granted, source, _, aerr := e.oracle.Check(ctx, recordID, actorID)
	if aerr != nil {
		return entity.WrappedKeyEnvelope{}, aerr
	}

	if !granted {
		e.emit(journal.KindAccessDenied, func(ev journal.Event) journal.Event {
			return ev.WithRecord(recordID).WithActor(actorID).WithSource(string(source)).WithResult(journal.ResultError)
		})
		return entity.WrappedKeyEnvelope{}, apierr.New(apierr.Denied, "access denied")
	}

	rec, aerr := e.store.GetByID(ctx, recordID)
	if aerr != nil {
		return entity.WrappedKeyEnvelope{}, aerr
	}

	envelope, ok := rec.WrappedKeys[actorID]
	if !ok {
		// A grant with no corresponding envelope means the oracle's
		// view and the record store have diverged — never silently
		// recovered.
		return entity.WrappedKeyEnvelope{}, apierr.New(apierr.Inconsistent, "granted access but no wrapped envelope on file")
	}

	e.emit(journal.KindAccessGranted, func(ev journal.Event) journal.Event {
		return ev.WithRecord(recordID).WithActor(actorID).WithSource(string(source)).WithResult(journal.ResultSuccess)
	})

	return envelope, nil
}

// RevokeDecrypter supplies the plaintext needed to re-encrypt under a
// fresh CEK during a server-orchestrated revoke. Revoke is Engine's only
// revoke entry point; Engine has no variant that accepts a new CEK
// supplied by the client.
type RevokeDecrypter func(ctx context.Context, pkg []byte, recordID string) ([]byte, *apierr.Error)

// Revoke implements the server-orchestrated revoke(recordId, actorId,
// ownerAuth) variant: download, decrypt, re-encrypt under a fresh CEK,
// re-wrap for every remaining actor, and atomically swap state at a
// single commit point. Revoking an actor absent from WrappedKeys is a
// NoOp, per spec.md §4.6.
func (e *Engine) Revoke(ctx context.Context, recordID, revokedActorID string, decrypt RevokeDecrypter) *apierr.Error {
	l := e.lockFor(recordID)
	l.Lock()
	defer l.Unlock()

	rec, aerr := e.store.GetByID(ctx, recordID)
	if aerr != nil {
		return aerr
	}

	if _, present := rec.WrappedKeys[revokedActorID]; !present {
		return apierr.NoOp
	}

	if aerr := e.store.PatchStatus(ctx, recordID, entity.StatusRotating); aerr != nil {
		return aerr
	}
	// Any return before the commit point puts the status back.
	didCommit := false
	defer func() {
		if !didCommit {
			_ = e.store.PatchStatus(context.WithoutCancel(ctx), recordID, rec.Status)
		}
	}()

	oldCID := rec.CID
	pkg, aerr := e.objects.Download(ctx, oldCID)
	if aerr != nil {
		return aerr
	}

	plaintext, aerr := decrypt(ctx, pkg, recordID)
	if aerr != nil {
		return aerr
	}

	newCEK, err := crypto.GenerateCEK()
	if err != nil {
		return apierr.Wrap(apierr.CryptoFailed, "revoke: failed to generate new CEK", err)
	}

	newPkg, aerr := crypto.Encrypt(plaintext, newCEK)
	if aerr != nil {
		return aerr
	}

	newCID, aerr := e.objects.Upload(ctx, newPkg)
	if aerr != nil {
		return aerr
	}

	remainingActors := make([]string, 0, len(rec.WrappedKeys))
	for actorID := range rec.WrappedKeys {
		if actorID == revokedActorID {
			continue
		}
		remainingActors = append(remainingActors, actorID)
	}

	newWrapped, aerr := e.wrapForActors(newCEK, remainingActors)
	if aerr != nil {
		return aerr
	}

	// Commit point: one Upsert swaps CID, content binding, wrapped keys,
	// epoch and status together. Before it, the only change other callers
	// can see is the transient rotating status, which is restored if this
	// call fails; from here, the new epoch is what future readers will see.
	newEpoch := rec.Epoch + 1
	committed := rec
	committed.CID = newCID
	committed.CIDHash = crypto.Sha256HexString(newCID)
	committed.ContentHash = crypto.Sha256Hex(plaintext)
	committed.Status = entity.StatusAnchored
	committed.Epoch = newEpoch
	committed.WrappedKeys = newWrapped
	if aerr := e.store.Upsert(ctx, committed); aerr != nil {
		return aerr
	}
	didCommit = true

	e.oracle.EvictRecord(recordID)

	// Best-effort: the old CID is scheduled for administrative unpin,
	// failure here does not roll back the already-committed rotation.
	_ = e.objects.Unpin(ctx, oldCID)

	e.emit(journal.KindRevocation, func(ev journal.Event) journal.Event {
		return ev.WithRecord(recordID).WithActor(revokedActorID).WithResult(journal.ResultSuccess)
	})
	e.emit(journal.KindCEKRotated, func(ev journal.Event) journal.Event {
		return ev.WithRecord(recordID).WithActor(revokedActorID).WithResult(journal.ResultSuccess)
	})

	return nil
}
