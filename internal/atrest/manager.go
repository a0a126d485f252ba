package atrest

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/crypto"
)

// Manager owns the KEK hierarchy: it tracks every KEK's metadata,
// knows which one is current, and seals/opens at-rest blobs by
// deriving the needed KEK from the RMK on demand. Derived KEKs are
// never cached to disk; only Metadata (ID, salt, version, status) is
// ever persisted by a caller.
type Manager struct {
	mu sync.RWMutex

	rmk        [RMKSize]byte
	rmkVersion int
	policy     RotationPolicy

	metadata     map[string]Metadata
	currentKEKID string
}

// NewManager constructs a Manager with one fresh active KEK derived
// under rmk.
func NewManager(rmk [RMKSize]byte, rmkVersion int, policy RotationPolicy) (*Manager, error) {
	m := &Manager{
		rmk:        rmk,
		rmkVersion: rmkVersion,
		policy:     policy,
		metadata:   make(map[string]Metadata),
	}
	if _, err := m.mintKEK(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) mintKEK() (Metadata, error) {
	salt, err := GenerateKEKSalt()
	if err != nil {
		return Metadata{}, err
	}
	meta := Metadata{
		ID:         uuid.NewString(),
		Version:    len(m.metadata) + 1,
		Salt:       salt,
		RMKVersion: m.rmkVersion,
		CreatedAt:  time.Now().UTC(),
		Status:     StatusActive,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.currentKEKID != "" {
		if prev, ok := m.metadata[m.currentKEKID]; ok {
			prev.Status = StatusGrace
			m.metadata[m.currentKEKID] = prev
		}
	}
	m.metadata[meta.ID] = meta
	m.currentKEKID = meta.ID
	return meta, nil
}

// CurrentKEKID returns the ID of the KEK new seals use.
func (m *Manager) CurrentKEKID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentKEKID
}

// ShouldRotate reports whether the current KEK has exceeded its
// rotation policy, by age or by wrap count.
func (m *Manager) ShouldRotate() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meta, ok := m.metadata[m.currentKEKID]
	if !ok {
		return false
	}
	if m.policy.MaxWraps > 0 && meta.WrapsCount >= m.policy.MaxWraps {
		return true
	}
	if m.policy.RotationDays > 0 {
		age := time.Since(meta.CreatedAt)
		if age >= time.Duration(m.policy.RotationDays)*24*time.Hour {
			return true
		}
	}
	return false
}

// RotateKEK mints a fresh KEK and moves the previously active one
// into its grace period.
func (m *Manager) RotateKEK() (Metadata, error) {
	return m.mintKEK()
}

// CleanupGracePeriodKEKs retires any grace-period KEK whose grace
// window has fully elapsed. A retired KEK can no longer seal or open
// blobs; anything still sealed under it must have been rewrapped by
// the sweeper first.
func (m *Manager) CleanupGracePeriodKEKs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	graceDays := m.policy.GraceDays
	if graceDays <= 0 {
		graceDays = DefaultGraceDays
	}

	for id, meta := range m.metadata {
		if meta.Status != StatusGrace {
			continue
		}
		if time.Since(meta.CreatedAt) < time.Duration(graceDays)*24*time.Hour {
			continue
		}
		now := time.Now().UTC()
		meta.Status = StatusRetired
		meta.RetiredAt = &now
		m.metadata[id] = meta
	}
}

// GraceKEKIDs returns the IDs of every KEK currently in its grace
// period — candidates the sweeper should rewrap away from.
func (m *Manager) GraceKEKIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0)
	for id, meta := range m.metadata {
		if meta.Status == StatusGrace {
			ids = append(ids, id)
		}
	}
	return ids
}

// Seal encrypts plaintext under the current KEK and returns the
// sealed blob together with the KEK ID it was sealed under, so the
// caller can persist both alongside the record.
func (m *Manager) Seal(plaintext []byte) (blob []byte, kekID string, aerr *apierr.Error) {
	m.mu.Lock()
	meta, ok := m.metadata[m.currentKEKID]
	if ok {
		meta.WrapsCount++
		m.metadata[m.currentKEKID] = meta
	}
	m.mu.Unlock()

	if !ok {
		return nil, "", apierr.New(apierr.Internal, "atrest: no active KEK")
	}

	kek, err := DeriveKEK(m.rmk, meta)
	if err != nil {
		return nil, "", apierr.Wrap(apierr.CryptoFailed, "atrest: KEK derivation failed", err)
	}

	pkg, aerr2 := crypto.Encrypt(plaintext, kek)
	if aerr2 != nil {
		return nil, "", aerr2
	}
	return pkg, meta.ID, nil
}

// Open decrypts blob using the KEK identified by kekID. It refuses to
// operate on a retired KEK — by then, the sweeper is expected to have
// already rewrapped every blob still sealed under it.
func (m *Manager) Open(blob []byte, kekID string) ([]byte, *apierr.Error) {
	m.mu.RLock()
	meta, ok := m.metadata[kekID]
	m.mu.RUnlock()

	if !ok {
		return nil, apierr.New(apierr.NotFound, fmt.Sprintf("atrest: unknown KEK %s", kekID))
	}
	if meta.Status == StatusRetired {
		return nil, apierr.New(apierr.Conflict, fmt.Sprintf("atrest: KEK %s is retired", kekID))
	}

	kek, err := DeriveKEK(m.rmk, meta)
	if err != nil {
		return nil, apierr.Wrap(apierr.CryptoFailed, "atrest: KEK derivation failed", err)
	}
	return crypto.Decrypt(blob, kek)
}
