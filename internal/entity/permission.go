package entity

import "time"

// Source identifies which tier of the permission oracle produced a
// grant or denial.
type Source string

const (
	SourceL2    Source = "L2"
	SourceL1    Source = "L1"
	SourceZK    Source = "ZK"
	SourceChain Source = "Chain"
)

// PermissionRecord is the oracle's uniform view of one access grant,
// regardless of which source produced it.
type PermissionRecord struct {
	RecordID        string
	PermittedActors []string
	ExpiresAt       time.Time // zero value means "no expiry"
	Owner           string
}

// Expired reports whether the permission record's validity window has
// passed. expires_at == 0 (zero time) means "no expiry" per SPEC_FULL.md
// §10, open question 2.
func (p PermissionRecord) Expired(now time.Time) bool {
	if p.ExpiresAt.IsZero() {
		return false
	}
	return now.After(p.ExpiresAt)
}

func (p PermissionRecord) Permits(actorID string) bool {
	for _, a := range p.PermittedActors {
		if a == actorID {
			return true
		}
	}
	return false
}

// SnapshotRecordEntry is one record's entry inside an L2 Snapshot.
type SnapshotRecordEntry struct {
	CIDHash         string                         `json:"cidHash"`
	PermittedActors []string                       `json:"permittedActors"`
	WrappedKeys     map[string]WrappedKeyEnvelope `json:"wrappedKeys"`
}

// Snapshot is an immutable, accepted state of the L2 replica.
type Snapshot struct {
	HeadID     string                         `json:"headId"`
	SnapshotID string                         `json:"snapshotId"`
	Epoch      int                            `json:"epoch"`
	AcceptedAt time.Time                      `json:"acceptedAt"`
	Records    map[string]SnapshotRecordEntry `json:"records"`
}

// ValidatorDatum is the strict, fixed-field shape of an on-chain inline
// datum at the validator script address, per SPEC_FULL.md §4.5's redesign
// of the original's dynamic JSON decoding.
type ValidatorDatum struct {
	RecordID        []byte
	PermittedActors [][]byte
	ExpiresAt       int64
	Owner           []byte
	NFTRef          []byte // nil when absent (option<...> == None)
}

// ChainMetadataPayload is the decoded JSON payload found under the
// application's fixed transaction-metadata label during chain-scan
// fallback.
type ChainMetadataPayload struct {
	RecordID        string   `json:"recordId"`
	CIDHash         string   `json:"cidHash"`
	PermittedActors []string `json:"permittedActors"`
	ExpiresAt       int64    `json:"expiresAt"` // unix seconds, 0 = no expiry
	Owner           string   `json:"owner"`
}
