// Package entity holds the wire- and storage-shaped data types shared by
// every component of the vault: records, wrapped-key envelopes, actors,
// permission tuples, and L2 snapshots.
package entity

import "time"

// Status is the lifecycle state of a Record.
type Status string

const (
	StatusDraft          Status = "draft"
	StatusPendingAnchor  Status = "pending_anchor"
	StatusAnchored       Status = "anchored"
	StatusRevoked        Status = "revoked"
	StatusUploaded       Status = "uploaded"
	StatusRotating       Status = "rotating"
)

// CreatedVia records which revoke/rotate variant most recently produced
// the record's current epoch. See SPEC_FULL.md §10, open question 1.
type CreatedVia string

const (
	CreatedViaServerOrchestrated CreatedVia = "server-orchestrated"
	CreatedViaClientSuppliedCEK CreatedVia = "client-supplied-cek"
)

// Record is the durable metadata row for one medical-record lifecycle.
type Record struct {
	RecordID    string                     `json:"recordId"`
	Owner       string                     `json:"owner"`
	CID         string                     `json:"cid"`
	CIDHash     string                     `json:"cidHash"`
	WrappedKeys map[string]WrappedKeyEnvelope `json:"wrappedKeys"`
	Status      Status                     `json:"status"`
	Epoch       int                        `json:"epoch"`

	OriginalName   string    `json:"originalName"`
	MimeType       string    `json:"mimeType"`
	OriginalSize   int64     `json:"originalSize"`
	EncryptedSize  int64     `json:"encryptedSize"`
	UploadedAt     time.Time `json:"uploadedAt"`
	ContentHash    string    `json:"contentHash,omitempty"`
	CreatedVia     CreatedVia `json:"createdVia,omitempty"`
}

// Clone returns a deep-enough copy of r so that callers reading a
// record snapshot from the store never observe a mutation racing a
// concurrent writer.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := *r
	cp.WrappedKeys = make(map[string]WrappedKeyEnvelope, len(r.WrappedKeys))
	for k, v := range r.WrappedKeys {
		cp.WrappedKeys[k] = v
	}
	return &cp
}

// PublicProjection is the safe, externally-visible subset of a Record
// returned by getMetadata. It never carries wrapped-key material.
type PublicProjection struct {
	RecordID      string    `json:"recordId"`
	Owner         string    `json:"owner"`
	CIDHash       string    `json:"cidHash"`
	Status        Status    `json:"status"`
	Epoch         int       `json:"epoch"`
	OriginalName  string    `json:"originalName"`
	MimeType      string    `json:"mimeType"`
	OriginalSize  int64     `json:"originalSize"`
	EncryptedSize int64     `json:"encryptedSize"`
	UploadedAt    time.Time `json:"uploadedAt"`
	ActorCount    int       `json:"actorCount"`
}

// Projection builds the safe public view of a record.
func (r *Record) Projection() PublicProjection {
	return PublicProjection{
		RecordID:      r.RecordID,
		Owner:         r.Owner,
		CIDHash:       r.CIDHash,
		Status:        r.Status,
		Epoch:         r.Epoch,
		OriginalName:  r.OriginalName,
		MimeType:      r.MimeType,
		OriginalSize:  r.OriginalSize,
		EncryptedSize: r.EncryptedSize,
		UploadedAt:    r.UploadedAt,
		ActorCount:    len(r.WrappedKeys),
	}
}
