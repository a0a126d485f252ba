package entity

// EnvelopeTag is the closed variant tag for a wrapped-key envelope. The
// tag decides which unwrap primitive a recipient (or the engine, for the
// explicitly demo-only server-side path) runs; it replaces any
// runtime-typed "wrap any value" dispatch with a static switch.
type EnvelopeTag string

const (
	EnvelopeX25519 EnvelopeTag = "X25519"
	EnvelopeRSA    EnvelopeTag = "RSA"
)

// WrappedKeyEnvelope carries one recipient's copy of a record's CEK.
//
// For EnvelopeX25519: EphemeralPublicKey is set and Ciphertext is
// IV(12) || AuthTag(16) || AES-256-GCM(KEK, CEK).
// For EnvelopeRSA: EphemeralPublicKey is empty and Ciphertext is the
// 32-byte CEK encrypted under RSA-OAEP-SHA256.
type WrappedKeyEnvelope struct {
	Tag                EnvelopeTag `json:"tag"`
	EphemeralPublicKey []byte      `json:"ephemeralPublicKey,omitempty"`
	Ciphertext         []byte      `json:"ciphertext"`
}

// ActorPublicKeys holds the key material a wrap operation needs for one
// actor. Either field may be nil; the engine prefers X25519 when both
// are present.
type ActorPublicKeys struct {
	X25519 []byte `json:"x25519,omitempty"`
	RSAPEM []byte `json:"rsaPem,omitempty"`
}

// ActorStatus is the lifecycle state of an Actor registration.
type ActorStatus string

const (
	ActorActive   ActorStatus = "active"
	ActorInactive ActorStatus = "inactive"
)

// Actor is a named principal: patient, doctor, hospital, or insurance in
// the core's fixed test roster, but the engine never assumes a closed
// enumeration of actor IDs.
type Actor struct {
	ActorID       string          `json:"actorId"`
	Role          string          `json:"role"`
	WalletAddress string          `json:"walletAddress"`
	PublicKeys    ActorPublicKeys `json:"publicKeys"`
	Status        ActorStatus     `json:"status"`
}
