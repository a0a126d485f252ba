package transport

import "github.com/cardanohealth/vault/internal/entity"

// IngestRequest is the body of POST /v1/ingest.
type IngestRequest struct {
	Owner        string `json:"owner"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Plaintext    []byte `json:"plaintext"`
}

// IngestResponse is the body of a successful ingest response.
type IngestResponse struct {
	RecordID string `json:"recordId"`
}

// WrapRequest is the body of POST /v1/wrap.
type WrapRequest struct {
	RecordID string   `json:"recordId"`
	ActorIDs []string `json:"actorIds"`
}

// WrapResponse is the body of a successful wrap response.
type WrapResponse struct {
	WrappedKeys map[string]entity.WrappedKeyEnvelope `json:"wrappedKeys"`
}

// AccessKeyRequest is the body of POST /v1/accessKey. AuthProof carries
// the wallet signature material gate.VerifyWalletSignature checks
// before the request ever reaches the lifecycle engine.
type AccessKeyRequest struct {
	RecordID  string    `json:"recordId"`
	ActorID   string    `json:"actorId"`
	AuthProof AuthProof `json:"authProof"`
}

// AuthProof is the wallet-signed envelope spec.md §4.8 requires on
// every sensitive operation.
type AuthProof struct {
	Scheme          string `json:"scheme"`
	WalletPublicKey []byte `json:"walletPublicKey"`
	Signature       []byte `json:"signature"`
	Timestamp       int64  `json:"timestamp"`
	Network         string `json:"network"`
}

// AccessKeyResponse is the body of a successful accessKey response.
type AccessKeyResponse struct {
	Envelope entity.WrappedKeyEnvelope `json:"envelope"`
}

// RevokeRequest is the body of POST /v1/revoke. OwnerCEK is the
// owner's own unwrapped content-encryption key, unwrapped client-side
// by the owner and supplied here so the server-orchestrated revoke
// can re-encrypt without ever unwrapping a recipient's envelope
// itself.
type RevokeRequest struct {
	RecordID       string    `json:"recordId"`
	RevokedActorID string    `json:"revokedActorId"`
	OwnerCEK       []byte    `json:"ownerCek"`
	AuthProof      AuthProof `json:"authProof"`
}

// RevokeResponse is the (empty-bodied, status-carrying) response of a
// successful or no-op revoke.
type RevokeResponse struct {
	NoOp bool `json:"noOp,omitempty"`
}

// MetadataResponse is the body of GET /v1/records/{id}.
type MetadataResponse struct {
	Record entity.PublicProjection `json:"record"`
}

// ErrorResponse is the body written for every failed request. Code
// mirrors apierr.Code; Reason is only set for CryptoFailed errors.
type ErrorResponse struct {
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
	Msg    string `json:"msg"`
}
