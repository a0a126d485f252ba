package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/crypto"
	"github.com/cardanohealth/vault/internal/gate"
	"github.com/cardanohealth/vault/internal/lifecycle"
	"github.com/cardanohealth/vault/internal/record"
)

// Server is the C11 HTTP RPC transport: a thin net/http surface over
// internal/lifecycle.Engine exposing exactly spec.md §6's five
// operations, plus the session-token login endpoint internal/transport
// adds so cmd/vaultctl doesn't have to carry a wallet signature on
// every single CLI invocation.
type Server struct {
	engine  *lifecycle.Engine
	records record.Store
	limiter *gate.Limiter
	auth    *SessionAuthenticator
	mux     *http.ServeMux
}

// NewServer wires engine, records and limiter into a ready-to-serve
// mux. auth may be nil to disable the login endpoint and bearer-token
// checks; cmd/vaultd passes nil, with a logged warning, whenever
// VAULT_SESSION_TOKEN_SECRET is unset.
func NewServer(engine *lifecycle.Engine, records record.Store, limiter *gate.Limiter, auth *SessionAuthenticator) *Server {
	s := &Server{engine: engine, records: records, limiter: limiter, auth: auth}
	s.mux = http.NewServeMux()
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func (s *Server) routes() {
	s.mux.HandleFunc("POST /v1/ingest", HandleRoute(s.limiter, gate.BucketGeneral, s.handleIngest))
	s.mux.HandleFunc("POST /v1/wrap", HandleRoute(s.limiter, gate.BucketSensitive, s.handleWrap))
	s.mux.HandleFunc("POST /v1/accessKey", HandleRoute(s.limiter, gate.BucketSensitive, s.handleAccessKey))
	s.mux.HandleFunc("POST /v1/revoke", HandleRoute(s.limiter, gate.BucketSensitive, s.handleRevoke))
	s.mux.HandleFunc("GET /v1/records/{id}", HandleRoute(s.limiter, gate.BucketGeneral, s.handleGetMetadata))
	if s.auth != nil {
		s.mux.HandleFunc("POST /v1/login", HandleRoute(s.limiter, gate.BucketAuth, s.handleLogin))
	}
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request, _ string) *apierr.Error {
	body := ReadRequestBody(r, w)
	if body == nil {
		return apierr.New(apierr.BadInput, "missing body")
	}
	req := HandleRequest[IngestRequest](body, w, ErrorResponse{Code: string(apierr.BadInput), Msg: "malformed ingest request"})
	if req == nil {
		return apierr.New(apierr.BadInput, "malformed body")
	}

	recordID, aerr := s.engine.Ingest(r.Context(), req.Plaintext, req.Owner, req.OriginalName, req.MimeType)
	if aerr != nil {
		RespondError(aerr, w)
		return aerr
	}
	Respond(http.StatusCreated, MarshalBody(IngestResponse{RecordID: recordID}, w), w)
	return nil
}

func (s *Server) handleWrap(w http.ResponseWriter, r *http.Request, _ string) *apierr.Error {
	body := ReadRequestBody(r, w)
	if body == nil {
		return apierr.New(apierr.BadInput, "missing body")
	}
	req := HandleRequest[WrapRequest](body, w, ErrorResponse{Code: string(apierr.BadInput), Msg: "malformed wrap request"})
	if req == nil {
		return apierr.New(apierr.BadInput, "malformed body")
	}

	wrapped, aerr := s.engine.Wrap(r.Context(), req.RecordID, req.ActorIDs)
	if aerr != nil {
		RespondError(aerr, w)
		return aerr
	}
	Respond(http.StatusOK, MarshalBody(WrapResponse{WrappedKeys: wrapped}, w), w)
	return nil
}

func (s *Server) handleAccessKey(w http.ResponseWriter, r *http.Request, _ string) *apierr.Error {
	body := ReadRequestBody(r, w)
	if body == nil {
		return apierr.New(apierr.BadInput, "missing body")
	}
	req := HandleRequest[AccessKeyRequest](body, w, ErrorResponse{Code: string(apierr.BadInput), Msg: "malformed accessKey request"})
	if req == nil {
		return apierr.New(apierr.BadInput, "malformed body")
	}

	if aerr := verifyAuthProof(req.AuthProof, "accessKey", req.RecordID, nil); aerr != nil {
		RespondError(aerr, w)
		return aerr
	}

	envelope, aerr := s.engine.AccessKey(r.Context(), req.RecordID, req.ActorID)
	if aerr != nil {
		RespondError(aerr, w)
		return aerr
	}
	Respond(http.StatusOK, MarshalBody(AccessKeyResponse{Envelope: envelope}, w), w)
	return nil
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request, _ string) *apierr.Error {
	body := ReadRequestBody(r, w)
	if body == nil {
		return apierr.New(apierr.BadInput, "missing body")
	}
	req := HandleRequest[RevokeRequest](body, w, ErrorResponse{Code: string(apierr.BadInput), Msg: "malformed revoke request"})
	if req == nil {
		return apierr.New(apierr.BadInput, "malformed body")
	}

	extra := map[string]any{"revokedActorId": req.RevokedActorID}
	if aerr := verifyAuthProof(req.AuthProof, "revoke", req.RecordID, extra); aerr != nil {
		RespondError(aerr, w)
		return aerr
	}
	if len(req.OwnerCEK) != crypto.CEKSize {
		aerr := apierr.Crypto(apierr.KeyLength, "revoke: ownerCek must be the record's 32-byte CEK")
		RespondError(aerr, w)
		return aerr
	}

	decrypt := func(_ context.Context, pkg []byte, _ string) ([]byte, *apierr.Error) {
		return crypto.Decrypt(pkg, req.OwnerCEK)
	}

	aerr := s.engine.Revoke(r.Context(), req.RecordID, req.RevokedActorID, decrypt)
	if aerr == apierr.NoOp {
		Respond(http.StatusOK, MarshalBody(RevokeResponse{NoOp: true}, w), w)
		return nil
	}
	if aerr != nil {
		RespondError(aerr, w)
		return aerr
	}
	Respond(http.StatusOK, MarshalBody(RevokeResponse{}, w), w)
	return nil
}

func (s *Server) handleGetMetadata(w http.ResponseWriter, r *http.Request, _ string) *apierr.Error {
	if s.auth != nil {
		if _, aerr := s.requireSession(r); aerr != nil {
			RespondError(aerr, w)
			return aerr
		}
	}

	recordID := r.PathValue("id")
	if recordID == "" {
		aerr := apierr.New(apierr.BadInput, "missing record id")
		RespondError(aerr, w)
		return aerr
	}

	rec, aerr := s.records.GetByID(r.Context(), recordID)
	if aerr != nil {
		RespondError(aerr, w)
		return aerr
	}
	Respond(http.StatusOK, MarshalBody(MetadataResponse{Record: rec.Projection()}, w), w)
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ string) *apierr.Error {
	body := ReadRequestBody(r, w)
	if body == nil {
		return apierr.New(apierr.BadInput, "missing body")
	}
	req := HandleRequest[LoginRequest](body, w, ErrorResponse{Code: string(apierr.BadInput), Msg: "malformed login request"})
	if req == nil {
		return apierr.New(apierr.BadInput, "malformed body")
	}

	if aerr := verifyAuthProof(AuthProof{
		Scheme:          req.Scheme,
		WalletPublicKey: req.WalletPublicKey,
		Signature:       req.Signature,
		Timestamp:       req.Timestamp,
		Network:         req.Network,
	}, "login", "", nil); aerr != nil {
		RespondError(aerr, w)
		return aerr
	}

	token, err := s.auth.Issue(req.ActorID)
	if err != nil {
		aerr := apierr.Wrap(apierr.Internal, "login: failed to issue session token", err)
		RespondError(aerr, w)
		return aerr
	}
	Respond(http.StatusOK, MarshalBody(LoginResponse{Token: token}, w), w)
	return nil
}

// requireSession checks for a valid session bearer token, minted by
// handleLogin, and returns the actor ID it was issued for. Operator
// read endpoints (getMetadata) use this instead of a per-request
// wallet signature so a CLI session doesn't have to re-sign every
// list/status call.
func (s *Server) requireSession(r *http.Request) (string, *apierr.Error) {
	tok := bearerToken(r)
	if tok == "" {
		return "", apierr.New(apierr.Unauthorized, "missing session token")
	}
	actorID, err := s.auth.Verify(tok)
	if err != nil {
		return "", apierr.Wrap(apierr.Unauthorized, "invalid or expired session token", err)
	}
	return actorID, nil
}

// verifyAuthProof checks proof's wallet signature over a canonical
// SignaturePayload built from operation/recordID/proof.Timestamp/
// proof.Network. extra carries any operation-specific signed fields
// (e.g. the actor being revoked).
func verifyAuthProof(proof AuthProof, operation, recordID string, extra map[string]any) *apierr.Error {
	payload := gate.SignaturePayload{
		Operation: operation,
		RecordID:  recordID,
		Timestamp: proof.Timestamp,
		Network:   proof.Network,
		Extra:     extra,
	}
	scheme := gate.SignatureScheme(strings.ToLower(proof.Scheme))
	return gate.VerifyWalletSignature(scheme, payload, proof.Signature, proof.WalletPublicKey, false)
}
