package custody

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/spiffe/go-spiffe/v2/spiffeid"
	"github.com/spiffe/go-spiffe/v2/workloadapi"
	"github.com/spiffe/go-spiffe/v2/spiffetls/tlsconfig"

	"github.com/cardanohealth/vault/internal/apierr"
)

// RemoteStore is the mTLS-backed custody mode (C3's "remote cache"):
// CEKs never touch this process's own disk, they are parked by a
// dedicated custody keeper reached over a SPIFFE-authenticated TLS
// channel, the same split the teacher draws between Nexus and Keeper.
type RemoteStore struct {
	client  *http.Client
	baseURL string
}

// NewRemoteStore builds a RemoteStore that authenticates outbound
// connections using source and only accepts a peer whose SPIFFE ID is
// keeperID.
func NewRemoteStore(source *workloadapi.X509Source, keeperID spiffeid.ID, baseURL string) (*RemoteStore, *apierr.Error) {
	if source == nil {
		return nil, apierr.New(apierr.Internal, "custody: nil X509Source")
	}
	tlsConf := tlsconfig.MTLSClientConfig(source, source, tlsconfig.AuthorizeID(keeperID))
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: tlsConf,
		},
	}
	return &RemoteStore{client: client, baseURL: baseURL}, nil
}

type putRequest struct {
	RecordID  string `json:"recordId"`
	CEKBase64 string `json:"cekBase64"`
	TTLMs     int64  `json:"ttlMs"`
}

type getResponse struct {
	CEKBase64 string `json:"cekBase64"`
}

// Put parks cek with the remote keeper, base64-encoded for JSON
// transit. ttl is sent as ttlMs, but cmd/keeperd ignores it and parks
// the entry under its own configured custody TTL.
func (r *RemoteStore) Put(ctx context.Context, recordID string, cek []byte, ttl time.Duration) *apierr.Error {
	body, err := json.Marshal(putRequest{
		RecordID:  recordID,
		CEKBase64: base64.StdEncoding.EncodeToString(cek),
		TTLMs:     ttl.Milliseconds(),
	})
	if err != nil {
		return apierr.Wrap(apierr.Internal, "custody: failed to marshal put request", err)
	}
	if _, aerr := r.post(ctx, "/custody/put", body); aerr != nil {
		return aerr
	}
	return nil
}

// Get retrieves the CEK parked under recordID from the remote keeper.
func (r *RemoteStore) Get(ctx context.Context, recordID string) ([]byte, *apierr.Error) {
	body, err := json.Marshal(struct {
		RecordID string `json:"recordId"`
	}{RecordID: recordID})
	if err != nil {
		return nil, apierr.Wrap(apierr.Internal, "custody: failed to marshal get request", err)
	}
	respBody, aerr := r.post(ctx, "/custody/get", body)
	if aerr != nil {
		return nil, aerr
	}
	var res getResponse
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, apierr.Wrap(apierr.Internal, "custody: failed to unmarshal get response", err)
	}
	cek, err := base64.StdEncoding.DecodeString(res.CEKBase64)
	if err != nil {
		return nil, apierr.Wrap(apierr.CryptoFailed, "custody: malformed CEK transit encoding", err)
	}
	return cek, nil
}

// Evict asks the remote keeper to forget recordID, idempotently.
func (r *RemoteStore) Evict(ctx context.Context, recordID string) *apierr.Error {
	body, err := json.Marshal(struct {
		RecordID string `json:"recordId"`
	}{RecordID: recordID})
	if err != nil {
		return apierr.Wrap(apierr.Internal, "custody: failed to marshal evict request", err)
	}
	_, aerr := r.post(ctx, "/custody/evict", body)
	return aerr
}

func (r *RemoteStore) post(ctx context.Context, path string, body []byte) ([]byte, *apierr.Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, apierr.Wrap(apierr.Internal, "custody: failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, apierr.Wrap(apierr.StorageUnavailable, "custody: keeper unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.Wrap(apierr.StorageUnavailable, "custody: failed to read keeper response", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return respBody, nil
	case http.StatusNotFound:
		return nil, apierr.New(apierr.NotFound, "custody: keeper has no entry")
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, apierr.New(apierr.Unauthorized, "custody: keeper rejected mTLS identity")
	default:
		return nil, apierr.New(apierr.StorageUnavailable, "custody: keeper returned non-OK status")
	}
}
