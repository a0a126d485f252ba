// Command keeperd is the custody keeper: it holds CEKs in memory and
// serves them to an internal/custody.RemoteStore client over a
// SPIFFE-authenticated mTLS channel (cmd/vaultd itself uses the
// in-process custody store, not a RemoteStore),
// the same Nexus/Keeper split the teacher draws between app/nexus and
// app/keeper, narrowed here to the one job internal/custody.RemoteStore
// needs on the other end of the wire.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spiffe/go-spiffe/v2/spiffetls/tlsconfig"
	"github.com/spiffe/go-spiffe/v2/workloadapi"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/config"
	"github.com/cardanohealth/vault/internal/custody"
	"github.com/cardanohealth/vault/internal/log"
)

func main() {
	logger := log.Log()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := workloadapi.NewX509Source(ctx)
	if err != nil {
		log.Fatal("keeperd: failed to fetch SPIFFE X.509 source", "err", err)
	}
	defer source.Close()

	store := custody.New(config.CustodyTTL())
	sweeper := custody.NewSweeper(store, config.CustodyTTL()/2, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /custody/put", handlePut(store))
	mux.HandleFunc("POST /custody/get", handleGet(store))
	mux.HandleFunc("POST /custody/evict", handleEvict(store))

	tlsConf := tlsconfig.MTLSServerConfig(source, source, tlsconfig.AuthorizeAny())
	httpServer := &http.Server{
		Addr:      config.KeeperPort(),
		Handler:   mux,
		TLSConfig: tlsConf,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("keeperd: listening", "addr", config.KeeperPort())
	if err := httpServer.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
		log.Fatal("keeperd: server exited", "err", err)
	}
}

type keeperPutRequest struct {
	RecordID  string `json:"recordId"`
	CEKBase64 string `json:"cekBase64"`
	TTLMs     int64  `json:"ttlMs"`
}

type keeperGetRequest struct {
	RecordID string `json:"recordId"`
}

type keeperGetResponse struct {
	CEKBase64 string `json:"cekBase64"`
}

func readJSON[T any](r *http.Request) (T, error) {
	var v T
	body, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(body, &v)
	return v, err
}

func writeKeeperError(w http.ResponseWriter, aerr *apierr.Error) {
	switch aerr.Code {
	case apierr.NotFound:
		http.Error(w, aerr.Error(), http.StatusNotFound)
	case apierr.Unauthorized:
		http.Error(w, aerr.Error(), http.StatusUnauthorized)
	default:
		http.Error(w, aerr.Error(), http.StatusInternalServerError)
	}
}

func handlePut(store *custody.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := readJSON[keeperPutRequest](r)
		if err != nil {
			http.Error(w, "malformed put request", http.StatusBadRequest)
			return
		}
		cek, err := base64.StdEncoding.DecodeString(req.CEKBase64)
		if err != nil {
			http.Error(w, "malformed cek encoding", http.StatusBadRequest)
			return
		}
		store.Put(req.RecordID, cek)
		w.WriteHeader(http.StatusOK)
	}
}

func handleGet(store *custody.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := readJSON[keeperGetRequest](r)
		if err != nil {
			http.Error(w, "malformed get request", http.StatusBadRequest)
			return
		}
		cek, aerr := store.Get(req.RecordID)
		if aerr != nil {
			writeKeeperError(w, aerr)
			return
		}
		body, err := json.Marshal(keeperGetResponse{CEKBase64: base64.StdEncoding.EncodeToString(cek)})
		if err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}
}

func handleEvict(store *custody.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := readJSON[keeperGetRequest](r)
		if err != nil {
			http.Error(w, "malformed evict request", http.StatusBadRequest)
			return
		}
		store.Evict(req.RecordID)
		w.WriteHeader(http.StatusOK)
	}
}
