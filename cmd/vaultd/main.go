// Command vaultd runs the Encrypted Medical Record Vault's daemon: the
// lifecycle engine (C6) and every component it orchestrates, exposed
// over the HTTP transport (C11). It is the vault's counterpart to the
// teacher's app/nexus daemon.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardanohealth/vault/internal/atrest"
	"github.com/cardanohealth/vault/internal/config"
	"github.com/cardanohealth/vault/internal/custody"
	"github.com/cardanohealth/vault/internal/gate"
	"github.com/cardanohealth/vault/internal/journal"
	"github.com/cardanohealth/vault/internal/lifecycle"
	"github.com/cardanohealth/vault/internal/log"
	"github.com/cardanohealth/vault/internal/objectstore"
	"github.com/cardanohealth/vault/internal/oracle"
	"github.com/cardanohealth/vault/internal/record"
	"github.com/cardanohealth/vault/internal/retry"
	"github.com/cardanohealth/vault/internal/transport"
)

func main() {
	logger := log.Log()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rotationPolicy := atrest.RotationPolicy{
		RotationDays: config.KEKRotationDays(),
		MaxWraps:     config.KEKMaxWraps(),
		GraceDays:    config.KEKGraceDays(),
	}
	rmk, err := atrest.GenerateRMK()
	if err != nil {
		log.Fatal("vaultd: failed to generate root master key", "err", err)
	}
	atrestManager, err := atrest.NewManager(rmk, 1, rotationPolicy)
	if err != nil {
		log.Fatal("vaultd: failed to initialize at-rest KEK manager", "err", err)
	}
	sealedBackend := atrest.NewSealedBackend(atrestManager)
	atrestSweeper := atrest.NewSweeper(atrestManager, sealedBackend, rotationPolicy, 6*time.Hour, logger)
	atrestSweeper.Start(ctx)
	defer atrestSweeper.Stop()

	var backend objectstore.Backend = sealedBackend
	if config.ObjectStoreMode() == "mock" {
		backend = objectstore.NewMockBackend()
	}
	objects := objectstore.New(backend, retry.DefaultPolicy(), logger)

	store, err := openRecordStore(ctx)
	if err != nil {
		log.Fatal("vaultd: failed to open record store", "err", err)
	}

	custodyStore := custody.New(config.CustodyTTL())
	custodySweeper := custody.NewSweeper(custodyStore, config.CustodyTTL()/2, logger)
	custodySweeper.Start(ctx)
	defer custodySweeper.Stop()

	ora := oracle.New(
		oracle.NewL2Source(),
		oracle.NewL1Source(),
		oracle.NewZKSource(),
		oracle.NewChainSource(),
		config.OracleCacheTTL(),
		logger,
	)

	actors := lifecycle.NewMemoryActorDirectory()
	j := journal.New(logger, config.JournalRingCapacity())
	engine := lifecycle.New(store, objects, custodyStore, ora, actors, j)

	limiter := newLimiter()

	var authenticator *transport.SessionAuthenticator
	if secret := config.SessionTokenSecret(); secret != "" {
		authenticator = transport.NewSessionAuthenticator(secret, config.SessionTokenTTL())
	} else {
		logger.Warn("vaultd: VAULT_SESSION_TOKEN_SECRET unset, session-token login endpoint disabled")
	}

	srv := transport.NewServer(engine, store, limiter, authenticator)

	httpServer := &http.Server{
		Addr:    config.HTTPPort(),
		Handler: srv,
	}

	logger.Info("vaultd: listening", "addr", config.HTTPPort(), "version", config.Version)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("vaultd: server exited", "err", err)
	}
}

func openRecordStore(ctx context.Context) (record.Store, error) {
	dsn := config.RecordStoreDSN()
	if dsn == "" {
		return record.NewMemoryStore(), nil
	}
	return record.OpenSQLiteStore(ctx, dsn, log.Log())
}

func newLimiter() *gate.Limiter {
	if !config.RateLimitEnabled() {
		return gate.NewLimiter(map[gate.Bucket]gate.BucketLimits{
			gate.BucketGeneral:   {Limit: 1 << 30, Window: time.Minute},
			gate.BucketAuth:      {Limit: 1 << 30, Window: time.Minute},
			gate.BucketSensitive: {Limit: 1 << 30, Window: time.Minute},
		})
	}
	return gate.NewLimiter(gate.DefaultBucketLimits())
}
