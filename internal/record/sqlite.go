package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/entity"
)

// SQLiteStore is the durable Store backend: one row per record, the
// wrapped-keys map persisted as a JSON blob column. Writers take a
// per-record in-process mutex before touching the database so two
// goroutines racing to patch the same record never interleave their
// read-modify-write, mirroring the teacher's DataStore locking pattern.
type SQLiteStore struct {
	db     *sql.DB
	locks  map[string]*sync.Mutex
	locksM sync.Mutex
	logger *slog.Logger
}

// OpenSQLiteStore opens (or creates) the sqlite database at dsn and
// ensures the records table/index exist.
func OpenSQLiteStore(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("record: failed to open sqlite database: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &SQLiteStore{db: db, locks: make(map[string]*sync.Mutex), logger: logger}
	if err := s.createSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStoreFromDB wraps an already-open *sql.DB (used by tests to
// inject a sqlmock-backed connection without touching the filesystem).
func NewSQLiteStoreFromDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteStore{db: db, locks: make(map[string]*sync.Mutex), logger: logger}
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, queryCreateTable); err != nil {
		return fmt.Errorf("record: failed to create records table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, queryCreateOwnerIndex); err != nil {
		return fmt.Errorf("record: failed to create owner index: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) lockFor(recordID string) *sync.Mutex {
	s.locksM.Lock()
	defer s.locksM.Unlock()
	l, ok := s.locks[recordID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[recordID] = l
	}
	return l
}

func (s *SQLiteStore) Upsert(ctx context.Context, rec entity.Record) *apierr.Error {
	l := s.lockFor(rec.RecordID)
	l.Lock()
	defer l.Unlock()

	wrappedKeysJSON, err := json.Marshal(rec.WrappedKeys)
	if err != nil {
		return apierr.Wrap(apierr.Internal, "record: failed to marshal wrapped keys", err)
	}

	_, err = s.db.ExecContext(ctx, queryUpsertRecord,
		rec.RecordID, rec.Owner, rec.CID, rec.CIDHash, wrappedKeysJSON,
		string(rec.Status), rec.Epoch, rec.OriginalName, rec.MimeType,
		rec.OriginalSize, rec.EncryptedSize, rec.UploadedAt,
		rec.ContentHash, string(rec.CreatedVia))
	if err != nil {
		s.logger.Error("record upsert failed", "record_id", rec.RecordID, "err", err)
		return apierr.Wrap(apierr.StorageUnavailable, "record: upsert failed", err)
	}
	return nil
}

func (s *SQLiteStore) GetByID(ctx context.Context, recordID string) (entity.Record, *apierr.Error) {
	l := s.lockFor(recordID)
	l.Lock()
	defer l.Unlock()

	row := s.db.QueryRowContext(ctx, queryGetByID, recordID)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Record{}, apierr.New(apierr.NotFound, "record not found")
		}
		return entity.Record{}, apierr.Wrap(apierr.StorageUnavailable, "record: get failed", err)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context, owner string) ([]entity.Record, *apierr.Error) {
	var rows *sql.Rows
	var err error
	if owner == "" {
		rows, err = s.db.QueryContext(ctx, queryListAll)
	} else {
		rows, err = s.db.QueryContext(ctx, queryListByOwner, owner)
	}
	if err != nil {
		return nil, apierr.Wrap(apierr.StorageUnavailable, "record: list failed", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("record: failed to close rows", "err", closeErr)
		}
	}()

	var out []entity.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, apierr.Wrap(apierr.StorageUnavailable, "record: scan failed", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apierr.Wrap(apierr.StorageUnavailable, "record: row iteration failed", err)
	}
	return out, nil
}

func (s *SQLiteStore) PatchWrappedKeys(ctx context.Context, recordID string, wrappedKeys map[string]entity.WrappedKeyEnvelope, newEpoch int) *apierr.Error {
	l := s.lockFor(recordID)
	l.Lock()
	defer l.Unlock()

	wrappedKeysJSON, err := json.Marshal(wrappedKeys)
	if err != nil {
		return apierr.Wrap(apierr.Internal, "record: failed to marshal wrapped keys", err)
	}

	result, err := s.db.ExecContext(ctx, queryPatchWrappedKeys, wrappedKeysJSON, newEpoch, recordID)
	if err != nil {
		return apierr.Wrap(apierr.StorageUnavailable, "record: patch wrapped keys failed", err)
	}
	return s.requireRowAffected(result, recordID)
}

func (s *SQLiteStore) PatchStatus(ctx context.Context, recordID string, status entity.Status) *apierr.Error {
	l := s.lockFor(recordID)
	l.Lock()
	defer l.Unlock()

	result, err := s.db.ExecContext(ctx, queryPatchStatus, string(status), recordID)
	if err != nil {
		return apierr.Wrap(apierr.StorageUnavailable, "record: patch status failed", err)
	}
	return s.requireRowAffected(result, recordID)
}

func (s *SQLiteStore) requireRowAffected(result sql.Result, recordID string) *apierr.Error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apierr.Wrap(apierr.StorageUnavailable, "record: failed to read rows affected", err)
	}
	if rows == 0 {
		return apierr.New(apierr.NotFound, "record not found: "+recordID)
	}
	return nil
}

// rowScanner abstracts over *sql.Row and *sql.Rows so scanRecord can
// serve both GetByID and List.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (entity.Record, error) {
	var rec entity.Record
	var wrappedKeysJSON []byte
	var status, createdVia string

	err := row.Scan(
		&rec.RecordID, &rec.Owner, &rec.CID, &rec.CIDHash, &wrappedKeysJSON,
		&status, &rec.Epoch, &rec.OriginalName, &rec.MimeType,
		&rec.OriginalSize, &rec.EncryptedSize, &rec.UploadedAt,
		&rec.ContentHash, &createdVia,
	)
	if err != nil {
		return entity.Record{}, err
	}

	rec.Status = entity.Status(status)
	rec.CreatedVia = entity.CreatedVia(createdVia)
	if err := json.Unmarshal(wrappedKeysJSON, &rec.WrappedKeys); err != nil {
		return entity.Record{}, fmt.Errorf("record: failed to unmarshal wrapped keys: %w", err)
	}
	return rec, nil
}

var _ Store = (*SQLiteStore)(nil)
