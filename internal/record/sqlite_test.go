package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/entity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecord() entity.Record {
	return entity.Record{
		RecordID:      "rec-1",
		Owner:         "owner-wallet",
		CID:           "bafy-cid",
		CIDHash:       "cidhash",
		WrappedKeys:   map[string]entity.WrappedKeyEnvelope{},
		Status:        entity.StatusAnchored,
		Epoch:         1,
		OriginalName:  "chart.pdf",
		MimeType:      "application/pdf",
		OriginalSize:  1024,
		EncryptedSize: 1052,
		UploadedAt:    time.Now().UTC().Truncate(time.Second),
		CreatedVia:    entity.CreatedViaServerOrchestrated,
	}
}

func TestSQLiteStoreUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewSQLiteStoreFromDB(db, discardLogger())
	rec := testRecord()
	wrappedKeysJSON, err := json.Marshal(rec.WrappedKeys)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO records").
		WithArgs(rec.RecordID, rec.Owner, rec.CID, rec.CIDHash, wrappedKeysJSON,
			string(rec.Status), rec.Epoch, rec.OriginalName, rec.MimeType,
			rec.OriginalSize, rec.EncryptedSize, rec.UploadedAt,
			rec.ContentHash, string(rec.CreatedVia)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	aerr := store.Upsert(context.Background(), rec)
	require.Nil(t, aerr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStoreGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewSQLiteStoreFromDB(db, discardLogger())

	mock.ExpectQuery("SELECT (.+) FROM records WHERE record_id = ?").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, aerr := store.GetByID(context.Background(), "missing")
	require.NotNil(t, aerr)
	require.True(t, apierr.Is(aerr, apierr.NotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStoreGetByIDFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewSQLiteStoreFromDB(db, discardLogger())
	rec := testRecord()
	wrappedKeysJSON, err := json.Marshal(rec.WrappedKeys)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{
		"record_id", "owner", "cid", "cid_hash", "wrapped_keys", "status", "epoch",
		"original_name", "mime_type", "original_size", "encrypted_size",
		"uploaded_at", "content_hash", "created_via",
	}).AddRow(rec.RecordID, rec.Owner, rec.CID, rec.CIDHash, wrappedKeysJSON,
		string(rec.Status), rec.Epoch, rec.OriginalName, rec.MimeType,
		rec.OriginalSize, rec.EncryptedSize, rec.UploadedAt,
		rec.ContentHash, string(rec.CreatedVia))

	mock.ExpectQuery("SELECT (.+) FROM records WHERE record_id = ?").
		WithArgs(rec.RecordID).
		WillReturnRows(rows)

	got, aerr := store.GetByID(context.Background(), rec.RecordID)
	require.Nil(t, aerr)
	require.Equal(t, rec.RecordID, got.RecordID)
	require.Equal(t, rec.Status, got.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorePatchWrappedKeysNotFoundWhenNoRowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewSQLiteStoreFromDB(db, discardLogger())
	wrappedKeys := map[string]entity.WrappedKeyEnvelope{}
	wrappedKeysJSON, err := json.Marshal(wrappedKeys)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE records SET wrapped_keys").
		WithArgs(wrappedKeysJSON, 2, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	aerr := store.PatchWrappedKeys(context.Background(), "missing", wrappedKeys, 2)
	require.NotNil(t, aerr)
	require.True(t, apierr.Is(aerr, apierr.NotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}
