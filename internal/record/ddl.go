package record

// SQL statements for the sqlite-backed Store, grouped the way the
// teacher's ddl package groups its KEK-metadata and secret queries.
const (
	queryCreateTable = `
CREATE TABLE IF NOT EXISTS records (
	record_id      TEXT PRIMARY KEY,
	owner          TEXT NOT NULL,
	cid            TEXT NOT NULL,
	cid_hash       TEXT NOT NULL,
	wrapped_keys   BLOB NOT NULL,
	status         TEXT NOT NULL,
	epoch          INTEGER NOT NULL,
	original_name  TEXT NOT NULL,
	mime_type      TEXT NOT NULL,
	original_size  INTEGER NOT NULL,
	encrypted_size INTEGER NOT NULL,
	uploaded_at    DATETIME NOT NULL,
	content_hash   TEXT NOT NULL DEFAULT '',
	created_via    TEXT NOT NULL DEFAULT ''
)`

	queryCreateOwnerIndex = `
CREATE INDEX IF NOT EXISTS idx_records_owner ON records(owner)`

	queryUpsertRecord = `
INSERT INTO records (
	record_id, owner, cid, cid_hash, wrapped_keys, status, epoch,
	original_name, mime_type, original_size, encrypted_size,
	uploaded_at, content_hash, created_via
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(record_id) DO UPDATE SET
	owner = excluded.owner,
	cid = excluded.cid,
	cid_hash = excluded.cid_hash,
	wrapped_keys = excluded.wrapped_keys,
	status = excluded.status,
	epoch = excluded.epoch,
	original_name = excluded.original_name,
	mime_type = excluded.mime_type,
	original_size = excluded.original_size,
	encrypted_size = excluded.encrypted_size,
	uploaded_at = excluded.uploaded_at,
	content_hash = excluded.content_hash,
	created_via = excluded.created_via`

	queryGetByID = `
SELECT record_id, owner, cid, cid_hash, wrapped_keys, status, epoch,
	original_name, mime_type, original_size, encrypted_size,
	uploaded_at, content_hash, created_via
FROM records WHERE record_id = ?`

	queryListAll = `
SELECT record_id, owner, cid, cid_hash, wrapped_keys, status, epoch,
	original_name, mime_type, original_size, encrypted_size,
	uploaded_at, content_hash, created_via
FROM records`

	queryListByOwner = queryListAll + ` WHERE owner = ?`

	queryPatchWrappedKeys = `
UPDATE records SET wrapped_keys = ?, epoch = ? WHERE record_id = ?`

	queryPatchStatus = `
UPDATE records SET status = ? WHERE record_id = ?`
)
