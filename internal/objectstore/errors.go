package objectstore

import "errors"

// ErrMockNoPayload is returned by MockBackend.Get when no payload was
// Put under the requested CID in this process — the mock backend keeps
// payloads in memory only, under a deterministic CID, for local testing.
var ErrMockNoPayload = errors.New("objectstore: mock backend has no payload for cid")

// ErrAlreadyUnpinned is returned by a backend's Unpin when the CID was
// already unpinned; Adapter.Unpin treats this as success.
var ErrAlreadyUnpinned = errors.New("objectstore: cid already unpinned")
