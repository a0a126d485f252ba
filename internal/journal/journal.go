package journal

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Journal is the append-only sink for audit Events. It mirrors the
// teacher's Audit() helper — marshal to JSON, write one line per event
// — but writes through a slog.Logger instead of the bare log package,
// and additionally keeps an in-memory ring for tests and short-lived
// operator queries rather than requiring a separate read path.
type Journal struct {
	logger *slog.Logger

	mu      sync.Mutex
	ring    []Event
	ringCap int
}

// New builds a Journal that writes through logger and retains up to
// ringCap recent events in memory (0 disables the in-memory ring).
func New(logger *slog.Logger, ringCap int) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{logger: logger, ringCap: ringCap}
}

// Record appends ev to the journal: it is logged as a structured JSON
// line and, if the ring is enabled, retained for recent-event queries.
func (j *Journal) Record(ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		j.logger.Error("journal: failed to marshal audit event", "err", err, "kind", ev.Kind)
		return
	}
	j.logger.Info("audit", "event", string(body))

	if j.ringCap <= 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ring = append(j.ring, ev)
	if len(j.ring) > j.ringCap {
		j.ring = j.ring[len(j.ring)-j.ringCap:]
	}
}

// Recent returns a copy of the most recently recorded events, oldest
// first, up to the configured ring capacity.
func (j *Journal) Recent() []Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Event, len(j.ring))
	copy(out, j.ring)
	return out
}
