package oracle

import (
	"context"

	"github.com/cardanohealth/vault/internal/entity"
)

// Decision is a source's answer for one (recordId, actorId) check.
type Decision int

const (
	// Fallthrough means this source has no opinion — the record (or
	// the actor's membership within it) was absent from this source's
	// universe, so the next tier should be consulted. Absence is never
	// denial.
	Fallthrough Decision = iota
	// Granted is a definitive positive answer.
	Granted
	// Denied is a definitive negative answer: the record exists in
	// this source's universe but the actor is not a member.
	Denied
)

// Result is one source's verdict, carrying enough provenance for the
// audit journal.
type Result struct {
	Decision Decision
	Source   entity.Source
	Evidence []byte
}

// Source is one tier of the waterfall. An error return is always
// treated as non-fatal by Oracle.Check: it is logged as a structured
// warning and the next tier is consulted.
type Source interface {
	Check(ctx context.Context, recordID, actorID string) (Result, error)
}
