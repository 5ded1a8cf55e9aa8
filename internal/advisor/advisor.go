// Package advisor integrates a generative language API for two advisory
// concerns: free-text risk notes on pending transfers and face matching
// during account verification. Advisory output never gates ledger
// correctness; callers must treat it as a hint.
package advisor

import (
	"context"

	"github.com/btspay/transfer-ledger/internal/domain/journal"
)

// UnavailableNote is returned whenever a risk assessment cannot be produced,
// whether the advisor is disabled or the upstream call failed
const UnavailableNote = "Analyse indisponible"

// Advisor produces risk notes for transactions and matches verification
// photos against the stored reference.
type Advisor interface {
	// AssessRisk returns a short advisory note for the transaction.
	// It never returns an error; failures yield UnavailableNote.
	AssessRisk(ctx context.Context, txn *journal.Transaction, ownerName string) string

	// MatchFaces reports whether the probe image shows the same person as
	// the reference image. An upstream failure returns a nil error and a
	// positive match so verification is never blocked by an outage.
	MatchFaces(ctx context.Context, reference, probe []byte) (bool, error)
}

// Disabled is the no-op advisor used when no API key is configured
type Disabled struct{}

func NewDisabled() *Disabled {
	return &Disabled{}
}

func (d *Disabled) AssessRisk(_ context.Context, _ *journal.Transaction, _ string) string {
	return UnavailableNote
}

func (d *Disabled) MatchFaces(_ context.Context, _, _ []byte) (bool, error) {
	return true, nil
}
