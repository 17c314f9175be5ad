// Package docstore provides a small document store keyed by collection and
// key, with equality-filter queries. Two backends: in-memory (tests, dry
// runs) and Postgres (JSONB).
package docstore

import "errors"

// ErrNotFound is returned by Get when no document exists at the key.
var ErrNotFound = errors.New("docstore: document not found")

// Collection names used by the batches.
const (
	Technicals = "technicals"
	Positions  = "positions"
	Alerts     = "alerts"
)
