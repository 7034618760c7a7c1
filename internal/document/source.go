// Package document supplies the acquisition collaborators that hand
// the pipeline its candidate solicitation documents as plain text.
package document

import "context"

// Document is one acquired solicitation: a stable reference (used to
// re-fetch the full text later in the run) plus the extracted text.
type Document struct {
	Ref  string
	Text string
}

// Source lists candidate documents for a run. Acquisition order is the
// source's natural order and is preserved through extraction.
type Source interface {
	// List returns every candidate document. An empty slice is a valid
	// result and short-circuits the run.
	List(ctx context.Context) ([]Document, error)
	// Fetch returns the full text for a previously listed reference.
	Fetch(ctx context.Context, ref string) (string, error)
}
