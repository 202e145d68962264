// Package oracle wraps the language-model backend used to pull booking
// and invoice fields out of free-form text. Callers depend only on the
// TextOracle interface; a nil or failing oracle always degrades to "no
// extraction", never to a processing failure.
package oracle

import "context"

// TextOracle turns a prompt into a free-text completion.
type TextOracle interface {
	// Complete returns the model's response for the prompt. An empty
	// response and an error are both treated by callers as "no result".
	Complete(ctx context.Context, prompt string) (string, error)
}
