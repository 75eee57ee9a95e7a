// Package render turns fetched page bodies and load failures into
// displayable text.
//
// No HTML is laid out. Plain passes bytes through untouched; Text and Markdown
// are optional, lossy conversions for terminal display.
package render

import (
	"fmt"
	"sort"

	"github.com/ka2n/exo/log"
	"github.com/morikuni/failure/v2"
)

// ErrorCode defines error types for render operations
type ErrorCode string

const (
	// ErrUnknownRenderer is returned by ByName for an unregistered name
	ErrUnknownRenderer ErrorCode = "UnknownRenderer"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Output is displayable content. It is never modified after creation.
type Output struct {
	Text string
	// Title is the document title when the transformer could find one
	Title string
}

// Transformer converts fetch results into Output.
// Both methods are total: they never fail and never panic on bad input.
type Transformer interface {
	Success(body string) Output
	Failure(err error) Output
}

// Plain is the pass-through transformer
type Plain struct{}

// Success returns body unchanged
func (Plain) Success(body string) Output {
	log.Debug("Rendering content", "bytes", len(body))
	return Output{Text: body}
}

// Failure renders err as a human readable message
func (Plain) Failure(err error) Output {
	return errorOutput(err)
}

func errorOutput(err error) Output {
	log.Debug("Rendering error", "error", err)
	return Output{Text: fmt.Sprintf("Error loading page:\n\n%v", err)}
}

var transformers = map[string]Transformer{
	"plain":    Plain{},
	"text":     Text{},
	"markdown": Markdown{},
}

// Names returns the registered transformer names in sorted order
func Names() []string {
	names := make([]string, 0, len(transformers))
	for name := range transformers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName returns the transformer registered as name
func ByName(name string) (Transformer, error) {
	t, ok := transformers[name]
	if !ok {
		return nil, failure.New(ErrUnknownRenderer,
			failure.Message("Unknown renderer"),
			failure.Context{
				"renderer": name,
			},
		)
	}
	return t, nil
}
