package browser

import (
	"fmt"

	"github.com/ka2n/exo/exoerr"
	"github.com/ka2n/exo/render"
	"github.com/ka2n/exo/weburl"
)

// Status identifies the variant of a State
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusLoading:
		return "Loading"
	case StatusLoaded:
		return "Loaded"
	case StatusError:
		return "Error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// IsTerminal reports whether s ends a request
func (s Status) IsTerminal() bool {
	return s == StatusLoaded || s == StatusError
}

// State is a snapshot of the page content.
//
// Only the fields of the active Status are set:
//   - Idle: nothing
//   - Loading: URL
//   - Loaded: URL, Output
//   - Error: Err, Output with the rendered message, and URL unless the input
//     could not be parsed
//
// States are values; a copy received from the update channel shares nothing
// mutable with the controller.
type State struct {
	Status Status
	URL    *weburl.URL
	Output render.Output
	Err    *exoerr.Error

	// Seq is the request sequence number that produced this state. Idle is 0.
	Seq uint64
}

// Idle returns the initial state
func Idle() State {
	return State{Status: StatusIdle}
}

// Loading returns the in-progress state for u
func Loading(u weburl.URL) State {
	return State{Status: StatusLoading, URL: &u}
}

// Loaded returns the success state for u
func Loaded(u weburl.URL, out render.Output) State {
	return State{Status: StatusLoaded, URL: &u, Output: out}
}

// Failed returns the error state. u is nil when no URL could be parsed.
func Failed(u *weburl.URL, err *exoerr.Error) State {
	if u != nil {
		c := *u
		u = &c
	}
	return State{Status: StatusError, URL: u, Err: err}
}

// HasURL reports whether the state refers to a parsed URL
func (s State) HasURL() bool {
	return s.URL != nil
}

func (s State) String() string {
	switch s.Status {
	case StatusIdle:
		return "Idle"
	case StatusLoading:
		return fmt.Sprintf("Loading(%s)", s.URL)
	case StatusLoaded:
		return fmt.Sprintf("Loaded(%s, %d bytes)", s.URL, len(s.Output.Text))
	case StatusError:
		if s.URL == nil {
			return fmt.Sprintf("Error(<none>, %v)", s.Err)
		}
		return fmt.Sprintf("Error(%s, %v)", s.URL, s.Err)
	default:
		return s.Status.String()
	}
}
