// Package weburl provides an immutable, validated absolute URL value.
package weburl

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/ka2n/exo/exoerr"
	"github.com/samber/lo"
)

// specialSchemes are schemes that must carry a host
var specialSchemes = []string{"http", "https", "ws", "wss", "ftp"}

// URL is an absolute URL. The zero value is not a valid URL; obtain one with Parse.
type URL struct {
	u url.URL
}

// Parse parses input into an absolute URL.
// It fails with an exoerr.URLParse error when input is not absolute or its
// authority is malformed.
func Parse(input string) (URL, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return URL{}, exoerr.New(exoerr.URLParse, "empty input")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return URL{}, exoerr.New(exoerr.URLParse, err.Error())
	}

	if u.Scheme == "" {
		return URL{}, exoerr.New(exoerr.URLParse, "relative URL without a base")
	}

	if lo.Contains(specialSchemes, u.Scheme) {
		if u.Opaque != "" || u.Host == "" || u.Hostname() == "" {
			return URL{}, exoerr.New(exoerr.URLParse, "empty host")
		}
		if p := u.Port(); p != "" {
			if _, err := strconv.ParseUint(p, 10, 16); err != nil {
				return URL{}, exoerr.New(exoerr.URLParse, "invalid port number")
			}
		}
		// Hosts of special schemes are case-insensitive
		u.Host = strings.ToLower(u.Host)
	}

	return URL{u: *u}, nil
}

// MustParse is like Parse but panics on error. Use it for constants only.
func MustParse(input string) URL {
	u, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return u
}

// Scheme returns the lower-cased scheme
func (u URL) Scheme() string {
	return u.u.Scheme
}

// Host returns host and port, if any
func (u URL) Host() string {
	return u.u.Host
}

// Hostname returns the host without the port
func (u URL) Hostname() string {
	return u.u.Hostname()
}

// Path returns the decoded path
func (u URL) Path() string {
	return u.u.Path
}

// Query returns the encoded query without '?'
func (u URL) Query() string {
	return u.u.RawQuery
}

// Fragment returns the fragment without '#'
func (u URL) Fragment() string {
	return u.u.Fragment
}

// IsZero reports whether u was never parsed
func (u URL) IsZero() bool {
	return u.u.Scheme == ""
}

// Equal reports structural equality
func (u URL) Equal(other URL) bool {
	return u.String() == other.String()
}

func (u URL) String() string {
	return u.u.String()
}

// StdURL returns a copy as a *url.URL for use with net/http
func (u URL) StdURL() *url.URL {
	c := u.u
	return &c
}
