package cli

import (
	"fmt"
	"strings"

	"github.com/ka2n/exo/render"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
)

// renderFlag selects a content transformer by name
type renderFlag struct {
	IsSet bool
	Value string
}

// String implements pflag.Value.
func (s *renderFlag) String() string {
	return s.Value
}

func (s *renderFlag) Set(value string) error {
	if !lo.Contains(render.Names(), value) {
		return fmt.Errorf("must be one of %s", strings.Join(render.Names(), ", "))
	}
	s.Value = value
	s.IsSet = true
	return nil
}

func (s *renderFlag) Type() string {
	return "renderer"
}

var _ pflag.Value = &renderFlag{}
