package rules

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrSeparator   = errors.New("rule must contain exactly one ':' separator")
	ErrEmptyLabel  = errors.New("rule label is empty")
	ErrNoCompiler  = errors.New("no pattern compiler configured")
	ErrYAMLNotList = errors.New("yaml rule source must be a list")
)

// FormatError reports a rule line that cannot be loaded.
type FormatError struct {
	Source string
	Line   int
	Text   string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s:%d: invalid rule %q: %v", e.Source, e.Line, e.Text, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
