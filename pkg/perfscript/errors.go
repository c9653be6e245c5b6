package perfscript

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrInvalidHeader = errors.New("invalid event header")

// FormatError reports a trace line that breaks the perf script format.
type FormatError struct {
	Line int
	Text string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
