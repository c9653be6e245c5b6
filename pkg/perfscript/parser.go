// Package perfscript parses the text output of `perf script` with call
// graphs into events.
package perfscript

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/rs/zerolog"
)

const (
	scanBufSize    = 1 << 20
	scanBufMaxSize = 64 << 20
)

var (
	// comm (may contain spaces), PID with optional /TID, optional [CPU] and a
	// timestamp, then the cycle count.
	headerRegex = regexp.MustCompile(`^(.*?)\s+([0-9]+)(?:/[0-9]+)?\s+(?:\[[0-9]+\]\s+)?[0-9]+\.[0-9]+:\s+([0-9]+)`)
	// Headers without a timestamp: the cycle count follows the first colon
	// that is followed by whitespace and digits.
	looseHeaderRegex = regexp.MustCompile(`^(.*?)\s+([0-9]+)(?:.*?):\s+([0-9]+)`)
	// address, symbol with optional +0x offset, (location).
	frameRegex = regexp.MustCompile(`^([0-9a-f]+) +(.+?)(\+0x[0-9a-f]+)? +\((.+)\)`)
)

type Parser struct {
	*ParserOptions
}

func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		ParserOptions: &ParserOptions{logger: log.Nop()},
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse reads r and calls fn once per event, in trace order. It stops at
// the first malformed header or at the first error returned by fn.
func (p *Parser) Parse(r io.Reader, fn func(*Event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scanBufSize), scanBufMaxSize)

	var (
		evt    *Event
		lineNo int
	)
	flush := func() error {
		if evt == nil {
			return nil
		}
		e := evt
		evt = nil

		return fn(e)
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			if err := flush(); err != nil {
				return err
			}
			continue
		}
		if evt != nil {
			p.appendFrame(evt, line, lineNo)
			continue
		}
		// perf script --header comments.
		if strings.HasPrefix(line, "#") {
			continue
		}

		var err error
		if evt, err = p.parseHeader(line, lineNo); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "failed to read trace")
	}

	return flush()
}

// ParseAll returns every event of r.
func (p *Parser) ParseAll(r io.Reader) ([]*Event, error) {
	var events []*Event
	err := p.Parse(r, func(e *Event) error {
		events = append(events, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (p *Parser) parseHeader(line string, lineNo int) (*Event, error) {
	m := headerRegex.FindStringSubmatch(line)
	if m == nil {
		m = looseHeaderRegex.FindStringSubmatch(line)
	}
	if m == nil {
		return nil, &FormatError{Line: lineNo, Text: line, Err: ErrInvalidHeader}
	}
	pid, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, &FormatError{Line: lineNo, Text: line, Err: errors.Wrap(ErrInvalidHeader, err.Error())}
	}
	cycles, err := strconv.ParseUint(m[3], 10, 64)
	if err != nil {
		return nil, &FormatError{Line: lineNo, Text: line, Err: errors.Wrap(ErrInvalidHeader, err.Error())}
	}

	return &Event{
		Comm:   m[1],
		PID:    pid,
		Cycles: cycles,
		Line:   lineNo,
	}, nil
}

func (p *Parser) appendFrame(evt *Event, line string, lineNo int) {
	m := frameRegex.FindStringSubmatch(line)
	if m == nil {
		p.logger.Debug().Int("line", lineNo).Str("text", line).Msg("skipping non-frame line")
		return
	}

	frame := Frame{Symbol: m[2], Location: m[4]}
	if p.parseAddress {
		frame.Address = m[1]
	}
	evt.Stack = append(evt.Stack, frame)
}
