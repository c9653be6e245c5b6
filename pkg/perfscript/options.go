package perfscript

import (
	log "github.com/rs/zerolog"
)

type ParserOptions struct {
	parseAddress bool

	logger log.Logger
}

type ParserOption func(*Parser)

// WithParseAddress retains frame addresses, making frames that differ
// only by address distinct.
func WithParseAddress(parseAddress bool) ParserOption {
	return func(p *Parser) {
		p.parseAddress = parseAddress
	}
}

func WithLogger(logger log.Logger) ParserOption {
	return func(p *Parser) {
		p.logger = logger
	}
}
