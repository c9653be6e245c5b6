// Package rules loads the ordered pattern-to-class rules used to classify
// stack frames and process names.
package rules

const processMarker = "@"

// Rule maps a pattern to a class label.
type Rule struct {
	Pattern string
	Label   string

	matcher Matcher
}

func (r Rule) Match(text string) bool {
	return r.matcher.MatchString(text)
}

// RuleSet holds frame rules and process rules, each in source order.
// It is read-only once loaded.
type RuleSet struct {
	frame   []Rule
	process []Rule
}

type Option func(o *options)

type options struct {
	compiler Compiler
}

func WithCompiler(c Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}

// Load builds a RuleSet from sources concatenated in order. Patterns are
// compiled eagerly; the first malformed line aborts loading with a
// *FormatError.
func Load(sources []Source, opts ...Option) (*RuleSet, error) {
	o := &options{compiler: RegexpCompiler}
	for _, f := range opts {
		f(o)
	}
	if o.compiler == nil {
		return nil, ErrNoCompiler
	}

	rs := new(RuleSet)
	for _, src := range sources {
		var raws []rawRule
		if src.isYAML() {
			var err error
			if raws, err = parseYAML(src); err != nil {
				return nil, err
			}
		} else {
			raws = parseText(src)
		}

		for _, raw := range raws {
			if err := rs.add(o.compiler, raw); err != nil {
				return nil, &FormatError{Source: src.Name, Line: raw.line, Text: raw.text, Err: err}
			}
		}
	}

	return rs, nil
}

func (rs *RuleSet) add(c Compiler, raw rawRule) error {
	if raw.err != nil {
		return raw.err
	}
	if raw.label == "" {
		return ErrEmptyLabel
	}
	m, err := c.Compile(raw.pattern)
	if err != nil {
		return err
	}

	r := Rule{Pattern: raw.pattern, Label: raw.label, matcher: m}
	if raw.process {
		rs.process = append(rs.process, r)
	} else {
		rs.frame = append(rs.frame, r)
	}

	return nil
}

func (rs *RuleSet) FrameRules() []Rule {
	return rs.frame
}

func (rs *RuleSet) ProcessRules() []Rule {
	return rs.process
}

// SearchFrame returns the label of the first frame rule matching symbol.
func (rs *RuleSet) SearchFrame(symbol string) (string, bool) {
	return search(rs.frame, symbol)
}

// SearchProcess returns the label of the first process rule matching comm.
func (rs *RuleSet) SearchProcess(comm string) (string, bool) {
	return search(rs.process, comm)
}

func search(rules []Rule, text string) (string, bool) {
	for _, r := range rules {
		if r.Match(text) {
			return r.Label, true
		}
	}

	return "", false
}
