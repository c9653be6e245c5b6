package rules

import "regexp"

// Matcher reports whether a compiled pattern matches anywhere in a string.
type Matcher interface {
	MatchString(s string) bool
}

// Compiler turns pattern text into a Matcher once, at load time.
type Compiler interface {
	Compile(pattern string) (Matcher, error)
}

type CompilerFunc func(pattern string) (Matcher, error)

func (f CompilerFunc) Compile(pattern string) (Matcher, error) {
	return f(pattern)
}

// RegexpCompiler compiles RE2 patterns with the standard regexp package.
// MatchString is unanchored, so a rule matches when its pattern occurs
// anywhere in the symbol.
var RegexpCompiler Compiler = CompilerFunc(func(pattern string) (Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	return re, nil
})
