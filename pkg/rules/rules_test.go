package rules_test

import (
	"regexp"
	"regexp/syntax"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maxgio92/perf-class/pkg/rules"
)

type mockMatcher struct {
	mock.Mock
}

func (m *mockMatcher) MatchString(s string) bool {
	return m.Called(s).Bool(0)
}

func src(name, data string) rules.Source {
	return rules.Source{Name: name, Data: []byte(data)}
}

func load(t *testing.T, sources ...rules.Source) *rules.RuleSet {
	t.Helper()
	rs, err := rules.Load(sources)
	require.NoError(t, err)

	return rs
}

func TestLoadSkipsCommentsAndBlanks(t *testing.T) {
	rs := load(t, src("map", `
# a comment
// another comment

  ^foo : CPU
@nginx:Web
`))
	require.Len(t, rs.FrameRules(), 1)
	require.Len(t, rs.ProcessRules(), 1)
	require.Equal(t, "^foo", rs.FrameRules()[0].Pattern)
	require.Equal(t, "CPU", rs.FrameRules()[0].Label)
	require.Equal(t, "nginx", rs.ProcessRules()[0].Pattern, "process marker must be stripped")
	require.Equal(t, "Web", rs.ProcessRules()[0].Label)
}

func TestLoadFormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		line    int
		wantErr error
	}{
		{"multiple separators", "^foo:CPU\na:b:c\n", 2, rules.ErrSeparator},
		{"missing separator", "\n\nfoo\n", 3, rules.ErrSeparator},
		{"empty label", "foo:  \n", 1, rules.ErrEmptyLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rules.Load([]rules.Source{src("test.map", tt.data)})
			require.Error(t, err)
			require.ErrorIs(t, err, tt.wantErr)

			var fe *rules.FormatError
			require.True(t, errors.As(err, &fe))
			require.Equal(t, "test.map", fe.Source)
			require.Equal(t, tt.line, fe.Line)
		})
	}
}

func TestLoadInvalidPattern(t *testing.T) {
	_, err := rules.Load([]rules.Source{src("bad.map", "foo(:CPU")})
	require.Error(t, err)

	var fe *rules.FormatError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, 1, fe.Line)
	require.Contains(t, err.Error(), "bad.map:1")

	var syntaxErr *syntax.Error
	require.True(t, errors.As(err, &syntaxErr), "compile error must be kept as cause")
}

func TestSearchIsUnanchored(t *testing.T) {
	rs := load(t, src("map", "^foo:CPU\n^bar:IO\n"))

	label, ok := rs.SearchFrame("foobar")
	require.True(t, ok)
	require.Equal(t, "CPU", label)

	label, ok = rs.SearchFrame("barfoo")
	require.True(t, ok)
	require.Equal(t, "IO", label)

	_, ok = rs.SearchFrame("baz")
	require.False(t, ok)
}

func TestSearchFirstMatchWins(t *testing.T) {
	rs := load(t, src("map", "tcp:Generic\ntcp_sendmsg:Send\n"))
	label, ok := rs.SearchFrame("tcp_sendmsg")
	require.True(t, ok)
	require.Equal(t, "Generic", label, "earlier rule must win over a more specific later rule")

	rs = load(t, src("map", "tcp_sendmsg:Send\ntcp:Generic\n"))
	label, _ = rs.SearchFrame("tcp_sendmsg")
	require.Equal(t, "Send", label)
}

func TestSourcesConcatenatedInOrder(t *testing.T) {
	rs := load(t,
		src("first.map", "x:First\n"),
		src("second.map", "x:Second\n@p:Proc\n"),
	)
	require.Len(t, rs.FrameRules(), 2)
	label, _ := rs.SearchFrame("x")
	require.Equal(t, "First", label)

	label, ok := rs.SearchProcess("php-fpm")
	require.True(t, ok)
	require.Equal(t, "Proc", label)

	_, ok = rs.SearchFrame("php-fpm")
	require.False(t, ok, "process rules must not match frames")
}

func TestSearchStopsAtFirstMatch(t *testing.T) {
	first, second := new(mockMatcher), new(mockMatcher)
	first.On("MatchString", "sym").Return(true)

	matchers := []rules.Matcher{first, second}
	i := 0
	compiler := rules.CompilerFunc(func(string) (rules.Matcher, error) {
		m := matchers[i]
		i++
		return m, nil
	})

	rs, err := rules.Load([]rules.Source{src("map", "a:A\nb:B\n")}, rules.WithCompiler(compiler))
	require.NoError(t, err)

	label, ok := rs.SearchFrame("sym")
	require.True(t, ok)
	require.Equal(t, "A", label)
	first.AssertExpectations(t)
	second.AssertNotCalled(t, "MatchString", mock.Anything)
}

func TestCompilerErrorIsFormatError(t *testing.T) {
	boom := errors.New("boom")
	compiler := rules.CompilerFunc(func(string) (rules.Matcher, error) {
		return nil, boom
	})
	_, err := rules.Load([]rules.Source{src("map", "a:A")}, rules.WithCompiler(compiler))
	require.ErrorIs(t, err, boom)

	_, err = rules.Load(nil, rules.WithCompiler(nil))
	require.ErrorIs(t, err, rules.ErrNoCompiler)
}

func TestRegexpCompiler(t *testing.T) {
	m, err := rules.RegexpCompiler.Compile(`^k(tcp|udp)_`)
	require.NoError(t, err)
	require.IsType(t, &regexp.Regexp{}, m)
	require.True(t, m.MatchString("ktcp_sendmsg"))
	require.False(t, m.MatchString("tcp_sendmsg"))
}

func TestLoadYAML(t *testing.T) {
	rs := load(t,
		src("base.map", "^memcpy:Copy\n"),
		src("extra.yaml", `
- pattern: ^ktcp_
  class: Network
- pattern: nginx
  class: Web
  process: true
- pattern: "@^redis"
  class: Cache
`),
	)
	require.Len(t, rs.FrameRules(), 2)
	require.Len(t, rs.ProcessRules(), 2)

	label, _ := rs.SearchFrame("memcpy_erms")
	require.Equal(t, "Copy", label)
	label, _ = rs.SearchFrame("ktcp_sendmsg")
	require.Equal(t, "Network", label)
	label, _ = rs.SearchProcess("redis-server")
	require.Equal(t, "Cache", label)
}

func TestLoadYAMLErrors(t *testing.T) {
	_, err := rules.Load([]rules.Source{src("rules.yml", "pattern: foo\nclass: bar\n")})
	require.ErrorIs(t, err, rules.ErrYAMLNotList)

	_, err = rules.Load([]rules.Source{src("rules.yml", "- pattern: foo\n  class: \"\"\n")})
	var fe *rules.FormatError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, 1, fe.Line)
	require.ErrorIs(t, err, rules.ErrEmptyLabel)

	rs, err := rules.Load([]rules.Source{src("empty.yaml", "")})
	require.NoError(t, err)
	require.Empty(t, rs.FrameRules())
}
