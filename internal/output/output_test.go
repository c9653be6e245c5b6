package output_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/maxgio92/perf-class/internal/output"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		width   int
		filled  int
	}{
		{"empty", 0, 10, 0},
		{"half", 50, 10, 5},
		{"full", 100, 10, 10},
		{"overflow is clamped", 250, 10, 10},
		{"negative is clamped", -5, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := output.ProgressBar(tt.percent, tt.width)
			require.Equal(t, tt.width, utf8.RuneCountInString(bar))
			require.Equal(t, tt.filled, strings.Count(bar, "█"))
		})
	}
}

func TestPrintRight(t *testing.T) {
	var buf bytes.Buffer
	output.PrintRight(&buf, 10, "abc")
	require.Equal(t, "\r       abc", buf.String())

	buf.Reset()
	output.PrintRight(&buf, 2, "abc")
	require.Equal(t, "\rabc", buf.String())
}

func TestWidthNotTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, 80, output.Width(f))
	require.False(t, output.IsTerminal(f))
}

func TestStatusBarStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	done := make(chan struct{})
	go func() {
		output.StatusBar(ctx, time.Millisecond, func() { calls.Add(1) })
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("status bar did not stop")
	}
}

func TestPrettyParseStatus(t *testing.T) {
	s := output.PrettyParseStatus(1200, 35, 400)
	require.Contains(t, s, "Events parsed: 1200")
	require.Contains(t, s, "Distinct stacks: 35")
	require.Contains(t, s, "Events/s: 400")
}
