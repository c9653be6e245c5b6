// Package source opens trace and rule files, transparently decompressing
// gzip and zstd content.
package source

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/maxgio92/perf-class/pkg/rules"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens path, or standard input for "-", for reading.
func Open(path string) (io.ReadCloser, error) {
	if path == Stdin {
		return NewReader(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	rc, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	rc.(*readCloser).closers = append(rc.(*readCloser).closers, f.Close)

	return rc, nil
}

// NewReader detects compressed content by its magic bytes. Closing the
// result does not close r.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open gzip stream")
		}
		return &readCloser{Reader: zr, closers: []func() error{zr.Close}}, nil
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open zstd stream")
		}
		return &readCloser{Reader: zr, closers: []func() error{func() error {
			zr.Close()
			return nil
		}}}, nil
	}

	return &readCloser{Reader: br}, nil
}

// ReadRuleSources reads rule files in the given order.
func ReadRuleSources(paths []string) ([]rules.Source, error) {
	sources := make([]rules.Source, 0, len(paths))
	for _, p := range paths {
		rc, err := Open(p)
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", p)
		}
		sources = append(sources, rules.Source{Name: p, Data: data})
	}

	return sources, nil
}
