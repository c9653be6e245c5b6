package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/maxgio92/perf-class/pkg/report"
)

var ErrUnknownFormat = errors.New("unknown format")

type denominatorValue report.Denominator

var _ pflag.Value = (*denominatorValue)(nil)

func (d *denominatorValue) String() string {
	return report.Denominator(*d).String()
}

func (d *denominatorValue) Set(s string) error {
	v, err := report.ParseDenominator(s)
	if err != nil {
		return err
	}
	*d = denominatorValue(v)

	return nil
}

func (d *denominatorValue) Type() string {
	return "denominator"
}

type formatValue string

const (
	formatText  formatValue = "text"
	formatJSON  formatValue = "json"
	formatTable formatValue = "table"
)

var _ pflag.Value = (*formatValue)(nil)

func (f *formatValue) String() string {
	return string(*f)
}

func (f *formatValue) Set(s string) error {
	switch v := formatValue(s); v {
	case formatText, formatJSON, formatTable:
		*f = v
		return nil
	}

	return errors.Wrap(ErrUnknownFormat, fmt.Sprintf("%s (want %s, %s or %s)", s, formatText, formatJSON, formatTable))
}

func (f *formatValue) Type() string {
	return "format"
}
