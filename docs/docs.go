//go:build docs

// Command docs renders the perf-class CLI reference as markdown and man
// pages, and splices the markdown into README.md.
package main

import (
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	log "github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/maxgio92/perf-class/internal/settings"
	"github.com/maxgio92/perf-class/pkg/cmd"
)

const (
	docsDir        = "docs"
	manDir         = "docs/man"
	readmeTemplate = "README.md.tpl"
	readmeFile     = "README.md"
	templateMarker = "{{ .CLI_REFERENCE }}"
)

func linkHandler(filename string) string {
	if filename == settings.CmdName+".md" {
		return readmeFile
	}
	return path.Join(docsDir, filename)
}

func main() {
	logger := log.New(os.Stderr).Level(log.InfoLevel)

	root := cmd.NewCommand(cmd.NewOptions(
		cmd.WithLogger(logger),
		cmd.WithLogLevel(settings.DefaultLogLevel),
	))

	if err := generate(root); err != nil {
		logger.Error().Err(err).Msg("failed to generate docs")
		os.Exit(1)
	}
}

func generate(root *cobra.Command) error {
	if err := doc.GenMarkdownTreeCustom(root, docsDir, func(string) string { return "" }, linkHandler); err != nil {
		return errors.Wrap(err, "failed to generate markdown")
	}

	if err := os.MkdirAll(manDir, 0o755); err != nil {
		return err
	}
	header := &doc.GenManHeader{Title: strings.ToUpper(settings.CmdName), Section: "1"}
	if err := doc.GenManTree(root, header, manDir); err != nil {
		return errors.Wrap(err, "failed to generate man pages")
	}

	tpl, err := os.ReadFile(readmeTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to read README template")
	}
	ref, err := os.ReadFile(path.Join(docsDir, settings.CmdName+".md"))
	if err != nil {
		return errors.Wrap(err, "failed to read CLI reference")
	}
	readme := strings.Replace(string(tpl), templateMarker, string(ref), 1)

	return os.WriteFile(readmeFile, []byte(readme), 0o644)
}
