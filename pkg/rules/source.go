package rules

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Source is one named rule file content.
type Source struct {
	Name string
	Data []byte
}

func (s Source) isYAML() bool {
	switch strings.ToLower(filepath.Ext(s.Name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

type yamlRule struct {
	Pattern string `yaml:"pattern"`
	Class   string `yaml:"class"`
	Process bool   `yaml:"process"`
}

type rawRule struct {
	line    int
	text    string
	pattern string
	label   string
	process bool
	err     error
}

// parseText splits a line-oriented rule source into raw rules.
func parseText(src Source) []rawRule {
	var out []rawRule
	for i, line := range strings.Split(string(src.Data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		r := rawRule{line: i + 1, text: line}
		parts := strings.Split(line, ":")
		if len(parts) != 2 {
			r.err = ErrSeparator
			out = append(out, r)
			continue
		}
		r.pattern = strings.TrimSpace(parts[0])
		r.label = strings.TrimSpace(parts[1])
		if strings.HasPrefix(r.pattern, processMarker) {
			r.pattern = strings.TrimPrefix(r.pattern, processMarker)
			r.process = true
		}
		out = append(out, r)
	}

	return out
}

// parseYAML decodes a list of {pattern, class, process} entries.
func parseYAML(src Source) ([]rawRule, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src.Data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", src.Name)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	list := doc.Content[0]
	if list.Kind != yaml.SequenceNode {
		return nil, errors.Wrap(ErrYAMLNotList, src.Name)
	}

	out := make([]rawRule, 0, len(list.Content))
	for _, item := range list.Content {
		var yr yamlRule
		r := rawRule{line: item.Line}
		if err := item.Decode(&yr); err != nil {
			r.err = err
			out = append(out, r)
			continue
		}
		r.text = yr.Pattern + ":" + yr.Class
		r.pattern = strings.TrimSpace(yr.Pattern)
		r.label = strings.TrimSpace(yr.Class)
		r.process = yr.Process
		if strings.HasPrefix(r.pattern, processMarker) {
			r.pattern = strings.TrimPrefix(r.pattern, processMarker)
			r.process = true
		}
		out = append(out, r)
	}

	return out, nil
}
