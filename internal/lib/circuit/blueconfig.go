package circuit

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Section is one "Type Name { Key Value ... }" block of a BlueConfig.
type Section struct {
	Type       string            `json:"type"`
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties"`
}

// Get returns a property value, or "" when it is not set.
func (s *Section) Get(key string) string {
	if s == nil {
		return ""
	}
	return s.Properties[key]
}

// BlueConfig is a parsed circuit configuration file.
type BlueConfig struct {
	Sections []Section `json:"sections"`
}

// Section returns the first section of the given type, nil if there is none.
func (b *BlueConfig) Section(sectionType string) *Section {
	for i := range b.Sections {
		if b.Sections[i].Type == sectionType {
			return &b.Sections[i]
		}
	}
	return nil
}

// Run returns the "Run" section, the one describing the circuit files.
func (b *BlueConfig) Run() *Section {
	return b.Section("Run")
}

// ParseBlueConfig reads a BlueConfig.
//
// Outside of braces a line opens a new section ("Run Default"); inside
// braces every line is a "Key Value" property. Braces must start their line
// and cannot nest. Blank lines and lines starting with '#' are ignored.
func ParseBlueConfig(r io.Reader) (*BlueConfig, error) {
	cfg := &BlueConfig{}
	outside := true
	lineNumber := 0
	var current *Section

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch line[0] {
		case '{':
			if !outside {
				return nil, fmt.Errorf("unexpected \"{\" at line %d", lineNumber)
			}
			if current == nil {
				return nil, fmt.Errorf("\"{\" without section header at line %d", lineNumber)
			}
			outside = false
			continue
		case '}':
			if outside {
				return nil, fmt.Errorf("unexpected \"}\" at line %d", lineNumber)
			}
			outside = true
			continue
		}

		key, val := splitProperty(line)
		if outside {
			cfg.Sections = append(cfg.Sections, Section{
				Type:       key,
				Name:       val,
				Properties: map[string]string{},
			})
			current = &cfg.Sections[len(cfg.Sections)-1]
		} else {
			current.Properties[key] = val
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading blue config: %w", err)
	}
	if !outside {
		return nil, fmt.Errorf("section %q is not closed", current.Type+" "+current.Name)
	}

	return cfg, nil
}

// splitProperty splits a line on its first space or tab.
func splitProperty(line string) (string, string) {
	pos := strings.IndexAny(line, " \t")
	if pos < 0 {
		return line, ""
	}
	return strings.TrimSpace(line[:pos]), strings.TrimSpace(line[pos:])
}
