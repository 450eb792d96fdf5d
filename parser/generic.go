package parser

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/mitchellh/mapstructure"
)

// Matches one free-form console result line, e.g.
//
//	7-Zip - Test: Compression : 19,082 MIPS
var genericResultLine = regexp.MustCompile(`^(?P<tool>.+?)\s+-\s+Test:\s+(?P<test>.+?)\s*:\s*(?P<value>-?\d[\d,]*(?:\.\d+)?)\s+(?P<unit>\S+)\s*$`)

type GenericParserInput struct {
	// Pattern overrides the default line grammar. It must define the named capture
	// groups tool, test, value and unit.
	Pattern string
}

type genericParser struct {
	line *regexp.Regexp
}

func init() {
	RegisterParser("generic", func(a map[string]any) (Parser, error) {
		input := &GenericParserInput{}
		err := mapstructure.Decode(a, input)
		if err != nil {
			return nil, fmt.Errorf("can't convert options to GenericParserInput: %w", err)
		}
		return NewGenericParser(input)
	})
}

func NewGenericParser(input *GenericParserInput) (Parser, error) {
	line := genericResultLine
	if input.Pattern != "" {
		var err error
		line, err = regexp.Compile(input.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid line pattern: %w", err)
		}
		for _, group := range []string{"tool", "test", "value", "unit"} {
			if line.SubexpIndex(group) < 0 {
				return nil, fmt.Errorf("line pattern is missing the %q capture group", group)
			}
		}
	}
	return &genericParser{line: line}, nil
}

func (p *genericParser) GetName() string {
	return "generic"
}

// Parse applies the line grammar to every line of the log. Non-matching lines are
// banners or progress output and are skipped without a warning; matching lines with
// an unparseable value are skipped with one.
func (p *genericParser) Parse(raw string) []MetricRecord {
	records := []MetricRecord{}
	for _, line := range splitLines(raw) {
		m := p.line.FindStringSubmatch(stripControl(line))
		if m == nil {
			continue
		}

		value, err := parseValue(m[p.line.SubexpIndex("value")])
		if err != nil {
			slog.Debug("skipping result line with unparseable value",
				slog.String("line", line), slog.String("error", err.Error()))
			continue
		}

		records = append(records, MetricRecord{
			Tool:  m[p.line.SubexpIndex("tool")],
			Test:  m[p.line.SubexpIndex("test")],
			Unit:  m[p.line.SubexpIndex("unit")],
			Value: value,
		})
	}
	return records
}
