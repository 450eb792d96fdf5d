package parser

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Matches one result line of the CSV block the Phoronix Test Suite prints at the end
// of a run, e.g.
//
//	"Flexible IO Tester - Disk Random Write, Block Size: 4KB (MB/s)",HIB,55.2
var ptsResultLine = regexp.MustCompile(`^"(?P<tool>.*) - (?P<test>.*?)\((?P<unit>.*)\)",(?P<hib>[^,]*),(?P<value>.*)$`)

type PTSParserInput struct {
	// Marker is the log line that introduces the result block. PTS images built for
	// this benchmark echo it right before dumping the results.
	Marker string
}

type ptsParser struct {
	marker string
}

func init() {
	RegisterParser("pts", func(a map[string]any) (Parser, error) {
		input := &PTSParserInput{}
		err := mapstructure.Decode(a, input)
		if err != nil {
			return nil, fmt.Errorf("can't convert options to PTSParserInput: %w", err)
		}
		return NewPTSParser(input), nil
	})
}

func NewPTSParser(input *PTSParserInput) Parser {
	marker := input.Marker
	if marker == "" {
		marker = "benchmarkresult"
	}
	return &ptsParser{marker: marker}
}

func (p *ptsParser) GetName() string {
	return "pts"
}

// Parse scans the lines following the marker for PTS result lines. Lines that do not
// match the grammar (banners, the system table, progress output) are skipped, so a
// log without a result block parses to an empty list.
func (p *ptsParser) Parse(raw string) []MetricRecord {
	records := []MetricRecord{}
	for _, line := range p.resultBlock(raw) {
		m := ptsResultLine.FindStringSubmatch(stripControl(line))
		if m == nil {
			continue
		}

		tool := m[ptsResultLine.SubexpIndex("tool")]
		test := strings.TrimSpace(m[ptsResultLine.SubexpIndex("test")])
		unit := m[ptsResultLine.SubexpIndex("unit")]

		if hib := m[ptsResultLine.SubexpIndex("hib")]; hib != "HIB" {
			slog.Debug("skipping result line with unexpected direction field",
				slog.String("line", line), slog.String("direction", hib))
			continue
		}

		value, err := parseValue(m[ptsResultLine.SubexpIndex("value")])
		if err != nil {
			slog.Debug("skipping result line with unparseable value",
				slog.String("line", line), slog.String("error", err.Error()))
			continue
		}

		records = append(records, MetricRecord{Tool: tool, Test: test, Unit: unit, Value: value})
	}
	return records
}

// resultBlock returns the log lines that follow the marker line, which is where PTS
// prints its CSV results. Returns nil when the marker is absent.
func (p *ptsParser) resultBlock(raw string) []string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if strings.TrimRight(stripControl(line), " \r") == p.marker {
			return lines[i+1:]
		}
	}
	slog.Debug("marker line not found in log", slog.String("marker", p.marker))
	return nil
}
