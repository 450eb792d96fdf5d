package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// A Parser extracts metric records from a workload's captured stdout. Implementations
// must be total: unrecognized or malformed input yields fewer records, never an error.
// Record order must follow input line order so repeated parses are identical.
type Parser interface {
	Parse(raw string) []MetricRecord

	// A human-friendly name for this parser. Only used for debugging/printing.
	GetName() string
}

type parserType string

type parserFactory func(map[string]any) (Parser, error)

var parsers map[parserType]parserFactory

// All parsers must register themselves at module load time so that a workload image
// can be mapped to its parser by name in the configuration.
func RegisterParser(ptype string, f parserFactory) {
	if parsers == nil {
		parsers = map[parserType]parserFactory{}
	}
	parsers[parserType(ptype)] = f
}

func NewParser(ptype string, options map[string]any) (Parser, error) {
	f, ok := parsers[parserType(ptype)]
	if !ok {
		return nil, fmt.Errorf("unknown parser type: %s", ptype)
	}
	return f(options)
}

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// stripControl removes ANSI escape sequences and control characters so that colored
// or cursor-moving workload output still matches the line grammars.
func stripControl(line string) string {
	line = ansiEscape.ReplaceAllString(line, "")
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' {
			return -1
		}
		return r
	}, line)
}

// parseValue parses a decimal number, stripping thousands separators first.
func parseValue(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.ParseFloat(s, 64)
}

func splitLines(raw string) []string {
	return strings.Split(raw, "\n")
}
