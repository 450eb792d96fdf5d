package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeNameRFC1123(t *testing.T) {
	assert.Equal(t, "benchmark-d4sv5man", SanitizeNameRFC1123("benchmark-d4sv5man"))
	assert.Equal(t, "benchmarkpoolv2", SanitizeNameRFC1123("benchmark_pool v2"))
	assert.Equal(t, "a1pool", SanitizeNameRFC1123("1pool"))
	assert.Equal(t, "a", SanitizeNameRFC1123("!!!"))
	assert.Len(t, SanitizeNameRFC1123(strings.Repeat("x", 300)), 253)
}
