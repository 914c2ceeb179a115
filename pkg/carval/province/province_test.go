package province

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	code, ok := Code("Quebec")
	assert.True(t, ok)
	assert.Equal(t, "QC", code)

	code, ok = Code("quebec")
	assert.False(t, ok)
	assert.Empty(t, code)
}

func TestAllHaveCodes(t *testing.T) {
	assert.Len(t, All, 13)

	seen := make(map[string]bool)
	for _, name := range All {
		code, ok := Code(name)
		assert.True(t, ok, name)
		assert.Len(t, code, 2)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}
