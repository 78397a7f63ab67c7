package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRegion(t *testing.T) {
	for _, r := range Regions() {
		got, ok := ParseRegion(string(r))
		assert.True(t, ok)
		assert.Equal(t, r, got)
	}

	for _, bad := range []string{"", "eu", "RU", "EUW"} {
		_, ok := ParseRegion(bad)
		assert.False(t, ok, "input %q", bad)
	}
}
