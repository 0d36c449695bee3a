package tools

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestClipLeavesShortOutputAlone(t *testing.T) {
	for _, n := range []int{0, 1, 1999, 2000} {
		s := strings.Repeat("a", n)
		assert.Equal(t, s, Clip(s), "length %d", n)
	}
}

func TestClipLongOutput(t *testing.T) {
	head := strings.Repeat("h", 1000)
	middle := strings.Repeat("m", 1)
	tail := strings.Repeat("t", 1000)

	got := Clip(head + middle + tail)

	assert.Equal(t, head+ClipMarker+tail, got)
}

func TestClipCountsRunes(t *testing.T) {
	// 2000 multi-byte characters is still at the threshold.
	atLimit := strings.Repeat("é", 2000)
	assert.Equal(t, atLimit, Clip(atLimit))

	over := strings.Repeat("é", 1500) + strings.Repeat("ß", 1500)
	got := Clip(over)

	assert.True(t, utf8.ValidString(got))
	parts := strings.Split(got, ClipMarker)
	if assert.Len(t, parts, 2) {
		assert.Equal(t, strings.Repeat("é", 1000), parts[0])
		assert.Equal(t, strings.Repeat("ß", 1000), parts[1])
	}
}
