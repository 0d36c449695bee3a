package tools

import "unicode/utf8"

const (
	// ClipThreshold is the longest output passed through unchanged, in characters.
	ClipThreshold = 2000

	// ClipKeep is how many characters are kept from each end of longer output.
	ClipKeep = 1000

	// ClipMarker joins the kept head and tail.
	ClipMarker = "\n\n[...content clipped...]\n\n"
)

// Clip shortens text longer than ClipThreshold characters to its first and
// last ClipKeep characters joined by ClipMarker. Characters are runes.
func Clip(s string) string {
	if len(s) <= ClipThreshold || utf8.RuneCountInString(s) <= ClipThreshold {
		return s
	}
	runes := []rune(s)
	return string(runes[:ClipKeep]) + ClipMarker + string(runes[len(runes)-ClipKeep:])
}
