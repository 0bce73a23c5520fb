// Package text provides the word-wrap heuristic shared by the layout engine
// and every renderer.
//
// Wrap decisions are made from an estimated character width rather than real
// glyph metrics, so every consumer that draws text (SVG overlay, raster
// preview, PDF, slide export) must call this package instead of re-deriving
// wrap points. Divergence here is the main source of visual mismatch between
// the composited preview and exported editable documents.
package text

import (
	"strings"
	"unicode/utf8"
)

// CharWidthRatio is the estimated width of one character as a fraction of
// the font size. Shared by every consumer so that wrap decisions computed
// during layout match wrap decisions made at render time.
const CharWidthRatio = 0.55

// MaxChars returns how many characters fit in maxWidth at the given font size.
func MaxChars(fontSize, maxWidth float64) int {
	charWidth := fontSize * CharWidthRatio
	if charWidth <= 0 {
		return 0
	}
	return int(maxWidth / charWidth)
}

// WrapText splits text into lines that fit maxWidth using greedy word wrap.
// A single word longer than the limit is never split; it is emitted as its
// own overflowing line. Empty input yields no lines. Joining the returned
// lines with single spaces reconstructs the whitespace-normalized input.
func WrapText(text string, fontSize, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	maxChars := MaxChars(fontSize, maxWidth)

	var lines []string
	current := words[0]
	currentLen := utf8.RuneCountInString(current)
	for _, word := range words[1:] {
		// The budget counts characters, not bytes: "Crème" spends five.
		wordLen := utf8.RuneCountInString(word)
		if currentLen+1+wordLen <= maxChars {
			current += " " + word
			currentLen += 1 + wordLen
		} else {
			lines = append(lines, current)
			current = word
			currentLen = wordLen
		}
	}
	return append(lines, current)
}

// NeedsWrapping reports whether text exceeds the single-line character
// budget. A single word longer than the budget reports true even though
// WrapText emits it as one overflowing line.
func NeedsWrapping(text string, fontSize, maxWidth float64) bool {
	normalized := strings.Join(strings.Fields(text), " ")
	return utf8.RuneCountInString(normalized) > MaxChars(fontSize, maxWidth)
}
