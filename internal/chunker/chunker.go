// Package chunker splits raw document text into overlapping segments on
// natural boundaries, so each segment stays meaningful when embedded on
// its own.
package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Break markers in priority order. All markers are ASCII, so their rune
// length equals their byte length.
var breakMarkers = []string{"\n\n", "\n", ". ", " "}

// Chunk splits text into segments of up to chunkSize characters with up to
// chunkOverlap characters shared between consecutive segments. Each window's
// end boundary is pulled back to just after the last natural break found
// inside it; windows without any break keep the raw boundary. Text at or
// below chunkSize comes back as a single segment.
func Chunk(text string, chunkSize, chunkOverlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			window := string(runes[start:end])
			for _, marker := range breakMarkers {
				if idx := strings.LastIndex(window, marker); idx != -1 {
					end = start + utf8.RuneCountInString(window[:idx]) + len(marker)
					break
				}
			}
		}
		chunks = append(chunks, string(runes[start:end]))

		next := start + chunkSize - chunkOverlap
		if candidate := end - chunkOverlap; candidate > next {
			next = candidate
		}
		// Guarantees forward progress when chunkOverlap >= chunkSize.
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}
