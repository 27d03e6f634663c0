package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// sentenceCutRatio is how far into a window a '.' must sit before the
// window is shortened to end on it.
const sentenceCutRatio = 0.5

// Segment is one chunk of text with its rune offsets in the source.
// Start and End bound the trimmed text, so source[Start:End] == Text.
type Segment struct {
	Text  string
	Start int
	End   int
}

// Validate checks chunk parameters.
func Validate(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidChunkParameters, chunkSize)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: overlap %d must not be negative", domain.ErrInvalidChunkParameters, overlap)
	}
	if overlap >= chunkSize {
		return fmt.Errorf("%w: overlap %d must be less than chunk size %d",
			domain.ErrInvalidChunkParameters, overlap, chunkSize)
	}
	return nil
}

// Split divides text into windows of at most chunkSize characters, with
// consecutive windows sharing overlap characters. A window that does not
// reach the end of the text is shortened to end on its last '.' when that
// '.' lies in the second half of the window. Segments are trimmed and empty
// ones are dropped. Sizes and offsets count runes, not bytes.
func Split(text string, chunkSize, overlap int) ([]Segment, error) {
	if err := Validate(chunkSize, overlap); err != nil {
		return nil, err
	}

	runes := []rune(text)
	n := len(runes)

	if n <= chunkSize {
		if seg, ok := trimmed(runes, 0, n); ok {
			return []Segment{seg}, nil
		}
		return nil, nil
	}

	segments := make([]Segment, 0, n/(chunkSize-overlap)+1)
	start := 0
	for start < n {
		end := min(start+chunkSize, n)

		if end < n {
			if cut := lastSentenceEnd(runes, start, end, chunkSize); cut > 0 && cut-overlap > start {
				end = cut
			}
		}

		if seg, ok := trimmed(runes, start, end); ok {
			segments = append(segments, seg)
		}

		if end >= n {
			break
		}
		start = end - overlap
	}

	return segments, nil
}

// lastSentenceEnd returns the offset just past the last '.' in
// runes[start:end] that sits beyond chunkSize*sentenceCutRatio from start,
// or 0 when there is none.
func lastSentenceEnd(runes []rune, start, end, chunkSize int) int {
	threshold := float64(chunkSize) * sentenceCutRatio
	for i := end - 1; i >= start; i-- {
		if float64(i-start) <= threshold {
			return 0
		}
		if runes[i] == '.' {
			return i + 1
		}
	}
	return 0
}

// trimmed strips surrounding whitespace from runes[start:end] and reports
// whether anything is left.
func trimmed(runes []rune, start, end int) (Segment, bool) {
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	if start == end {
		return Segment{}, false
	}
	return Segment{Text: string(runes[start:end]), Start: start, End: end}, true
}

// Texts returns the text of each segment.
func Texts(segments []Segment) []string {
	out := make([]string, len(segments))
	for i, s := range segments {
		out[i] = s.Text
	}
	return out
}

// Reassemble rebuilds source text from segments by appending, for each
// segment, only the part past the previous segment's end. Whitespace between
// non-adjacent segments collapses to a single space.
func Reassemble(segments []Segment) string {
	var b strings.Builder
	prevEnd := 0
	for i, s := range segments {
		runes := []rune(s.Text)
		skip := 0
		if i > 0 && s.Start < prevEnd {
			skip = prevEnd - s.Start
		} else if i > 0 && s.Start > prevEnd {
			b.WriteByte(' ')
		}
		if skip < len(runes) {
			b.WriteString(string(runes[skip:]))
		}
		prevEnd = max(prevEnd, s.End)
	}
	return b.String()
}
