package subtitle

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"deja-vocab/internal/types"
)

// [Music], [Applause] 等自动字幕噪声标记
var bracketAnnotationRegex = regexp.MustCompile(`\[.*?\]`)

// FilterNoise strips bracketed annotations and drops cues that carry fewer than two
// word characters afterwards.
func FilterNoise(cues []types.Cue) []types.Cue {
	out := make([]types.Cue, 0, len(cues))
	for _, cue := range cues {
		text := bracketAnnotationRegex.ReplaceAllString(cue.Text, "")
		if wordCharCount(text) <= 1 {
			continue
		}
		cue.Text = strings.TrimSpace(text)
		out = append(out, cue)
	}
	return out
}

func wordCharCount(text string) int {
	n := 0
	for _, r := range text {
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			n++
		}
	}
	return n
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
