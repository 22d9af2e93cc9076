package subtitle

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"deja-vocab/internal/types"
)

// Decision is a boundary hint's verdict on joining the next cue to the current group.
type Decision int

const (
	NoOpinion Decision = iota
	ForceMerge
	ForceSplit
)

func (d Decision) String() string {
	switch d {
	case ForceMerge:
		return "merge"
	case ForceSplit:
		return "split"
	default:
		return "none"
	}
}

// BoundaryHint decides whether nextText continues the sentence in groupText.
// A decision other than NoOpinion overrides the timing gate.
type BoundaryHint interface {
	Decide(groupText, nextText string) Decision
}

type BoundaryHintFunc func(groupText, nextText string) Decision

func (f BoundaryHintFunc) Decide(groupText, nextText string) Decision {
	return f(groupText, nextText)
}

// EnglishBoundaryHint approximates English sentence boundaries with punctuation,
// conjunction and capitalization rules.
var EnglishBoundaryHint BoundaryHint = BoundaryHintFunc(englishBoundary)

// groups up to this many runes skip the boundary hint
const semanticMinChars = 10

var (
	sentenceEndings      = ".?!:;"
	trailingConjunctions = []string{" and", " but", " or", " nor", " so", " yet", " for"}
	connectingWords      = map[string]struct{}{
		"and": {}, "but": {}, "or": {}, "so": {}, "because": {},
		"however": {}, "though": {}, "although": {}, "yet": {}, "still": {},
	}
)

func englishBoundary(groupText, nextText string) Decision {
	trimmed := strings.TrimSpace(groupText)
	if trimmed != "" {
		last, _ := utf8.DecodeLastRuneInString(trimmed)
		if strings.ContainsRune(sentenceEndings, last) {
			return ForceSplit
		}
	}

	lower := strings.ToLower(groupText)
	for _, conj := range trailingConjunctions {
		if strings.HasSuffix(lower, conj) {
			return ForceMerge
		}
	}

	next := strings.TrimSpace(nextText)
	if next == "" {
		return ForceSplit
	}
	first, _ := utf8.DecodeRuneInString(next)
	switch {
	case unicode.IsLower(first):
		return ForceMerge
	case unicode.IsUpper(first) && !strings.HasSuffix(groupText, ","):
		firstWord := strings.ToLower(strings.Fields(next)[0])
		if _, ok := connectingWords[firstWord]; ok {
			return ForceMerge
		}
		return ForceSplit
	}
	return NoOpinion
}

// MergeConfig bounds how far a group may grow. MaxDuration and MaxChars <= 0, or a
// negative MaxGap, fall back to DefaultMergeConfig values; a nil Hint uses EnglishBoundaryHint.
type MergeConfig struct {
	MaxGap      float64
	MaxDuration float64
	MaxChars    int
	Hint        BoundaryHint
}

func DefaultMergeConfig() MergeConfig {
	return MergeConfig{MaxGap: 1.0, MaxDuration: 10.0, MaxChars: 200}
}

// DirectFetchMergeConfig is tuned for subtitles fetched and stored per video.
func DirectFetchMergeConfig() MergeConfig {
	return MergeConfig{MaxGap: 0.8, MaxDuration: 8.0, MaxChars: 160}
}

// AutoFetchMergeConfig is tuned for subtitles collected on the fly without saving.
func AutoFetchMergeConfig() MergeConfig {
	return MergeConfig{MaxGap: 2.0, MaxDuration: 10.0, MaxChars: 300}
}

func (c MergeConfig) withDefaults() MergeConfig {
	def := DefaultMergeConfig()
	if c.MaxGap < 0 {
		c.MaxGap = def.MaxGap
	}
	if c.MaxDuration <= 0 {
		c.MaxDuration = def.MaxDuration
	}
	if c.MaxChars <= 0 {
		c.MaxChars = def.MaxChars
	}
	if c.Hint == nil {
		c.Hint = EnglishBoundaryHint
	}
	return c
}

type group struct {
	start float64
	end   float64
	text  strings.Builder
	runes int
}

func newGroup(c types.Cue) *group {
	g := &group{start: c.Start, end: c.End, runes: runeLen(c.Text)}
	g.text.WriteString(c.Text)
	return g
}

func (g *group) add(c types.Cue) {
	g.text.WriteByte(' ')
	g.text.WriteString(c.Text)
	g.runes += 1 + runeLen(c.Text)
	g.end = c.End
}

func (g *group) close() types.MergedCue {
	return types.MergedCue{Start: g.start, End: g.end, Text: g.text.String()}
}

func (c MergeConfig) shouldMerge(g *group, next types.Cue) bool {
	gap := next.Start - g.end
	span := next.End - g.start
	chars := g.runes + 1 + runeLen(next.Text)
	merge := gap <= c.MaxGap && span <= c.MaxDuration && chars <= c.MaxChars

	if g.runes <= semanticMinChars {
		return merge
	}
	switch c.Hint.Decide(g.text.String(), next.Text) {
	case ForceMerge:
		return true
	case ForceSplit:
		return false
	}
	return merge
}

// Merge greedily joins adjacent cues into readable units. Sequences of zero or one cue
// are returned unchanged.
func Merge(cues []types.Cue, cfg MergeConfig) []types.MergedCue {
	if len(cues) <= 1 {
		out := make([]types.MergedCue, 0, len(cues))
		for _, c := range cues {
			out = append(out, types.MergedCue(c))
		}
		return out
	}
	cfg = cfg.withDefaults()

	merged := make([]types.MergedCue, 0, len(cues)/2+1)
	current := newGroup(cues[0])
	for _, next := range cues[1:] {
		if cfg.shouldMerge(current, next) {
			current.add(next)
			continue
		}
		merged = append(merged, current.close())
		current = newGroup(next)
	}
	return append(merged, current.close())
}
