package subtitle

import (
	"strings"
	"testing"

	"deja-vocab/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cue(start, end float64, text string) types.Cue {
	return types.Cue{Start: start, End: end, Text: text}
}

func texts(cues []types.MergedCue) []string {
	out := make([]string, len(cues))
	for i, c := range cues {
		out[i] = c.Text
	}
	return out
}

func TestMerge_EmptyAndSingle(t *testing.T) {
	assert.Empty(t, Merge(nil, DefaultMergeConfig()))
	assert.Empty(t, Merge([]types.Cue{}, DefaultMergeConfig()))

	got := Merge([]types.Cue{cue(0, 1, "hi")}, DefaultMergeConfig())
	assert.Equal(t, []types.MergedCue{{Start: 0, End: 1, Text: "hi"}}, got)
}

func TestMerge_ShortFragmentsFollowTimingGate(t *testing.T) {
	got := Merge([]types.Cue{cue(0, 2, "hello"), cue(2, 4, "world")}, DefaultMergeConfig())
	assert.Equal(t, []types.MergedCue{{Start: 0, End: 4, Text: "hello world"}}, got)
}

func TestMerge_Rules(t *testing.T) {
	tests := []struct {
		name string
		cues []types.Cue
		cfg  MergeConfig
		want []string
	}{
		{
			name: "terminal period splits",
			cues: []types.Cue{cue(0, 2, "I went home."), cue(2, 4, "Then I slept.")},
			want: []string{"I went home.", "Then I slept."},
		},
		{
			name: "terminal punctuation wins over lowercase continuation",
			cues: []types.Cue{cue(0, 2, "Are you ready?"), cue(2, 4, "yes we are")},
			want: []string{"Are you ready?", "yes we are"},
		},
		{
			name: "short group ending in period still merges",
			cues: []types.Cue{cue(0, 2, "Go home."), cue(2, 4, "Then sleep.")},
			want: []string{"Go home. Then sleep."},
		},
		{
			name: "dangling conjunction merges before uppercase check",
			cues: []types.Cue{cue(0, 2, "I wanted to go but"), cue(2, 4, "It was raining")},
			want: []string{"I wanted to go but It was raining"},
		},
		{
			name: "dangling conjunction overrides the timing gate",
			cues: []types.Cue{cue(0, 2, "I wanted to go but"), cue(5, 7, "it was raining")},
			want: []string{"I wanted to go but it was raining"},
		},
		{
			name: "lowercase start continues the sentence",
			cues: []types.Cue{cue(0, 2, "This is the first"), cue(2, 4, "part of it")},
			want: []string{"This is the first part of it"},
		},
		{
			name: "lowercase start overrides the gap limit",
			cues: []types.Cue{cue(0, 2, "This is the first"), cue(4, 6, "part of it")},
			want: []string{"This is the first part of it"},
		},
		{
			name: "uppercase start is a new sentence",
			cues: []types.Cue{cue(0, 2, "We talked a lot"), cue(2, 4, "Then we left")},
			want: []string{"We talked a lot", "Then we left"},
		},
		{
			name: "uppercase connector word merges",
			cues: []types.Cue{cue(0, 2, "It was late"), cue(2, 4, "But we stayed")},
			want: []string{"It was late But we stayed"},
		},
		{
			name: "trailing comma defers to the timing gate",
			cues: []types.Cue{cue(0, 2, "When I arrived,"), cue(2, 4, "Everyone cheered")},
			want: []string{"When I arrived, Everyone cheered"},
		},
		{
			name: "trailing comma with a long gap splits",
			cues: []types.Cue{cue(0, 2, "When I arrived,"), cue(5, 7, "Everyone cheered")},
			want: []string{"When I arrived,", "Everyone cheered"},
		},
		{
			name: "digit start defers to the timing gate",
			cues: []types.Cue{cue(0, 2, "The count was"), cue(2, 4, "42 people")},
			want: []string{"The count was 42 people"},
		},
		{
			name: "digit start with a long gap splits",
			cues: []types.Cue{cue(0, 2, "The count was"), cue(3.5, 4, "42 people")},
			want: []string{"The count was", "42 people"},
		},
		{
			name: "empty next text splits",
			cues: []types.Cue{cue(0, 2, "This is a test"), cue(2, 4, "")},
			want: []string{"This is a test", ""},
		},
		{
			name: "character ceiling splits short fragments",
			cues: []types.Cue{cue(0, 1, "short one"), cue(1, 2, "another bit")},
			cfg:  MergeConfig{MaxGap: 1, MaxDuration: 10, MaxChars: 20},
			want: []string{"short one", "another bit"},
		},
		{
			name: "duration ceiling splits short fragments",
			cues: []types.Cue{cue(0, 6, "okay so"), cue(6, 12, "right")},
			want: []string{"okay so", "right"},
		},
		{
			name: "conjunction keeps the group open across several cues",
			cues: []types.Cue{
				cue(0, 1, "oh my god"),
				cue(1, 2, "i can't believe"),
				cue(2, 3, "it and"),
				cue(3, 4, "You know what."),
				cue(4, 5, "Next topic"),
			},
			want: []string{"oh my god i can't believe it and You know what.", "Next topic"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.cues, tt.cfg)
			assert.Equal(t, tt.want, texts(got))
		})
	}
}

func TestMerge_TimesComeFromGroupEdges(t *testing.T) {
	cues := []types.Cue{
		cue(1.5, 2.5, "so this is"),
		cue(2.5, 3.1, "where we"),
		cue(3.1, 4.0, "start today."),
		cue(4.0, 6.25, "Welcome everyone"),
	}
	got := Merge(cues, DefaultMergeConfig())
	require.Len(t, got, 2)
	assert.Equal(t, types.MergedCue{Start: 1.5, End: 4.0, Text: "so this is where we start today."}, got[0])
	assert.Equal(t, types.MergedCue{Start: 4.0, End: 6.25, Text: "Welcome everyone"}, got[1])
}

func TestMerge_GapAboveLimitKeepsEveryCue(t *testing.T) {
	var cues []types.Cue
	for i := 0; i < 6; i++ {
		start := float64(i) * 3
		cues = append(cues, cue(start, start+1, "word"))
	}
	got := Merge(cues, DefaultMergeConfig())
	assert.Len(t, got, len(cues))
	for i, c := range got {
		assert.Equal(t, cues[i].Start, c.Start)
		assert.Equal(t, cues[i].End, c.End)
	}
}

func TestMerge_CoverageAndOrder(t *testing.T) {
	input := []string{
		"so today we're going", "to talk about", "Go interfaces.", "They are", "implicitly satisfied",
		"and that means", "You never declare", "intent", "However the compiler", "still checks",
		"every assignment.", "Questions?", "ok", "Let's move on",
	}
	var cues []types.Cue
	for i, text := range input {
		cues = append(cues, cue(float64(i)*1.2, float64(i+1)*1.2, text))
	}

	for _, cfg := range []MergeConfig{DefaultMergeConfig(), DirectFetchMergeConfig(), AutoFetchMergeConfig()} {
		got := Merge(cues, cfg)
		assert.Equal(t, strings.Join(input, " "), strings.Join(texts(got), " "))
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].Start, got[i].Start)
			assert.LessOrEqual(t, got[i-1].End, got[i].Start)
		}
		assert.Equal(t, cues[0].Start, got[0].Start)
		assert.Equal(t, cues[len(cues)-1].End, got[len(got)-1].End)
	}
}

func TestMerge_InjectedHint(t *testing.T) {
	var calls int
	always := BoundaryHintFunc(func(groupText, nextText string) Decision {
		calls++
		return ForceMerge
	})
	cues := []types.Cue{
		cue(0, 1, "First sentence."),
		cue(30, 31, "Second sentence."),
		cue(60, 61, "Third sentence."),
	}
	got := Merge(cues, MergeConfig{Hint: always})
	require.Len(t, got, 1)
	assert.Equal(t, "First sentence. Second sentence. Third sentence.", got[0].Text)
	assert.Equal(t, 2, calls)
}

func TestMerge_HintSkippedForShortGroups(t *testing.T) {
	called := false
	hint := BoundaryHintFunc(func(groupText, nextText string) Decision {
		called = true
		return ForceSplit
	})
	got := Merge([]types.Cue{cue(0, 1, "ten chars!"), cue(1, 2, "more")}, MergeConfig{Hint: hint})
	assert.False(t, called)
	assert.Equal(t, []string{"ten chars! more"}, texts(got))
}

func TestMerge_CountsRunesNotBytes(t *testing.T) {
	// 6 runes, 18 bytes: below the semantic threshold, so "Über" must not force a split
	got := Merge([]types.Cue{cue(0, 1, "日本語の話を"), cue(1, 2, "Über alles")}, DefaultMergeConfig())
	assert.Equal(t, []string{"日本語の話を Über alles"}, texts(got))
}

func TestMergeConfig_WithDefaults(t *testing.T) {
	c := MergeConfig{MaxGap: -1}.withDefaults()
	assert.Equal(t, 1.0, c.MaxGap)
	assert.Equal(t, 10.0, c.MaxDuration)
	assert.Equal(t, 200, c.MaxChars)
	assert.NotNil(t, c.Hint)

	zeroGap := MergeConfig{MaxGap: 0, MaxDuration: 5, MaxChars: 50}.withDefaults()
	assert.Equal(t, 0.0, zeroGap.MaxGap)
	assert.Equal(t, 5.0, zeroGap.MaxDuration)
}

func TestEnglishBoundaryHint(t *testing.T) {
	tests := []struct {
		group string
		next  string
		want  Decision
	}{
		{"I went home.", "Then I slept.", ForceSplit},
		{"Really?", "yes", ForceSplit},
		{"Wait!  ", "no", ForceSplit},
		{"Note the following:", "first", ForceSplit},
		{"one thing;", "another", ForceSplit},
		{"bread AND", "Butter", ForceMerge},
		{"now or", "Never", ForceMerge},
		{"neither this nor", "That", ForceMerge},
		{"it was cheap so", "We bought it", ForceMerge},
		{"and yet", "It moves", ForceMerge},
		{"we waited for", "Hours", ForceMerge},
		{"brand", "New", ForceSplit},
		{"we kept going", "  and going", ForceMerge},
		{"we kept going", "Because we could", ForceMerge},
		{"we kept going", "However tired", ForceMerge},
		{"we kept going", "Still", ForceMerge},
		{"we kept going", "Nobody stopped", ForceSplit},
		{"we kept going,", "Nobody stopped", NoOpinion},
		{"we kept going", "42 times", NoOpinion},
		{"we kept going", "\"Quoted\"", NoOpinion},
		{"we kept going", "   ", ForceSplit},
		{"we kept going", "Élan vital", ForceSplit},
	}
	for _, tt := range tests {
		t.Run(tt.group+"|"+tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, EnglishBoundaryHint.Decide(tt.group, tt.next))
		})
	}
}
