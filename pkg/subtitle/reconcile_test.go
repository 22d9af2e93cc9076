package subtitle

import (
	"testing"

	"deja-vocab/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	raw := []types.RawCue{
		{Start: 0, Duration: 2, Text: "hello"},
		{Start: 2, Duration: 2, Text: "world"},
	}
	assert.Equal(t, []types.Cue{
		{Start: 0, End: 2, Text: "hello"},
		{Start: 2, End: 4, Text: "world"},
	}, Reconcile(raw))
}

func TestReconcile_ClosesGapsAndOverlaps(t *testing.T) {
	raw := []types.RawCue{
		{Start: 0.5, Duration: 4.2, Text: "overlaps the next"},
		{Start: 3.0, Duration: 0.5, Text: "leaves a gap"},
		{Start: 3.0, Duration: 1.0, Text: "same start"},
		{Start: 7.25, Duration: 1.5, Text: "last"},
	}
	got := Reconcile(raw)
	require.Len(t, got, len(raw))
	for i := 0; i < len(got)-1; i++ {
		assert.Equal(t, got[i+1].Start, got[i].End)
		assert.Equal(t, raw[i].Text, got[i].Text)
	}
	assert.Equal(t, 8.75, got[len(got)-1].End)
}

func TestReconcile_SingleAndEmpty(t *testing.T) {
	assert.Empty(t, Reconcile(nil))
	assert.Equal(t, []types.Cue{{Start: 4, End: 4, Text: "zero"}},
		Reconcile([]types.RawCue{{Start: 4, Duration: 0, Text: "zero"}}))
}
