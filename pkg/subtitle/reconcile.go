package subtitle

import "deja-vocab/internal/types"

// Reconcile anchors every cue's end to the next cue's start. The last cue ends at
// start+duration. Input order is kept as is.
func Reconcile(raw []types.RawCue) []types.Cue {
	cues := make([]types.Cue, len(raw))
	for i, r := range raw {
		end := r.Start + r.Duration
		if i < len(raw)-1 {
			end = raw[i+1].Start
		}
		cues[i] = types.Cue{Start: r.Start, End: end, Text: r.Text}
	}
	return cues
}
