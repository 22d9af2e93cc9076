package subtitle

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"deja-vocab/internal/types"
	"deja-vocab/log"

	"go.uber.org/zap"
)

var ErrBlankCueText = errors.New("cue text is blank")

// Pipeline runs raw records through adaptation, reconciliation, noise filtering and merging.
type Pipeline struct {
	Merge MergeConfig
	// SkipMerge returns the filtered cues one-to-one, used for transcripts the
	// boundary hint does not understand.
	SkipMerge bool
}

type Result struct {
	Filtered []types.Cue
	Merged   []types.MergedCue
	// Fallback is set when merging failed and Merged holds the filtered cues.
	Fallback bool
}

func NewPipeline(cfg MergeConfig) *Pipeline {
	return &Pipeline{Merge: cfg}
}

// Run returns an error only when a record cannot be adapted; merge failures fall back
// to the filtered cues.
func (p *Pipeline) Run(records []any) (*Result, error) {
	raw, err := Normalize(records)
	if err != nil {
		return nil, fmt.Errorf("normalize cues: %w", err)
	}
	return p.RunRaw(raw), nil
}

func (p *Pipeline) RunRaw(raw []types.RawCue) *Result {
	filtered := FilterNoise(Reconcile(raw))
	res := &Result{Filtered: filtered}

	if p.SkipMerge {
		res.Merged = asMerged(filtered)
		return res
	}

	merged, err := p.safeMerge(filtered)
	if err != nil {
		log.GetLogger().Warn("subtitle merge failed, using filtered cues",
			zap.Int("cues", len(filtered)), zap.Error(err))
		res.Merged = asMerged(filtered)
		res.Fallback = true
		return res
	}
	res.Merged = merged
	return res
}

func (p *Pipeline) safeMerge(cues []types.Cue) (merged []types.MergedCue, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.GetLogger().Error("subtitle merge panic recovered", zap.Any("panic", r), zap.String("stack", string(debug.Stack())))
			err = fmt.Errorf("merge panic: %v", r)
		}
	}()
	if err = checkMergeable(cues); err != nil {
		return nil, err
	}
	return Merge(cues, p.Merge), nil
}

func checkMergeable(cues []types.Cue) error {
	for i, c := range cues {
		if strings.TrimSpace(c.Text) == "" {
			return fmt.Errorf("cue %d: %w", i, ErrBlankCueText)
		}
	}
	return nil
}

func asMerged(cues []types.Cue) []types.MergedCue {
	out := make([]types.MergedCue, len(cues))
	for i, c := range cues {
		out[i] = types.MergedCue(c)
	}
	return out
}
