package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"deja-vocab/internal/types"
)

const DefaultContextLimit = 200

// FormatClock renders seconds as MM:SS. Minutes are not wrapped into hours.
func FormatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FormatContext builds the subtitle block handed to the chat assistant.
func FormatContext(title, videoId string, cues []types.MergedCue, limit int) string {
	if limit <= 0 {
		limit = DefaultContextLimit
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "CURRENT VIDEO: %q (ID: %s)\n\nVIDEO SUBTITLES:\n", title, videoId)
	if len(cues) > limit {
		cues = cues[:limit]
	}
	for _, cue := range cues {
		text := strings.TrimSpace(cue.Text)
		if text == "" {
			continue
		}
		sb.WriteString(FormatClock(cue.Start))
		sb.WriteString(" - ")
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func srtTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3600000
	ms %= 3600000
	m := ms / 60000
	ms %= 60000
	s := ms / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// WriteSrt writes cues as numbered SRT blocks.
func WriteSrt(w io.Writer, cues []types.MergedCue) error {
	bw := bufio.NewWriter(w)
	for i, cue := range cues {
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(cue.Start), srtTimestamp(cue.End), cue.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}
