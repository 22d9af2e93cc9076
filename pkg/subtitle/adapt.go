package subtitle

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"deja-vocab/internal/types"
)

// Record is an attribute-like raw cue, e.g. an element decoded from a timedtext document.
type Record interface {
	CueStart() float64
	CueDuration() float64
	CueText() string
}

// MalformedCueError reports a raw cue that cannot be turned into a RawCue.
type MalformedCueError struct {
	Index  int
	Field  string
	Reason string
}

func (e *MalformedCueError) Error() string {
	return fmt.Sprintf("malformed cue %d: field %q %s", e.Index, e.Field, e.Reason)
}

var htmlTagRegex = regexp.MustCompile(`<[^>]+>`)

// StripMarkup removes inline HTML tags such as <font> or <i> from caption text.
func StripMarkup(text string) string {
	return htmlTagRegex.ReplaceAllString(text, "")
}

// Normalize converts heterogeneous raw cue records into RawCue values.
// Supported shapes are types.RawCue, *types.RawCue, Record and map[string]any
// (keys start/duration/text, or the Bilibili from/to/content).
// Records whose text is blank after markup removal are dropped.
func Normalize(records []any) ([]types.RawCue, error) {
	out := make([]types.RawCue, 0, len(records))
	for i, rec := range records {
		raw, err := normalizeOne(i, rec)
		if err != nil {
			return nil, err
		}
		if err = checkRaw(i, raw); err != nil {
			return nil, err
		}
		raw.Text = StripMarkup(raw.Text)
		if strings.TrimSpace(raw.Text) == "" {
			continue
		}
		out = append(out, raw)
	}
	return out, nil
}

func normalizeOne(i int, rec any) (types.RawCue, error) {
	switch v := rec.(type) {
	case types.RawCue:
		return v, nil
	case *types.RawCue:
		if v == nil {
			return types.RawCue{}, &MalformedCueError{Index: i, Field: "record", Reason: "is nil"}
		}
		return *v, nil
	case Record:
		return types.RawCue{Start: v.CueStart(), Duration: v.CueDuration(), Text: v.CueText()}, nil
	case map[string]any:
		return fromMap(i, v)
	case nil:
		return types.RawCue{}, &MalformedCueError{Index: i, Field: "record", Reason: "is nil"}
	default:
		return types.RawCue{}, &MalformedCueError{Index: i, Field: "record", Reason: fmt.Sprintf("has unsupported type %T", rec)}
	}
}

func fromMap(i int, m map[string]any) (types.RawCue, error) {
	if _, ok := m["from"]; ok {
		return fromBilibiliMap(i, m)
	}

	start, err := numberField(i, m, "start")
	if err != nil {
		return types.RawCue{}, err
	}
	var duration float64
	if _, ok := m["duration"]; ok {
		duration, err = numberField(i, m, "duration")
	} else if _, ok = m["end"]; ok {
		// 部分字幕源直接给出end
		var end float64
		end, err = numberField(i, m, "end")
		duration = end - start
	} else {
		err = &MalformedCueError{Index: i, Field: "duration", Reason: "is missing"}
	}
	if err != nil {
		return types.RawCue{}, err
	}
	text, err := textField(i, m, "text")
	if err != nil {
		return types.RawCue{}, err
	}
	return types.RawCue{Start: start, Duration: duration, Text: text}, nil
}

func fromBilibiliMap(i int, m map[string]any) (types.RawCue, error) {
	from, err := numberField(i, m, "from")
	if err != nil {
		return types.RawCue{}, err
	}
	to, err := numberField(i, m, "to")
	if err != nil {
		return types.RawCue{}, err
	}
	text, err := textField(i, m, "content")
	if err != nil {
		return types.RawCue{}, err
	}
	return types.RawCue{Start: from, Duration: to - from, Text: text}, nil
}

func numberField(i int, m map[string]any, key string) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, &MalformedCueError{Index: i, Field: key, Reason: "is missing"}
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, &MalformedCueError{Index: i, Field: key, Reason: "is not a number"}
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, &MalformedCueError{Index: i, Field: key, Reason: "is not a number"}
		}
		return f, nil
	default:
		return 0, &MalformedCueError{Index: i, Field: key, Reason: fmt.Sprintf("has unsupported type %T", v)}
	}
}

func textField(i int, m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", &MalformedCueError{Index: i, Field: key, Reason: "is missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &MalformedCueError{Index: i, Field: key, Reason: fmt.Sprintf("has unsupported type %T", v)}
	}
	return s, nil
}

func checkRaw(i int, raw types.RawCue) error {
	if math.IsNaN(raw.Start) || math.IsInf(raw.Start, 0) {
		return &MalformedCueError{Index: i, Field: "start", Reason: "is not finite"}
	}
	if math.IsNaN(raw.Duration) || math.IsInf(raw.Duration, 0) {
		return &MalformedCueError{Index: i, Field: "duration", Reason: "is not finite"}
	}
	if raw.Duration < 0 {
		return &MalformedCueError{Index: i, Field: "duration", Reason: "is negative"}
	}
	return nil
}
