package types

// RawCue is a caption unit as delivered by a transcript source.
type RawCue struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// Cue is a caption unit after timestamp reconciliation.
type Cue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// MergedCue is one or more consecutive cues combined into a readable unit.
type MergedCue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

const (
	PlatformYoutube  = "youtube"
	PlatformBilibili = "bilibili"
)

// Transcript 字幕源返回的原始数据，Records 的具体形态由字幕源决定
type Transcript struct {
	VideoId   string
	Language  string
	Generated bool
	Records   []any
}
