package dto

type SubtitleItem struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

type AutoFetchSubtitlesReq struct {
	Url string `form:"url"`
}

type AutoFetchSubtitlesResData struct {
	VideoId       string         `json:"videoId"`
	Language      string         `json:"language"`
	Subtitles     []SubtitleItem `json:"subtitles"`
	Merged        bool           `json:"merged"`
	AutoCollected bool           `json:"auto_collected"`
	SavedToDb     bool           `json:"saved_to_db"`
	Cached        bool           `json:"cached"`
}

type FetchSubtitlesReq struct {
	Url   string `json:"url"`
	Title string `json:"title"`
}

type FetchSubtitlesResData struct {
	VideoRefId     uint   `json:"video_id"`
	Url            string `json:"url"`
	Title          string `json:"title"`
	Language       string `json:"language"`
	SubtitlesCount int64  `json:"subtitles_count"`
	Existing       bool   `json:"existing"`
	// 合并失败时为true，保存的是过滤后的字幕
	Fallback bool `json:"fallback"`
}

// SaveSubtitlesReq 浏览器插件直接提交的字幕
type SaveSubtitlesReq struct {
	VideoId    string         `json:"video_id"`
	VideoTitle string         `json:"video_title"`
	Subtitles  []SubtitleItem `json:"subtitles"`
}

type SaveSubtitlesResData struct {
	VideoRefId uint  `json:"video_id"`
	Saved      int   `json:"saved"`
	Existing   int64 `json:"existing"`
	Skipped    bool  `json:"skipped"`
}

type ResaveSubtitlesReq struct {
	VideoIds []uint `json:"video_ids"`
}

type ResaveItem struct {
	VideoRefId     uint   `json:"video_id"`
	Language       string `json:"language"`
	SubtitlesCount int    `json:"subtitles_count"`
	Fallback       bool   `json:"fallback"`
}

type ResaveFailure struct {
	VideoRefId uint   `json:"video_id"`
	Error      string `json:"error"`
}

type ResaveSubtitlesResData struct {
	Saved  []ResaveItem    `json:"saved"`
	Failed []ResaveFailure `json:"failed"`
}

type BilibiliSubtitlesReq struct {
	SubtitleUrl string `json:"subtitle_url"`
	VideoId     string `json:"video_id"`
	Title       string `json:"title"`
	Language    string `json:"language"`
}

type BilibiliSubtitlesResData struct {
	VideoRefId     uint           `json:"video_id"`
	Language       string         `json:"language"`
	Merged         bool           `json:"merged"`
	SubtitlesCount int            `json:"subtitles_count"`
	Subtitles      []SubtitleItem `json:"subtitles"`
}

type VideoInfo struct {
	Id       uint   `json:"id"`
	Platform string `json:"platform"`
	VideoId  string `json:"video_id"`
	Url      string `json:"url"`
	Title    string `json:"title"`
	Language string `json:"language"`
}

type GetVideoSubtitlesResData struct {
	Video     *VideoInfo     `json:"video"`
	Subtitles []SubtitleItem `json:"subtitles"`
}

type VideoChatReq struct {
	Question string `json:"question"`
}

type VideoChatResData struct {
	Answer string `json:"answer"`
}
