package youtube

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"deja-vocab/internal/types"
	"deja-vocab/log"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	ErrNoTranscript        = errors.New("no transcript available in the requested languages")
)

const (
	defaultBaseUrl = "https://www.youtube.com"
	maxAttempts    = 3
)

type Client struct {
	client  *resty.Client
	backoff time.Duration
}

// NewClient returns a timedtext client. A non-empty proxyAddr routes every request through it.
func NewClient(baseUrl, proxyAddr string) *Client {
	if baseUrl == "" {
		baseUrl = defaultBaseUrl
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseUrl, "/")).
		SetTimeout(30*time.Second).
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	if proxyAddr != "" {
		rc.SetProxy(proxyAddr)
	}
	return &Client{client: rc, backoff: time.Second}
}

// Track is one caption track listed for a video. Kind "asr" marks auto-generated captions.
type Track struct {
	LangCode string `xml:"lang_code,attr"`
	Name     string `xml:"name,attr"`
	Kind     string `xml:"kind,attr"`
}

func (t Track) Generated() bool {
	return t.Kind == "asr"
}

type trackList struct {
	XMLName xml.Name `xml:"transcript_list"`
	Tracks  []Track  `xml:"track"`
}

// TextItem is a single <text> element of a timedtext document.
type TextItem struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Text  string  `xml:",chardata"`
}

func (t TextItem) CueStart() float64    { return t.Start }
func (t TextItem) CueDuration() float64 { return t.Dur }
func (t TextItem) CueText() string      { return t.Text }

type transcriptDoc struct {
	XMLName xml.Name   `xml:"transcript"`
	Texts   []TextItem `xml:"text"`
}

func (c *Client) ListTracks(ctx context.Context, videoId string) ([]Track, error) {
	body, err := c.get(ctx, videoId, map[string]string{"type": "list", "v": videoId})
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrTranscriptsDisabled
	}
	var list trackList
	if err = xml.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("list tracks decode: %w", err)
	}
	if len(list.Tracks) == 0 {
		return nil, ErrTranscriptsDisabled
	}
	return list.Tracks, nil
}

// SelectTrack picks, for each preferred language in order, a manually created track
// before an auto-generated one.
func SelectTrack(tracks []Track, languages []string) (Track, bool) {
	for _, lang := range languages {
		var generated *Track
		for i := range tracks {
			if !matchLanguage(tracks[i].LangCode, lang) {
				continue
			}
			if !tracks[i].Generated() {
				return tracks[i], true
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return *generated, true
		}
	}
	return Track{}, false
}

func matchLanguage(code, want string) bool {
	code, want = strings.ToLower(code), strings.ToLower(want)
	return code == want || strings.HasPrefix(code, want+"-")
}

// FetchTranscript lists the caption tracks of a video and downloads the best match.
func (c *Client) FetchTranscript(ctx context.Context, videoId string, languages []string) (*types.Transcript, error) {
	tracks, err := c.ListTracks(ctx, videoId)
	if err != nil {
		return nil, err
	}
	track, ok := SelectTrack(tracks, languages)
	if !ok {
		return nil, fmt.Errorf("%w: wanted %v", ErrNoTranscript, languages)
	}

	params := map[string]string{"v": videoId, "lang": track.LangCode}
	if track.Name != "" {
		params["name"] = track.Name
	}
	if track.Generated() {
		params["kind"] = "asr"
	}
	body, err := c.get(ctx, videoId, params)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript: %w", err)
	}
	var doc transcriptDoc
	if err = xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("fetch transcript decode: %w", err)
	}

	records := make([]any, 0, len(doc.Texts))
	for _, item := range doc.Texts {
		// timedtext 中的文本经过二次转义，如 &amp;#39;
		item.Text = html.UnescapeString(item.Text)
		records = append(records, item)
	}
	log.GetLogger().Info("youtube transcript fetched",
		zap.String("videoId", videoId),
		zap.String("lang", track.LangCode),
		zap.Bool("generated", track.Generated()),
		zap.Int("items", len(records)))

	return &types.Transcript{
		VideoId:   videoId,
		Language:  track.LangCode,
		Generated: track.Generated(),
		Records:   records,
	}, nil
}

func (c *Client) get(ctx context.Context, videoId string, params map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get("/api/timedtext")
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode() == http.StatusOK:
			return resp.Body(), nil
		case resp.StatusCode() >= http.StatusInternalServerError || resp.StatusCode() == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("timedtext status %d", resp.StatusCode())
		default:
			return nil, fmt.Errorf("timedtext status %d", resp.StatusCode())
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.GetLogger().Warn("timedtext request attempt failed",
			zap.String("videoId", videoId),
			zap.Int("attempt", attempt+1),
			zap.Int("maxAttempts", maxAttempts),
			zap.Error(lastErr))

		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * c.backoff):
			}
		}
	}
	return nil, fmt.Errorf("timedtext failed after %d attempts: %w", maxAttempts, lastErr)
}
