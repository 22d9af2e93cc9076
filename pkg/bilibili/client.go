package bilibili

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"deja-vocab/internal/types"
	"deja-vocab/log"

	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type Client struct {
	client *resty.Client
}

func NewClient(proxyAddr string) *Client {
	rc := resty.New().
		SetTimeout(10*time.Second).
		SetHeaders(map[string]string{
			"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
			"Referer":    "https://www.bilibili.com/",
			"Origin":     "https://www.bilibili.com",
			"Accept":     "application/json, text/plain, */*",
		})
	if proxyAddr != "" {
		rc.SetProxy(proxyAddr)
	}
	return &Client{client: rc}
}

// subtitleFile B站字幕json，body中每一项为 {from, to, location, content}
type subtitleFile struct {
	Body []map[string]any `json:"body"`
}

// FetchSubtitle downloads a Bilibili subtitle json file. Protocol-relative urls are fetched over https.
func (c *Client) FetchSubtitle(ctx context.Context, subtitleUrl string) (*types.Transcript, error) {
	if strings.HasPrefix(subtitleUrl, "//") {
		subtitleUrl = "https:" + subtitleUrl
	}

	var file subtitleFile
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&file).
		ForceContentType("application/json").
		Get(subtitleUrl)
	if err != nil {
		return nil, fmt.Errorf("bilibili subtitle request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("bilibili subtitle status %d", resp.StatusCode())
	}

	log.GetLogger().Info("获取B站字幕成功", zap.String("url", subtitleUrl), zap.Int("items", len(file.Body)))
	return &types.Transcript{
		Records: lo.Map(file.Body, func(item map[string]any, _ int) any { return item }),
	}, nil
}
