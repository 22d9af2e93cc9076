package openai

import (
	"net/http"
	"net/url"

	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client  *openai.Client
	model   string
	BaseUrl string
	ApiKey  string
}

// NewClient 兼容openai协议的服务均可通过baseUrl接入
func NewClient(baseUrl, apiKey, model string, proxy *url.URL) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}

	if proxy != nil {
		transport := &http.Transport{
			Proxy: http.ProxyURL(proxy),
		}
		cfg.HTTPClient = &http.Client{
			Transport: transport,
		}
	}

	openAIclient := openai.NewClientWithConfig(cfg)
	return &Client{
		client:  openAIclient,
		model:   model,
		BaseUrl: baseUrl,
		ApiKey:  apiKey,
	}
}
