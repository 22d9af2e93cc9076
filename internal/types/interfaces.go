package types

import "context"

type ChatCompleter interface {
	ChatCompletion(ctx context.Context, systemPrompt, query string) (string, error)
}

type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoId string, languages []string) (*Transcript, error)
}

type BilibiliFetcher interface {
	FetchSubtitle(ctx context.Context, subtitleUrl string) (*Transcript, error)
}
