package util

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	youtubeIdRegex     = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)
	bareYoutubeIdRegex = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
	titleCounterRegex  = regexp.MustCompile(`^\(\d+\)\s+`)
)

// GetYouTubeID 从链接中提取11位视频ID，也接受裸ID
func GetYouTubeID(url string) (string, error) {
	url = strings.TrimSpace(url)
	if bareYoutubeIdRegex.MatchString(url) {
		return url, nil
	}
	matches := youtubeIdRegex.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", fmt.Errorf("no YouTube video id in %q", url)
	}
	return matches[1], nil
}

func YouTubeWatchURL(videoId string) string {
	return "https://www.youtube.com/watch?v=" + videoId
}

// CleanVideoTitle removes the "(19) " notification counter browsers prepend to tab titles.
func CleanVideoTitle(title string) string {
	return strings.TrimSpace(titleCounterRegex.ReplaceAllString(strings.TrimSpace(title), ""))
}

// IsEnglish reports whether a language code is English (en, en-US, en-GB ...).
func IsEnglish(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	return lang == "en" || strings.HasPrefix(lang, "en-") || strings.HasPrefix(lang, "en_")
}
