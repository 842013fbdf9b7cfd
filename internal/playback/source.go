package playback

import (
	"net/url"
	"strings"
)

type Kind int

const (
	KindFile Kind = iota
	KindYouTube
	KindDailymotion
)

func (k Kind) String() string {
	switch k {
	case KindYouTube:
		return "youtube"
	case KindDailymotion:
		return "dailymotion"
	default:
		return "file"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Source is a shared-video URL resolved to the backend that renders it.
type Source struct {
	URL     string `json:"url"`
	Kind    Kind   `json:"kind"`
	VideoId string `json:"video_id,omitempty"`
}

// ParseSource selects a backend by URL pattern. Anything unrecognized is
// treated as a direct media file and left to the player to reject.
func ParseSource(rawURL string) Source {
	rawURL = strings.TrimSpace(rawURL)

	switch {
	case strings.Contains(rawURL, "youtube.com"):
		return Source{URL: rawURL, Kind: KindYouTube, VideoId: youtubeIdFromQuery(rawURL)}
	case strings.Contains(rawURL, "youtu.be"):
		return Source{URL: rawURL, Kind: KindYouTube, VideoId: segmentAfter(rawURL, "youtu.be/")}
	case strings.Contains(rawURL, "dailymotion.com"), strings.Contains(rawURL, "dai.ly"):
		return Source{URL: rawURL, Kind: KindDailymotion, VideoId: dailymotionId(rawURL)}
	default:
		return Source{URL: rawURL, Kind: KindFile}
	}
}

func youtubeIdFromQuery(rawURL string) string {
	_, rawQuery, found := strings.Cut(rawURL, "?")
	if found {
		rawQuery, _, _ = strings.Cut(rawQuery, "#")
		if query, err := url.ParseQuery(rawQuery); err == nil && query.Get("v") != "" {
			return query.Get("v")
		}
	}

	for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
		if id := segmentAfter(rawURL, prefix); id != "" {
			return id
		}
	}

	return ""
}

func dailymotionId(rawURL string) string {
	id := segmentAfter(rawURL, "/video/")
	if id == "" {
		id = segmentAfter(rawURL, "dai.ly/")
	}

	id, _, _ = strings.Cut(id, "_")
	return id
}

// segmentAfter returns the path segment following marker, without query or fragment.
func segmentAfter(rawURL, marker string) string {
	_, rest, found := strings.Cut(rawURL, marker)
	if !found {
		return ""
	}

	if i := strings.IndexAny(rest, "?#/&"); i >= 0 {
		rest = rest[:i]
	}

	return rest
}
