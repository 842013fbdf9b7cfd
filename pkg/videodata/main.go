package videodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrVideoNotFound      = errors.New("video not found")
	ErrVideoNotEmbeddable = errors.New("video is not embeddable")
)

type VideoData struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

type Client struct {
	httpClient           *http.Client
	youtubeOEmbedURL     string
	youtubePageURL       string
	youtubeThumbnailURL  string
	dailymotionOEmbedURL string
}

func New(timeout time.Duration) *Client {
	return &Client{
		httpClient:           &http.Client{Timeout: timeout},
		youtubeOEmbedURL:     "https://www.youtube.com/oembed",
		youtubePageURL:       "https://youtu.be/",
		youtubeThumbnailURL:  "https://i.ytimg.com/vi/%s/hqdefault.jpg",
		dailymotionOEmbedURL: "https://www.dailymotion.com/services/oembed",
	}
}

// YouTube resolves metadata through oEmbed and falls back to the watch page
// when the owner disabled embedding.
func (c *Client) YouTube(ctx context.Context, videoId string) (*VideoData, error) {
	videoData, err := c.getWithEmbed(ctx, c.youtubeOEmbedURL, "https://www.youtube.com/watch?v="+videoId)
	if err != nil {
		if !errors.Is(err, ErrVideoNotEmbeddable) {
			return nil, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		videoData, err = c.getFromPage(ctx, videoId)
		if err != nil {
			return nil, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}

	return videoData, nil
}

func (c *Client) Dailymotion(ctx context.Context, videoId string) (*VideoData, error) {
	videoData, err := c.getWithEmbed(ctx, c.dailymotionOEmbedURL, "https://www.dailymotion.com/video/"+videoId)
	if err != nil {
		return nil, fmt.Errorf("failed to get video data with embed: %w", err)
	}

	return videoData, nil
}
