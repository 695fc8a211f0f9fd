package medium

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/madelynarsenault/portfolio/internal/writing"
)

const (
	DefaultBaseURL = writing.MediumURL

	// jsonPrefix guards Medium's JSON responses against script inclusion.
	jsonPrefix = "])}while(1);</x>"
)

type Client struct {
	http    *resty.Client
	baseURL string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetRetryCount(3).
			SetRetryWaitTime(2 * time.Second).
			SetRetryMaxWaitTime(10 * time.Second).
			SetHeader("User-Agent", "portfolio-builder"),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type profileResponse struct {
	Success bool `json:"success"`
	Payload struct {
		User struct {
			Username string `json:"username"`
			Name     string `json:"name"`
		} `json:"user"`
		References struct {
			Post map[string]jsonPost `json:"Post"`
		} `json:"references"`
	} `json:"payload"`
}

type jsonPost struct {
	ID         string `json:"id"`
	UniqueSlug string `json:"uniqueSlug"`
	Title      string `json:"title"`
	CreatedAt  int64  `json:"createdAt"`
	Virtuals   struct {
		Subtitle     string  `json:"subtitle"`
		ReadingTime  float64 `json:"readingTime"`
		PreviewImage struct {
			ImageID string `json:"imageId"`
		} `json:"previewImage"`
	} `json:"virtuals"`
}

// FetchProfile reads the user's latest posts from the JSON profile endpoint.
func (c *Client) FetchProfile(ctx context.Context, username string) (*Profile, error) {
	profileURL := fmt.Sprintf("%s/@%s/latest", c.baseURL, trimAt(username))
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"format": "json", "limit": "100"}).
		SetHeader("Accept", "application/json").
		Get(profileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile from %s: %w", profileURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), profileURL)
	}
	return DecodeProfile(resp.Body())
}

// DecodeProfile parses a JSON profile response body.
func DecodeProfile(body []byte) (*Profile, error) {
	body = bytes.TrimPrefix(bytes.TrimSpace(body), []byte(jsonPrefix))

	var r profileResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("failed to parse profile response: %w", err)
	}
	if r.Payload.User.Username == "" {
		return nil, fmt.Errorf("profile response has no user")
	}

	p := &Profile{
		User: writing.Author{
			Username: r.Payload.User.Username,
			Name:     r.Payload.User.Name,
		},
		Posts: make([]Post, 0, len(r.Payload.References.Post)),
	}
	for id, jp := range r.Payload.References.Post {
		if jp.ID == "" {
			jp.ID = id
		}
		p.Posts = append(p.Posts, Post{
			ID:             jp.ID,
			UniqueSlug:     jp.UniqueSlug,
			Title:          jp.Title,
			CreatedAt:      time.UnixMilli(jp.CreatedAt).UTC(),
			Subtitle:       jp.Virtuals.Subtitle,
			ReadingTime:    jp.Virtuals.ReadingTime,
			PreviewImageID: jp.Virtuals.PreviewImage.ImageID,
		})
	}
	return p, nil
}

func trimAt(username string) string {
	return strings.TrimPrefix(strings.TrimSpace(username), "@")
}
