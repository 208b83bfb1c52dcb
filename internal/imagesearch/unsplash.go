package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	unsplashSearchURL  = "https://api.unsplash.com/search/photos"
	defaultTimeout     = 15 * time.Second
	defaultOrientation = "landscape"
	maxPerPage         = 30
)

type UnsplashConfig struct {
	AccessKey   string
	BaseURL     string
	Orientation string
	Timeout     time.Duration
}

type UnsplashClient struct {
	accessKey   string
	orientation string
	httpClient  *http.Client
	baseURL     string
}

type searchResponse struct {
	Results []photo `json:"results"`
}

type photo struct {
	Description    string    `json:"description"`
	AltDescription string    `json:"alt_description"`
	URLs           photoURLs `json:"urls"`
	User           photoUser `json:"user"`
}

type photoURLs struct {
	Regular string `json:"regular"`
}

type photoUser struct {
	Name string `json:"name"`
}

func NewUnsplashClient(cfg UnsplashConfig) *UnsplashClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = unsplashSearchURL
	}
	orientation := cfg.Orientation
	if orientation == "" {
		orientation = defaultOrientation
	}

	return &UnsplashClient{
		accessKey:   cfg.AccessKey,
		orientation: orientation,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// Search issues one request and maps each photo to a Descriptor. Captions
// fall back from description to alt text to the raw query.
func (c *UnsplashClient) Search(ctx context.Context, query string, count int) ([]Descriptor, error) {
	if count > maxPerPage {
		count = maxPerPage
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(count))
	params.Set("orientation", c.orientation)

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("search api error: %s, body: %s", resp.Status, string(body))
	}

	return parseSearchResponse(resp.Body, query)
}

func parseSearchResponse(body io.Reader, query string) ([]Descriptor, error) {
	var searchResp searchResponse
	if err := json.NewDecoder(body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	results := make([]Descriptor, 0, len(searchResp.Results))
	for _, p := range searchResp.Results {
		if p.URLs.Regular == "" {
			continue
		}
		caption := p.Description
		if caption == "" {
			caption = p.AltDescription
		}
		if caption == "" {
			caption = query
		}
		results = append(results, Descriptor{
			URL:         p.URLs.Regular,
			Caption:     caption,
			Attribution: p.User.Name,
		})
	}

	return results, nil
}
