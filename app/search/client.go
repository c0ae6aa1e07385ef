package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var ErrAPI = errors.New("news search API error")

const DefaultTimeout = 10 * time.Second

// Query describes one search. Headlines switches to the top-headlines
// endpoint, which is filtered by Country instead of Text.
type Query struct {
	Text      string
	Country   string
	Language  string
	PageSize  int
	Headlines bool
}

type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type response struct {
	Status   string    `json:"status"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Articles []Article `json:"articles"`
}

// Client talks to a NewsAPI compatible service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	timeout    time.Duration
}

func NewClient(httpClient *http.Client, baseURL, apiKey, userAgent string, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (c *Client) Search(ctx context.Context, q Query) ([]Article, error) {
	endpoint, err := c.buildURL(q)
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrAPI, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrAPI, err)
	}

	var result response
	if err := json.Unmarshal(body, &result); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: HTTP %d", ErrAPI, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrAPI, err)
	}

	if resp.StatusCode != http.StatusOK || result.Status != "ok" {
		return nil, fmt.Errorf("%w: HTTP %d: %s %s", ErrAPI, resp.StatusCode, result.Code, result.Message)
	}

	articles := make([]Article, 0, len(result.Articles))
	for _, a := range result.Articles {
		a.Title = strings.TrimSpace(a.Title)
		a.URL = strings.TrimSpace(a.URL)
		if a.Title == "" || !isWebURL(a.URL) {
			continue
		}
		articles = append(articles, a)
	}

	return articles, nil
}

func (c *Client) buildURL(q Query) (string, error) {
	params := url.Values{}
	path := "/everything"

	if q.Headlines {
		path = "/top-headlines"
		if q.Country != "" {
			params.Set("country", q.Country)
		}
	} else {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return "", fmt.Errorf("%w: empty query", ErrAPI)
		}
		params.Set("q", text)
		if q.Language != "" {
			params.Set("language", q.Language)
		}
	}

	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}

	return c.baseURL + path + "?" + params.Encode(), nil
}

// isWebURL reports whether raw is an absolute http(s) URL.
func isWebURL(raw string) bool {
	if strings.ContainsAny(raw, " \t\r\n") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
