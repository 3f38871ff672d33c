// Package adsource reads ad-platform insights as a transaction table, with
// generated demo data when the platform is unavailable.
package adsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	accountPrefix = "act_"
	pageLimit     = 1000
	maxPages      = 50
)

var insightFields = []string{"date_start", "ad_name", "campaign_name", "spend", "inline_link_clicks"}

// Insight is one ad-level insights row. Numbers arrive as strings.
type Insight struct {
	DateStart    string `json:"date_start"`
	AdName       string `json:"ad_name"`
	CampaignName string `json:"campaign_name"`
	Spend        string `json:"spend"`
	Clicks       string `json:"inline_link_clicks"`
}

type Query struct {
	AccountID string
	Since     time.Time
	Until     time.Time
}

// Client fetches ad insights for an account.
type Client interface {
	Insights(ctx context.Context, q Query) ([]Insight, error)
}

// NormalizeAccountID adds the account prefix when it is missing.
func NormalizeAccountID(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, accountPrefix) {
		return id
	}
	return accountPrefix + id
}

// GraphClient talks to the Graph API insights edge over HTTP.
type GraphClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewGraphClient(baseURL, token string, timeout time.Duration) *GraphClient {
	return &GraphClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type insightsPage struct {
	Data   []Insight `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (c *GraphClient) Insights(ctx context.Context, q Query) ([]Insight, error) {
	timeRange, err := json.Marshal(map[string]string{
		"since": q.Since.Format(time.DateOnly),
		"until": q.Until.Format(time.DateOnly),
	})
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("fields", strings.Join(insightFields, ","))
	params.Set("level", "ad")
	params.Set("limit", fmt.Sprint(pageLimit))
	params.Set("time_range", string(timeRange))
	params.Set("access_token", c.token)

	next := fmt.Sprintf("%s/%s/insights?%s", c.baseURL, NormalizeAccountID(q.AccountID), params.Encode())

	var all []Insight
	for page := 0; next != "" && page < maxPages; page++ {
		p, err := c.fetch(ctx, next)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Data...)
		next = p.Paging.Next
	}
	return all, nil
}

func (c *GraphClient) fetch(ctx context.Context, u string) (*insightsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch insights: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read insights: %w", err)
	}

	var page insightsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode insights (status %d): %w", resp.StatusCode, err)
	}
	if page.Error != nil {
		return nil, fmt.Errorf("insights api: %s (code %d)", page.Error.Message, page.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("insights api: unexpected status %d", resp.StatusCode)
	}
	return &page, nil
}
