// Package analytics proxies visitor statistics from the external
// analytics service for the owner dashboard.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

type Range struct {
	StartDate string
	EndDate   string
}

type PageStat struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

type ReferrerStat struct {
	Source string `json:"source"`
	Visits int64  `json:"visits"`
}

type DailyStat struct {
	Date      string `json:"date"`
	PageViews int64  `json:"pageViews"`
	Visitors  int64  `json:"visitors"`
}

// Summary is what the dashboard renders. Degraded is set, with a Reason,
// whenever the numbers are zeros standing in for unavailable data.
type Summary struct {
	TotalPageViews int64          `json:"totalPageViews"`
	UniqueVisitors int64          `json:"uniqueVisitors"`
	PopularPages   []PageStat     `json:"popularPages"`
	Referrers      []ReferrerStat `json:"referrers"`
	DailyStats     []DailyStat    `json:"dailyStats"`
	Degraded       bool           `json:"degraded"`
	Reason         string         `json:"reason,omitempty"`
}

func empty(reason string) Summary {
	return Summary{
		PopularPages: []PageStat{},
		Referrers:    []ReferrerStat{},
		DailyStats:   []DailyStat{},
		Degraded:     true,
		Reason:       reason,
	}
}

// upstreamStats accepts the field spellings the analytics service has
// used over time.
type upstreamStats struct {
	TotalPageViews int64 `json:"totalPageViews"`
	UniqueVisitors int64 `json:"uniqueVisitors"`
	PopularPages   []struct {
		Path  string `json:"path"`
		URL   string `json:"url"`
		Views int64  `json:"views"`
		Count int64  `json:"count"`
	} `json:"popularPages"`
	Referrers []struct {
		Referrer string `json:"referrer"`
		Source   string `json:"source"`
		Visits   int64  `json:"visits"`
		Count    int64  `json:"count"`
	} `json:"referrers"`
	DailyStats []struct {
		Date      string `json:"date"`
		PageViews int64  `json:"pageViews"`
		Views     int64  `json:"views"`
		Visitors  int64  `json:"visitors"`
	} `json:"dailyStats"`
}

func (u upstreamStats) summary() Summary {
	s := Summary{
		TotalPageViews: u.TotalPageViews,
		UniqueVisitors: u.UniqueVisitors,
		PopularPages:   make([]PageStat, 0, len(u.PopularPages)),
		Referrers:      make([]ReferrerStat, 0, len(u.Referrers)),
		DailyStats:     make([]DailyStat, 0, len(u.DailyStats)),
	}
	for _, p := range u.PopularPages {
		s.PopularPages = append(s.PopularPages, PageStat{
			Path:  firstNonEmpty(p.Path, p.URL, "/"),
			Views: max(p.Views, p.Count),
		})
	}
	for _, r := range u.Referrers {
		s.Referrers = append(s.Referrers, ReferrerStat{
			Source: firstNonEmpty(r.Referrer, r.Source, "(direct)"),
			Visits: max(r.Visits, r.Count),
		})
	}
	for _, d := range u.DailyStats {
		s.DailyStats = append(s.DailyStats, DailyStat{
			Date:      d.Date,
			PageViews: max(d.PageViews, d.Views),
			Visitors:  d.Visitors,
		})
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type Client struct {
	endpoint  string
	websiteID string
	http      *http.Client
	cb        *gobreaker.CircuitBreaker
	log       *logrus.Logger
}

func NewClient(endpoint, websiteID string, timeout time.Duration, log *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		websiteID: websiteID,
		http:      &http.Client{Timeout: timeout},
		cb:        newBreaker("analytics", log),
		log:       log,
	}
}

func newBreaker(name string, log *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state changed")
		},
	})
}

// Configured reports whether an upstream is set.
func (c *Client) Configured() bool {
	return c.endpoint != "" && c.websiteID != ""
}

// Stats never fails. Anything that prevents real numbers yields a
// degraded, zeroed summary.
func (c *Client) Stats(ctx context.Context, r Range) Summary {
	if !c.Configured() {
		return empty("analytics is not configured")
	}

	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.fetch(ctx, r)
	})
	if err != nil {
		c.log.WithError(err).Warn("failed to fetch analytics")
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return empty("analytics service is temporarily unavailable")
		}
		return empty("analytics service request failed")
	}
	return result.(Summary)
}

func (c *Client) fetch(ctx context.Context, r Range) (Summary, error) {
	endpoint := fmt.Sprintf("%s/api/websites/%s/stats", c.endpoint, url.PathEscape(c.websiteID))
	query := url.Values{}
	if r.StartDate != "" {
		query.Set("startDate", r.StartDate)
	}
	if r.EndDate != "" {
		query.Set("endDate", r.EndDate)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Summary{}, fmt.Errorf("request analytics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Summary{}, fmt.Errorf("analytics returned status %d", resp.StatusCode)
	}

	var stats upstreamStats
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&stats); err != nil {
		return Summary{}, fmt.Errorf("decode analytics response: %w", err)
	}
	return stats.summary(), nil
}
