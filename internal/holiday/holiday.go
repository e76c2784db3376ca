// Package holiday looks up public holidays from a Nager.Date compatible API.
package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/starstrip/starstrip-planner/internal/model"
)

// DefaultBaseURL is the public Nager.Date endpoint.
const DefaultBaseURL = "https://date.nager.at"

// Holiday is one public holiday as returned by the provider.
type Holiday struct {
	Date        string   `json:"date"`
	LocalName   string   `json:"localName"`
	Name        string   `json:"name"`
	CountryCode string   `json:"countryCode"`
	Fixed       bool     `json:"fixed"`
	Global      bool     `json:"global"`
	Counties    []string `json:"counties"`
	LaunchYear  *int     `json:"launchYear"`
	Types       []string `json:"types"`
}

// Config for Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
}

// Client fetches and caches holiday lists per country and year.
type Client struct {
	http *resty.Client
	cfg  Config
	log  zerolog.Logger

	mu    sync.Mutex
	cache map[string][]Holiday
}

func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 200 * time.Millisecond
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)
	return &Client{http: c, cfg: cfg, log: log, cache: map[string][]Holiday{}}
}

// PublicHolidays returns the holidays of country in year. Non-2xx responses
// are errors; 5xx and transport failures are retried.
func (c *Client) PublicHolidays(ctx context.Context, country string, year int) ([]Holiday, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if len(country) != 2 {
		return nil, fmt.Errorf("%w: country code %q", model.ErrValidation, country)
	}
	if year < 1900 || year > 2200 {
		return nil, fmt.Errorf("%w: year %d", model.ErrValidation, year)
	}
	key := fmt.Sprintf("%s/%d", country, year)

	c.mu.Lock()
	if hs, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return hs, nil
	}
	c.mu.Unlock()

	var out []Holiday
	op := func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetPathParams(map[string]string{"year": fmt.Sprint(year), "country": country}).
			Get("/api/v3/PublicHolidays/{year}/{country}")
		if err != nil {
			return fmt.Errorf("holiday request: %w", err)
		}
		switch {
		case resp.StatusCode() == http.StatusNoContent:
			out = []Holiday{}
			return nil
		case resp.StatusCode() >= 500:
			return fmt.Errorf("holiday provider status %d", resp.StatusCode())
		case resp.StatusCode() == http.StatusNotFound:
			return backoff.Permanent(fmt.Errorf("%w: no holidays for %s", model.ErrNotFound, key))
		case resp.IsError():
			return backoff.Permanent(fmt.Errorf("holiday provider status %d: %s", resp.StatusCode(), resp.String()))
		}
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode holidays: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.RetryWait), uint64(c.cfg.MaxRetries)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		c.log.Warn().Err(err).Str("key", key).Dur("retry_in", wait).Msg("holiday lookup retry")
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = out
	c.mu.Unlock()
	return out, nil
}

// HealthPing asks the provider for its country list once, without retries.
func (c *Client) HealthPing(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/api/v3/AvailableCountries")
	if err != nil {
		return fmt.Errorf("holiday provider unreachable: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("holiday provider status %d", resp.StatusCode())
	}
	return nil
}

// IsHoliday reports whether date falls on one of holidays.
func IsHoliday(date time.Time, holidays []Holiday) bool {
	_, ok := HolidayInfo(date, holidays)
	return ok
}

// HolidayInfo returns the holiday on date's calendar day.
func HolidayInfo(date time.Time, holidays []Holiday) (Holiday, bool) {
	d := date.Format(model.DateLayout)
	for _, h := range holidays {
		if h.Date == d {
			return h, true
		}
	}
	return Holiday{}, false
}

// HolidaysInRange returns the holidays between from and to inclusive, by date.
func HolidaysInRange(holidays []Holiday, from, to time.Time) []Holiday {
	lo, hi := from.Format(model.DateLayout), to.Format(model.DateLayout)
	var out []Holiday
	for _, h := range holidays {
		if h.Date >= lo && h.Date <= hi {
			out = append(out, h)
		}
	}
	return out
}

var nationalityToCountry = map[string]string{
	"US": "US",
	"GB": "GB",
	"DE": "DE",
	"FR": "FR",
	"JP": "JP",
	"KR": "KR",
	"AU": "AU",
	"CA": "CA",
	"ES": "ES",
	"IT": "IT",
}

// CountryForNationality maps a traveller nationality to a provider country code.
func CountryForNationality(code string) (string, bool) {
	c, ok := nationalityToCountry[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}
