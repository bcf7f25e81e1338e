package caldav

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"remotework.service/internal/core/model"
)

const (
	requestTimeout = 30 * time.Second
	maxAttempts    = 3
)

// Client pushes remote work entries to a CalDAV server as all-day events.
//
// All operations degrade to a boolean failure signal: a sync problem must
// never block or roll back the local change that triggered it. The local
// database is the source of truth; the calendar is eventually consistent.
type Client struct {
	cfg    Config
	client *http.Client
	cb     *gobreaker.CircuitBreaker
}

// NewClient creates a CalDAV client with a fixed request timeout and a
// circuit breaker so a struggling calendar server is not hammered by
// every approval in a batch.
func NewClient(cfg Config) *Client {
	settings := gobreaker.Settings{
		Name:        "CalDAV",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is bigger then 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: requestTimeout,
		},
		cb: gobreaker.NewCircuitBreaker(settings),
	}
}

// IsEnabled reports whether calendar sync is switched on in configuration.
func (c *Client) IsEnabled() bool {
	return c.cfg.Enabled
}

// UpsertEvent creates or replaces the calendar event for the given entry.
// Returns false (without touching the network) when sync is disabled or
// the entry has no user.
func (c *Client) UpsertEvent(ctx context.Context, entry *model.RemoteWork) bool {
	if !c.IsEnabled() {
		return false
	}
	if entry.User == nil {
		return false
	}

	ics, err := SerializeSingleEventCalendar(entry, c.cfg.Domain())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Cannot serialize remote work entry for CalDAV")
		return false
	}

	url, err := c.EventURL(entry)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Cannot build CalDAV event URL")
		return false
	}

	return c.putEvent(ctx, url, ics)
}

// DeleteEvent removes the calendar event for the given entry. A 404 from
// the server counts as success: the desired end state already holds, so
// deletes stay idempotent under retries and races.
func (c *Client) DeleteEvent(ctx context.Context, entry *model.RemoteWork) bool {
	if !c.IsEnabled() {
		return false
	}
	if entry.User == nil {
		return false
	}

	url, err := c.EventURL(entry)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Cannot build CalDAV event URL")
		return false
	}

	return c.deleteRequest(ctx, url)
}

// SyncBatch upserts every approved entry in the input, sequentially, and
// returns the number of successful upserts. Entries not in approved
// status are skipped; they are neither synced nor counted as failures.
func (c *Client) SyncBatch(ctx context.Context, entries []*model.RemoteWork) int {
	if !c.IsEnabled() {
		return 0
	}

	synced := 0
	for _, entry := range entries {
		if !entry.IsApproved() {
			continue
		}
		if c.UpsertEvent(ctx, entry) {
			synced++
		}
	}

	return synced
}

// EventURL derives the deterministic resource locator for an entry from
// the configured base URL. It shares its identity tuple with EventUID so
// client and serializer can never drift apart.
func (c *Client) EventURL(entry *model.RemoteWork) (string, error) {
	if entry.User == nil {
		return "", ErrNoUser
	}

	filename, err := EventFilename(entry)
	if err != nil {
		return "", err
	}

	calendarURL := strings.ReplaceAll(c.cfg.BaseURL, "{username}", entry.User.Username)
	if !strings.HasSuffix(calendarURL, "/") {
		calendarURL += "/"
	}

	return calendarURL + filename, nil
}

func (c *Client) putEvent(ctx context.Context, url string, ics string) bool {
	status, body, err := c.send(ctx, http.MethodPut, url, ics)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("url", url).Msg("CalDAV PUT failed")
		return false
	}

	// 201 Created or 204 No Content are success
	if status != http.StatusCreated && status != http.StatusNoContent {
		log.Ctx(ctx).Error().
			Int("status", status).
			Str("url", url).
			Str("response", body).
			Msg("CalDAV PUT failed")
		return false
	}

	log.Ctx(ctx).Debug().Int("status", status).Str("url", url).Msg("CalDAV PUT successful")
	return true
}

func (c *Client) deleteRequest(ctx context.Context, url string) bool {
	status, body, err := c.send(ctx, http.MethodDelete, url, "")
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("url", url).Msg("CalDAV DELETE failed")
		return false
	}

	// 204 No Content, 200 OK, or 404 Not Found are all acceptable
	if status != http.StatusNoContent && status != http.StatusOK && status != http.StatusNotFound {
		log.Ctx(ctx).Error().
			Int("status", status).
			Str("url", url).
			Str("response", body).
			Msg("CalDAV DELETE failed")
		return false
	}

	log.Ctx(ctx).Debug().Int("status", status).Str("url", url).Msg("CalDAV DELETE successful")
	return true
}

// send performs one request through the circuit breaker, retrying
// transport-level failures with exponential backoff. Both PUT and DELETE
// are idempotent against a deterministic resource, so replays are safe.
func (c *Client) send(ctx context.Context, method, url, payload string) (int, string, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		resp, err := backoff.Retry(ctx, func() (*http.Response, error) {
			req, reqErr := http.NewRequestWithContext(ctx, method, url, strings.NewReader(payload))
			if reqErr != nil {
				return nil, backoff.Permanent(reqErr)
			}
			req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
			if method == http.MethodPut {
				req.Header.Set("Content-Type", "text/calendar; charset=utf-8")
			}
			return c.client.Do(req)
		}, backoff.WithMaxTries(maxAttempts), backoff.WithBackOff(backoff.NewExponentialBackOff()))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		// Keep a slice of the response around for error logging.
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		res := response{status: resp.StatusCode, body: string(b)}
		if resp.StatusCode >= 500 {
			// Feed server errors to the breaker, they indicate an unhealthy server.
			return res, fmt.Errorf("caldav server returned HTTP %d", resp.StatusCode)
		}

		return res, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return 0, "", fmt.Errorf("circuit breaker is open, skipping CalDAV call: %w", err)
		}
		if res, ok := result.(response); ok {
			// Server error: report the status so the caller logs it uniformly.
			return res.status, res.body, nil
		}
		return 0, "", err
	}

	res := result.(response)
	return res.status, res.body, nil
}

type response struct {
	status int
	body   string
}
