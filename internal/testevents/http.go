package testevents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fsrfilter/internal/domain/types"
	"github.com/okian/fsrfilter/pkg/logger"
)

// errNotFound is returned by getDecision on a 404.
var errNotFound = errors.New("decision not found")

type submitResult int

const (
	resultAccepted submitResult = iota
	resultDuplicate
	resultFailed
)

// HTTPClient wraps http.Client with a base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// getJSON fetches path and decodes a 200 response into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(v)
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return errNotFound
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
}

func (c *HTTPClient) getDecision(ctx context.Context, id string) (types.Decision, error) {
	var d types.Decision
	err := c.getJSON(ctx, "/decisions/"+url.PathEscape(id), &d)
	return d, err
}

func (c *HTTPClient) getVetoes(ctx context.Context, limit int) ([]types.Decision, error) {
	var list []types.Decision
	err := c.getJSON(ctx, "/vetoes?limit="+strconv.Itoa(limit), &list)
	return list, err
}

// submitEvents posts every scenario through a pool of config.Workers
// submitters. It returns the ids the service accepted or already knew.
func submitEvents(ctx context.Context, client *HTTPClient, config *Config, scenarios []Scenario, stats *Stats) map[string]bool {
	log := logger.Get().Named("submit")
	log.Info(ctx, "submitting events", logger.Int("events", len(scenarios)), logger.Int("workers", config.Workers))

	var (
		accepted  int64
		duplicate int64
		failed    int64
		mu        sync.Mutex
		known     = make(map[string]bool, len(scenarios))
	)

	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	work := make(chan Scenario, workers*2)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range work {
				res := submitSingleEvent(ctx, client, s.Event)
				switch res {
				case resultAccepted:
					atomic.AddInt64(&accepted, 1)
				case resultDuplicate:
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Warn(ctx, "submission failed", logger.String("eventID", s.Event.EventID))
					}
					continue
				}
				mu.Lock()
				known[s.Event.EventID] = true
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(work)
		for _, s := range scenarios {
			select {
			case <-ctx.Done():
				return
			case work <- s:
			}
		}
	}()

	wg.Wait()

	stats.EventsAccepted = int(atomic.LoadInt64(&accepted))
	stats.EventsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.EventsFailed = int(atomic.LoadInt64(&failed))
	stats.EventsSubmitted = stats.EventsAccepted + stats.EventsDuplicate + stats.EventsFailed

	log.Info(ctx, "event submission completed",
		logger.Int("accepted", stats.EventsAccepted),
		logger.Int("duplicate", stats.EventsDuplicate),
		logger.Int("failed", stats.EventsFailed))
	return known
}

func submitSingleEvent(ctx context.Context, client *HTTPClient, ev types.Event) submitResult { //nolint:gocritic // request payload
	resp, err := client.Post(ctx, "/events", ev)
	if err != nil {
		return resultFailed
	}
	defer func() { _ = resp.Body.Close() }()

	var ack AckResponse
	_ = json.NewDecoder(resp.Body).Decode(&ack)

	switch resp.StatusCode {
	case http.StatusAccepted:
		return resultAccepted
	case http.StatusOK:
		if ack.Duplicate {
			return resultDuplicate
		}
		return resultAccepted
	default:
		return resultFailed
	}
}
