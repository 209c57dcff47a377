// Package fetcher implements the paginated OCDS crawler. It walks the
// national eTenders release API page by page, persists each raw page to the
// object store, and hands itself a continuation message when the invocation
// time budget runs out.
package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/satenders/tender-indexer/internal/adapter"
	"github.com/satenders/tender-indexer/internal/logger"
)

const (
	// defaultBaseURL is the national OCDS release endpoint
	defaultBaseURL = "https://ocds-api.etenders.gov.za/api/OCDSReleases"

	defaultPageSize   = 50
	defaultTimeBudget = 5 * time.Minute
	// defaultBudgetCutoff is the elapsed time after which no new page fetch
	// is started; the remaining budget absorbs in-flight retries
	defaultBudgetCutoff = 260 * time.Second

	// connectMaxWait bounds the initial NATS dial retries
	connectMaxWait = 30 * time.Second

	// batchConcurrency is the page fan-out in concurrent mode
	batchConcurrency = 3

	maxAttempts = 3

	// ContinueSubject carries crawl continuations between invocations
	ContinueSubject = "fetch.ocds.continue"
)

var (
	transientDelays = []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}
	rateLimitDelays = []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second}
)

// Config holds the configuration for the OCDS fetcher
type Config struct {
	URL            string
	StreamName     string
	ConsumerName   string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	AckWaitTimeout time.Duration
	MaxDeliver     int

	BaseURL string
	Bucket  string
	// PageSize is the OCDS page size; defaults to 50
	PageSize  int
	StartPage int
	// MaxPage is the highest page number to fetch; 0 means unbounded, the
	// upstream 404 terminates the crawl either way
	MaxPage int
	// DateFrom/DateTo bound the release window, formatted YYYY-MM-DD
	DateFrom string
	DateTo   string
	// Throttle is the pause between sequential page fetches
	Throttle time.Duration
	// Concurrent fetches up to three pages in parallel. Sequential is the
	// default; the upstream rate-limits aggressively.
	Concurrent bool
	// TimeBudget is the wall clock allotted to one invocation
	TimeBudget time.Duration
	// BudgetCutoff is the elapsed time threshold for self-continuation
	BudgetCutoff time.Duration
}

// Continuation is the resume state handed from one invocation to the next
type Continuation struct {
	StartPage   int   `json:"startPage"`
	TotalSaved  int   `json:"totalSaved"`
	FailedPages []int `json:"failedPages"`
}

// Summary reports the outcome of one crawl invocation
type Summary struct {
	PagesSaved  int
	FailedPages []int
	// Continued is true when the crawl ran out of budget and handed the
	// remainder to a follow-up invocation
	Continued bool
}

// Fetcher defines the interface for the OCDS crawler
type Fetcher interface {
	// Crawl runs one crawl starting from the configured start page
	Crawl(ctx context.Context) (*Summary, error)
	// Resume runs one crawl from a continuation
	Resume(ctx context.Context, c Continuation) (*Summary, error)
	// Run consumes continuation messages until the context ends
	Run(ctx context.Context) error
	// Close closes the fetcher and cleans up resources
	Close()
}

type fetcher struct {
	nc          adapter.NatsConn
	js          adapter.JetStream
	httpClient  adapter.HTTPClient
	objectStore adapter.ObjectStore
	json        adapter.JSON
	clock       adapter.Clock
	config      Config
	pool        pond.ResultPool[*pageResult]
}

// NewFetcher creates a new OCDS fetcher
func NewFetcher(
	cfg Config,
	natsJS adapter.NatsJetStream,
	httpClient adapter.HTTPClient,
	objectStore adapter.ObjectStore,
	jsonAdapter adapter.JSON,
	clock adapter.Clock,
) (Fetcher, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.StartPage <= 0 {
		cfg.StartPage = 1
	}
	if cfg.TimeBudget <= 0 {
		cfg.TimeBudget = defaultTimeBudget
	}
	if cfg.BudgetCutoff <= 0 {
		cfg.BudgetCutoff = defaultBudgetCutoff
	}

	nc, js, err := adapter.ConnectWithRetry(natsJS, cfg.URL, connectMaxWait, connectOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	f := &fetcher{
		nc:          nc,
		js:          js,
		httpClient:  httpClient,
		objectStore: objectStore,
		json:        jsonAdapter,
		clock:       clock,
		config:      cfg,
	}
	if cfg.Concurrent {
		f.pool = pond.NewResultPool[*pageResult](batchConcurrency)
	}

	return f, nil
}

// Crawl runs one crawl from the configured start page
func (f *fetcher) Crawl(ctx context.Context) (*Summary, error) {
	return f.crawl(ctx, Continuation{StartPage: f.config.StartPage})
}

// Resume runs one crawl from a continuation
func (f *fetcher) Resume(ctx context.Context, c Continuation) (*Summary, error) {
	if c.StartPage <= 0 {
		c.StartPage = 1
	}
	return f.crawl(ctx, c)
}

// Run consumes continuation messages and resumes crawls
func (f *fetcher) Run(ctx context.Context) error {
	logger.Info("Starting OCDS fetcher consumer",
		zap.String("stream", f.config.StreamName),
		zap.String("consumer", f.config.ConsumerName))

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       f.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       f.config.AckWaitTimeout,
		MaxDeliver:    f.config.MaxDeliver,
		FilterSubject: ContinueSubject,
	}

	consumer, err := f.js.CreateOrUpdateConsumer(ctx, f.config.StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	msgChan := make(chan adapter.Message, 1)
	sub, err := consumer.Consume(func(msg adapter.Message) {
		msgChan <- msg
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down OCDS fetcher")
			return ctx.Err()
		case msg := <-msgChan:
			f.handleContinuation(ctx, msg)
		}
	}
}

// handleContinuation resumes one crawl from a queued continuation message
func (f *fetcher) handleContinuation(ctx context.Context, msg adapter.Message) {
	var c Continuation
	if err := f.json.Unmarshal(msg.Data(), &c); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("subject", msg.Subject()))
		if err := msg.Term(); err != nil {
			logger.ErrorCtx(ctx, err)
		}
		return
	}

	if _, err := f.Resume(ctx, c); err != nil {
		logger.ErrorCtx(ctx, err, zap.Int("startPage", c.StartPage))
		if err := msg.Nak(); err != nil {
			logger.ErrorCtx(ctx, err)
		}
		return
	}

	if err := msg.Ack(); err != nil {
		logger.ErrorCtx(ctx, err)
	}
}

// pageResult is the outcome of one page fetch
type pageResult struct {
	page int
	// end is true when the upstream returned 404, meaning no such page
	end bool
}

func (f *fetcher) crawl(ctx context.Context, c Continuation) (*Summary, error) {
	start := f.clock.Now()
	summary := &Summary{
		PagesSaved:  c.TotalSaved,
		FailedPages: append([]int(nil), c.FailedPages...),
	}

	logger.InfoCtx(ctx, "Starting OCDS crawl",
		zap.Int("startPage", c.StartPage),
		zap.Int("pageSize", f.config.PageSize),
		zap.Bool("concurrent", f.config.Concurrent))

	page := c.StartPage
	for f.config.MaxPage == 0 || page <= f.config.MaxPage {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if f.clock.Since(start) >= f.config.BudgetCutoff {
			if err := f.publishContinuation(ctx, page, summary); err != nil {
				return summary, err
			}
			summary.Continued = true
			logger.InfoCtx(ctx, "Crawl budget exhausted, continuation published",
				zap.Int("nextPage", page),
				zap.Int("pagesSaved", summary.PagesSaved))
			return summary, nil
		}

		pages := f.nextPages(page)
		results, err := f.fetchPages(ctx, pages)
		if err != nil {
			return summary, err
		}

		done := false
		for _, r := range results {
			switch {
			case r == nil:
				// Retries exhausted on a transient condition; the page is
				// recorded and the crawl moves on
				continue
			case r.end:
				done = true
			default:
				summary.PagesSaved++
			}
		}
		for _, p := range pages {
			if f.failedPage(p, results) {
				summary.FailedPages = append(summary.FailedPages, p)
			}
		}

		if done {
			break
		}

		page += len(pages)
		if f.config.Throttle > 0 {
			if err := f.sleep(ctx, f.config.Throttle); err != nil {
				return summary, err
			}
		}
	}

	logger.InfoCtx(ctx, "OCDS crawl complete",
		zap.Int("pagesSaved", summary.PagesSaved),
		zap.Ints("failedPages", summary.FailedPages))
	return summary, nil
}

// nextPages returns the page numbers for the next fetch round
func (f *fetcher) nextPages(from int) []int {
	n := 1
	if f.config.Concurrent {
		n = batchConcurrency
	}
	pages := make([]int, 0, n)
	for p := from; p < from+n; p++ {
		if f.config.MaxPage != 0 && p > f.config.MaxPage {
			break
		}
		pages = append(pages, p)
	}
	return pages
}

// fetchPages runs one round of page fetches. In concurrent mode the pages
// run on the pool with per-page settlement so one failure never sinks the
// round.
func (f *fetcher) fetchPages(ctx context.Context, pages []int) ([]*pageResult, error) {
	if !f.config.Concurrent || len(pages) == 1 {
		results := make([]*pageResult, 0, len(pages))
		for _, p := range pages {
			r, err := f.fetchPage(ctx, p)
			if err != nil {
				return nil, err
			}
			results = append(results, r)
		}
		return results, nil
	}

	tasks := make([]pond.Result[*pageResult], 0, len(pages))
	for _, p := range pages {
		p := p
		tasks = append(tasks, f.pool.SubmitErr(func() (*pageResult, error) {
			return f.fetchPage(ctx, p)
		}))
	}

	results := make([]*pageResult, 0, len(pages))
	for i, task := range tasks {
		r, err := task.Wait()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pages[i], err)
		}
		results = append(results, r)
	}
	return results, nil
}

// failedPage reports whether page p settled without a saved body or an end
// marker
func (f *fetcher) failedPage(p int, results []*pageResult) bool {
	for _, r := range results {
		if r != nil && r.page == p {
			return false
		}
	}
	return true
}

// fetchPage fetches one page with the per-page retry policy and persists
// the body. A nil result with nil error means retries were exhausted on a
// transient condition.
func (f *fetcher) fetchPage(ctx context.Context, page int) (*pageResult, error) {
	pageURL := f.pageURL(page)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		status, body, err := f.httpClient.GetBytes(ctx, pageURL, nil)

		var delay time.Duration
		switch {
		case err == nil && status == 200:
			if err := f.persistPage(ctx, page, body); err != nil {
				return nil, err
			}
			return &pageResult{page: page}, nil

		case err == nil && status == 404:
			// No such page; the crawl is done
			return &pageResult{page: page, end: true}, nil

		case err == nil && status == 429:
			logger.WarnCtx(ctx, "OCDS rate limited",
				zap.Int("page", page), zap.Int("attempt", attempt+1))
			delay = rateLimitDelays[attempt]

		case err != nil || status >= 500:
			logger.WarnCtx(ctx, "Transient OCDS fetch failure",
				zap.Int("page", page), zap.Int("attempt", attempt+1),
				zap.Int("status", status), zap.Error(err))
			delay = transientDelays[attempt]

		default:
			return nil, fmt.Errorf("unexpected status %d fetching page %d", status, page)
		}

		if attempt < maxAttempts-1 {
			if err := f.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	logger.ErrorCtx(ctx, fmt.Errorf("page %d failed after %d attempts", page, maxAttempts))
	return nil, nil
}

// pageURL renders the OCDS release URL for one page
func (f *fetcher) pageURL(page int) string {
	q := url.Values{}
	q.Set("PageNumber", strconv.Itoa(page))
	q.Set("PageSize", strconv.Itoa(f.config.PageSize))
	if f.config.DateFrom != "" {
		q.Set("dateFrom", f.config.DateFrom)
	}
	if f.config.DateTo != "" {
		q.Set("dateTo", f.config.DateTo)
	}
	return f.config.BaseURL + "?" + q.Encode()
}

// persistPage writes one raw page body to the object store
func (f *fetcher) persistPage(ctx context.Context, page int, body []byte) error {
	ms := f.clock.Now().UnixMilli()
	key := fmt.Sprintf("etenders/etenders-p%04d-%d.json", page, ms)

	metadata := map[string]string{
		"page":      strconv.Itoa(page),
		"timestamp": strconv.FormatInt(ms, 10),
	}
	if err := f.objectStore.PutObject(ctx, f.config.Bucket, key, body, metadata); err != nil {
		return fmt.Errorf("failed to persist page %d: %w", page, err)
	}

	logger.InfoCtx(ctx, "Persisted OCDS page",
		zap.Int("page", page),
		zap.String("key", key),
		zap.Int("bytes", len(body)))
	return nil
}

// publishContinuation hands the remaining crawl to the next invocation
func (f *fetcher) publishContinuation(ctx context.Context, nextPage int, summary *Summary) error {
	c := Continuation{
		StartPage:   nextPage,
		TotalSaved:  summary.PagesSaved,
		FailedPages: summary.FailedPages,
	}

	data, err := f.json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal continuation: %w", err)
	}

	if _, err := f.js.Publish(ctx, ContinueSubject, data); err != nil {
		return fmt.Errorf("failed to publish continuation: %w", err)
	}
	return nil
}

// sleep waits for d or until the context ends
func (f *fetcher) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.clock.After(d):
		return nil
	}
}

// Close closes the fetcher and cleans up resources
func (f *fetcher) Close() {
	if f.pool != nil {
		f.pool.StopAndWait()
	}
	if f.nc != nil {
		f.nc.Close()
	}
}
