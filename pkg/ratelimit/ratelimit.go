// Package ratelimit provides hierarchical token-bucket admission control for
// outbound API calls.
//
// Every endpoint declares a Spec naming its bucket and quota. Admission
// requires a token from every bucket in the chain: the endpoint bucket(s), an
// optional API-level bucket shared by the whole API, and an optional
// process-global bucket. All waits are joined concurrently, so the latency of
// one admission is bounded by the slowest required wait rather than their sum.
//
// See https://docs.polymarket.com/quickstart/introduction/rate-limits for the
// published limits.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/metrics"
)

// Quota is count tokens refilled over period: a bucket admits count calls as
// a burst and then refills one token per full period.
type Quota struct {
	Count  int
	Period time.Duration
}

// ParseQuota parses a "count/period" literal like "1500/10s". Supported
// periods are 1s, 10s, 1m (60s) and 10m (600s).
func ParseQuota(s string) (Quota, error) {
	count, period, ok := strings.Cut(s, "/")
	if !ok {
		return Quota{}, fmt.Errorf("invalid quota format %q: expected 'count/period' (e.g., '1500/10s')", s)
	}

	n, err := strconv.Atoi(count)
	if err != nil || n <= 0 {
		return Quota{}, fmt.Errorf("invalid quota count %q: must be a positive integer", count)
	}

	var d time.Duration
	switch period {
	case "1s":
		d = time.Second
	case "10s":
		d = 10 * time.Second
	case "1m", "60s":
		d = time.Minute
	case "10m", "600s":
		d = 10 * time.Minute
	default:
		return Quota{}, fmt.Errorf("unsupported period %q: supported: 1s, 10s, 1m, 10m", period)
	}

	return Quota{Count: n, Period: d}, nil
}

// MustParseQuota is ParseQuota for static declarations. A bad literal is a
// programming error, so it panics.
func MustParseQuota(s string) Quota {
	q, err := ParseQuota(s)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quota) newBucket() *rate.Limiter {
	return rate.NewLimiter(rate.Every(q.Period), q.Count)
}

// QuotaSpec is either a single window or a burst+sustained pair.
type QuotaSpec struct {
	single    *Quota
	burst     *Quota
	sustained *Quota
}

func Single(q Quota) QuotaSpec {
	return QuotaSpec{single: &q}
}

func MultiWindow(burst, sustained Quota) QuotaSpec {
	return QuotaSpec{burst: &burst, sustained: &sustained}
}

// Spec declares the rate limits for one endpoint.
type Spec struct {
	// Key uniquely names the endpoint's bucket(s).
	Key string
	// Quota for the endpoint itself.
	Quota QuotaSpec
	// APIQuota, when set, layers an API-level bucket on top. The bucket is
	// named after the segment of Key before the first underscore unless API
	// overrides it.
	APIQuota *Quota
	// API overrides the derived API bucket name.
	API string
}

func (s Spec) apiName() string {
	if s.API != "" {
		return s.API
	}
	name, _, _ := strings.Cut(s.Key, "_")
	if name == "" {
		return "unknown"
	}
	return name
}

// Limiters manages the named token buckets. Buckets are created lazily on
// first use and cached under their name for the lifetime of the process.
type Limiters struct {
	buckets sync.Map // name -> *rate.Limiter
	global  *rate.Limiter
}

func New() *Limiters {
	return &Limiters{}
}

// WithGlobal creates Limiters with a process-wide bucket that every check
// must also pass.
func WithGlobal(q Quota) *Limiters {
	return &Limiters{global: q.newBucket()}
}

// getOrCreate returns the bucket registered under name, creating it with q on
// first use. A later registration under the same name with a different quota
// keeps the first bucket: quotas are fixed at first sight.
func (l *Limiters) getOrCreate(name string, q Quota) *rate.Limiter {
	if existing, ok := l.buckets.Load(name); ok {
		return existing.(*rate.Limiter)
	}
	actual, _ := l.buckets.LoadOrStore(name, q.newBucket())
	return actual.(*rate.Limiter)
}

// CheckAPI waits for the API-level bucket named api (and the global bucket,
// if configured). Used by endpoints that only carry a shared API quota.
func (l *Limiters) CheckAPI(ctx context.Context, api string, q Quota) error {
	start := time.Now()
	defer func() {
		metrics.RateLimitWait.WithLabelValues(api + "_api").Observe(time.Since(start).Seconds())
	}()

	g, ctx := errgroup.WithContext(ctx)
	bucket := l.getOrCreate(api+"_api", q)
	g.Go(func() error { return bucket.Wait(ctx) })
	if l.global != nil {
		g.Go(func() error { return l.global.Wait(ctx) })
	}
	return g.Wait()
}

// Check blocks until every bucket the spec names admits the call. It never
// rejects: the only error paths are context cancellation and deadline expiry.
func (l *Limiters) Check(ctx context.Context, spec Spec) error {
	start := time.Now()
	defer func() {
		metrics.RateLimitWait.WithLabelValues(spec.Key).Observe(time.Since(start).Seconds())
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return l.checkEndpoint(ctx, spec) })

	if spec.APIQuota != nil {
		bucket := l.getOrCreate(spec.apiName()+"_api", *spec.APIQuota)
		g.Go(func() error { return bucket.Wait(ctx) })
	}

	if l.global != nil {
		g.Go(func() error { return l.global.Wait(ctx) })
	}

	return g.Wait()
}

func (l *Limiters) checkEndpoint(ctx context.Context, spec Spec) error {
	if spec.Quota.single != nil {
		return l.getOrCreate(spec.Key, *spec.Quota.single).Wait(ctx)
	}
	if spec.Quota.burst == nil || spec.Quota.sustained == nil {
		return nil
	}

	burst := l.getOrCreate(spec.Key+"_burst", *spec.Quota.burst)
	sustained := l.getOrCreate(spec.Key+"_sustained", *spec.Quota.sustained)

	// If the burst bucket admits, the request goes through regardless of the
	// sustained bucket. Past the burst allowance we wait on the burst bucket
	// alone if sustained already admitted, and on both otherwise.
	burstOK := burst.Allow()
	sustainedOK := sustained.Allow()
	switch {
	case burstOK:
		return nil
	case sustainedOK:
		return burst.Wait(ctx)
	default:
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return burst.Wait(ctx) })
		g.Go(func() error { return sustained.Wait(ctx) })
		return g.Wait()
	}
}
