// Package treatyregistry resolves PPh 26 treaty withholding rates by country.
package treatyregistry

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
	"github.com/valyala/fasthttp"

	"pajak-engine/internal/config"
	ierr "pajak-engine/internal/errors"
	"pajak-engine/internal/logger"
	"pajak-engine/internal/model"
	"pajak-engine/internal/rates"
	"pajak-engine/internal/taxmath"
)

type Registry struct {
	url         string
	timeout     time.Duration
	client      *fasthttp.Client
	cache       *gocache.Cache
	defaultRate model.Rate
	log         *logger.Logger
}

type Option func(*Registry)

// WithDial replaces the client's dialer.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(r *Registry) { r.client.Dial = dial }
}

func New(cfg config.TreatyConfig, log *logger.Logger, opts ...Option) *Registry {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if log == nil {
		log = logger.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	r := &Registry{
		url:     strings.TrimRight(cfg.RegistryURL, "/"),
		timeout: timeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		},
		cache:       gocache.New(ttl, 2*ttl),
		defaultRate: rates.Default.PPh21.ForeignDefaultRate,
		log:         log,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

type treatyResponse struct {
	Country     string          `json:"country"`
	RatePercent decimal.Decimal `json:"rate_percent"`
}

// Rates resolves the treaty rate for each country. Countries that could not be
// resolved get the statutory default and are listed in fallbacks.
func (r *Registry) Rates(ctx context.Context, countries []string) (map[string]model.Rate, []string) {
	result := make(map[string]model.Rate, len(countries))
	var fallbacks []string

	var toFetch []string
	for _, c := range countries {
		code := normalize(c)
		if code == "" {
			continue
		}
		if _, seen := result[code]; seen {
			continue
		}
		if rate, ok := r.cache.Get(code); ok {
			result[code] = rate.(model.Rate)
			continue
		}
		if r.url == "" {
			result[code] = r.defaultRate
			fallbacks = append(fallbacks, code)
			continue
		}
		result[code] = r.defaultRate
		toFetch = append(toFetch, code)
	}

	var mu sync.Mutex
	var wg conc.WaitGroup
	for _, code := range toFetch {
		code := code
		wg.Go(func() {
			rate, err := r.fetchRate(ctx, code)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.log.Warnw("treaty rate lookup failed, using default", "country", code, "error", err)
				fallbacks = append(fallbacks, code)
				return
			}
			r.cache.SetDefault(code, rate)
			result[code] = rate
		})
	}
	wg.Wait()

	return result, fallbacks
}

// Rate resolves one country.
func (r *Registry) Rate(ctx context.Context, country string) (model.Rate, bool) {
	code := normalize(country)
	resolved, fallbacks := r.Rates(ctx, []string{code})
	rate, ok := resolved[code]
	if !ok {
		return r.defaultRate, false
	}
	return rate, len(fallbacks) == 0
}

func (r *Registry) fetchRate(ctx context.Context, code string) (model.Rate, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.url + "/treaties/" + code)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := r.client.DoTimeout(req, resp, r.timeout); err != nil {
		return 0, ierr.Wrap(err, ierr.ErrHTTPClient, "treatyregistry.fetch", "treaty registry unreachable")
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, ierr.Newf(ierr.ErrHTTPClient, "treatyregistry.fetch", "treaty registry returned %d for %s", resp.StatusCode(), code)
	}

	var tr treatyResponse
	if err := json.Unmarshal(resp.Body(), &tr); err != nil {
		return 0, ierr.Wrap(err, ierr.ErrHTTPClient, "treatyregistry.fetch", "malformed treaty response")
	}
	return taxmath.PercentToRate(tr.RatePercent), nil
}

func normalize(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}
