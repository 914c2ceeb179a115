// Package listings searches a public classifieds site for comparable
// vehicles. Searches are best effort and never fail the caller.
package listings

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"

	"github.com/nekruzvatanshoev/carval/pkg/carval/apperr"
	"github.com/nekruzvatanshoev/carval/pkg/carval/config"
	"github.com/nekruzvatanshoev/carval/pkg/carval/dal"
	"github.com/nekruzvatanshoev/carval/pkg/carval/logger"
	"github.com/nekruzvatanshoev/carval/pkg/carval/metrics"
	"github.com/nekruzvatanshoev/carval/pkg/carval/province"
)

const serviceName = "listings"

const (
	samplePriceBase     = 30000
	samplePriceMinDelta = -5000
	samplePriceMaxDelta = 8000
	sampleMileageMin    = 20000
	sampleMileageMax    = 100000
)

var sampleLocations = []string{
	"Toronto, ON", "Vancouver, BC", "Calgary, AB", "Montreal, QC",
	"Edmonton, AB", "Ottawa, ON", "Winnipeg, MB", "Halifax, NS",
	"Mississauga, ON", "Surrey, BC",
}

// Query describes one search. Province is a full name or a code and may be
// empty. MaxResults falls back to the configured default when zero.
type Query struct {
	Year       int
	Make       string
	Model      string
	Province   string
	MaxResults int
}

type Scraper struct {
	cfg       config.ListingsConfig
	collector *colly.Collector
	extractor *Extractor
	logger    logger.Logger
	// intn returns a value in [0, n). It must be safe for concurrent use.
	intn func(n int) int
}

func NewScraper(cfg config.ListingsConfig, log logger.Logger) *Scraper {
	c := colly.NewCollector(colly.AllowURLRevisit())
	c.SetRequestTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}

	return &Scraper{
		cfg:       cfg,
		collector: c,
		extractor: NewExtractor(cfg.BaseURL),
		logger:    log.With(map[string]interface{}{"component": "listings"}),
		intn:      rand.Intn,
	}
}

// SearchURL builds the results page URL for q.
func (s *Scraper) SearchURL(q Query) string {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	u := fmt.Sprintf("%s/cars/%s/%s/?rcp=100&rcs=0&srt=35&yRng=%d%%2C%d&prx=-1&hprc=True&wcp=True&sts=New-Used&inMarket=advancedSearch",
		base, url.PathEscape(slug(q.Make)), url.PathEscape(slug(q.Model)), q.Year, q.Year)

	if q.Province != "" {
		code, ok := province.Code(q.Province)
		if !ok {
			code = q.Province
		}
		u += "&loc=" + url.QueryEscape(code)
	}
	return u
}

// Search returns real listings, sample listings when the page had none, or
// an empty slice when the page could not be fetched. Only an invalid query
// produces an error.
func (s *Scraper) Search(ctx context.Context, q Query) ([]dal.Listing, error) {
	if q.Year <= 0 {
		return nil, apperr.NewValidationError("Year must be a valid number")
	}
	if strings.TrimSpace(q.Make) == "" || strings.TrimSpace(q.Model) == "" {
		return nil, apperr.NewValidationError("Year, make, and model are required")
	}

	limit := q.MaxResults
	if limit <= 0 {
		limit = s.cfg.MaxResults
	}

	searchURL := s.SearchURL(q)
	log := s.logger.With(map[string]interface{}{"url": searchURL})

	if err := ctx.Err(); err != nil {
		log.Warn("listing search skipped", map[string]interface{}{"error": err.Error()})
		return []dal.Listing{}, nil
	}

	listings, err := s.fetch(searchURL, limit)
	if err != nil {
		log.Error("failed to fetch listings", map[string]interface{}{"error": err.Error()})
		return []dal.Listing{}, nil
	}

	if len(listings) == 0 {
		log.Warn("no listings found, page structure may have changed", nil)
		metrics.ListingsSampleFallbacks.Inc()
		return s.sampleListings(limit), nil
	}

	log.Info("listings found", map[string]interface{}{"count": len(listings)})
	return listings, nil
}

func (s *Scraper) fetch(searchURL string, limit int) ([]dal.Listing, error) {
	started := time.Now()
	outcome := "success"
	defer func() {
		metrics.ObserveRemote(serviceName, "search", outcome, started)
	}()

	collector := s.collector.Clone()
	if s.cfg.UserAgent == "" {
		extensions.RandomUserAgent(collector)
	}

	var (
		listings []dal.Listing
		fetchErr error
	)

	collector.OnRequest(func(r *colly.Request) {
		s.logger.Debug("requesting listings page", map[string]interface{}{"url": r.URL.String()})
	})

	collector.OnResponse(func(r *colly.Response) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			fetchErr = fmt.Errorf("listings: failed to parse page: %w", err)
			return
		}
		listings = s.extractor.Extract(doc.Selection, limit)
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("listings: request to %s failed with status %d: %w", r.Request.URL, r.StatusCode, err)
	})

	if err := collector.Visit(searchURL); err != nil && fetchErr == nil {
		fetchErr = err
	}
	collector.Wait()

	if fetchErr != nil {
		outcome = "transport_error"
		return nil, fetchErr
	}
	return listings, nil
}

// sampleListings fabricates count listings flagged IsSample, sorted by price.
func (s *Scraper) sampleListings(count int) []dal.Listing {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	samples := make([]dal.Listing, 0, count)

	for i := 0; i < count; i++ {
		price := samplePriceBase + samplePriceMinDelta + s.intn(samplePriceMaxDelta-samplePriceMinDelta+1)
		mileage := sampleMileageMin + s.intn(sampleMileageMax-sampleMileageMin+1)

		samples = append(samples, dal.Listing{
			Price:     price,
			MileageKm: &mileage,
			Location:  sampleLocations[s.intn(len(sampleLocations))],
			URL:       fmt.Sprintf("%s/sample-listing-%d", base, i+1),
			IsSample:  true,
		})
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Price < samples[j].Price
	})
	return samples
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}
