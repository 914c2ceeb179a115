package listings

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nekruzvatanshoev/carval/pkg/carval/dal"
)

// Strategy selects listing containers from a results page.
type Strategy interface {
	Containers(doc *goquery.Selection) *goquery.Selection
}

// attrStrategy matches div elements whose attribute matches a pattern.
type attrStrategy struct {
	attr    string
	pattern *regexp.Regexp
}

func (s attrStrategy) Containers(doc *goquery.Selection) *goquery.Selection {
	return doc.Find("div").FilterFunction(func(_ int, div *goquery.Selection) bool {
		value, ok := div.Attr(s.attr)
		return ok && s.pattern.MatchString(value)
	})
}

// ClassStrategy matches result-item or listing-item classes.
func ClassStrategy() Strategy {
	return attrStrategy{attr: "class", pattern: regexp.MustCompile(`result-item|listing-item`)}
}

// TestIDStrategy matches data-testid attributes mentioning listing or result.
func TestIDStrategy() Strategy {
	return attrStrategy{attr: "data-testid", pattern: regexp.MustCompile(`listing|result`)}
}

// DefaultStrategies are tried in order; the first with any container wins.
func DefaultStrategies() []Strategy {
	return []Strategy{ClassStrategy(), TestIDStrategy()}
}

var (
	priceRe    = regexp.MustCompile(`\$([\d,]+)`)
	mileageRe  = regexp.MustCompile(`(?i)([\d,]+)\s*km`)
	locationRe = regexp.MustCompile(`\w+,\s*[A-Z]{2}`)
	linkRe     = regexp.MustCompile(`/a/`)
)

// Extractor turns listing containers into Listings.
type Extractor struct {
	baseURL    string
	strategies []Strategy
}

func NewExtractor(baseURL string, strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Extractor{baseURL: strings.TrimRight(baseURL, "/"), strategies: strategies}
}

// Extract returns at most limit listings. Containers without a price are
// skipped.
func (e *Extractor) Extract(doc *goquery.Selection, limit int) []dal.Listing {
	containers := e.containers(doc)
	if containers.Length() > limit {
		containers = containers.Slice(0, limit)
	}

	listings := make([]dal.Listing, 0, containers.Length())
	containers.Each(func(_ int, container *goquery.Selection) {
		if listing, ok := e.extractListing(container); ok {
			listings = append(listings, listing)
		}
	})
	return listings
}

func (e *Extractor) containers(doc *goquery.Selection) *goquery.Selection {
	for _, s := range e.strategies {
		if found := s.Containers(doc); found.Length() > 0 {
			return found
		}
	}
	return doc.Slice(0, 0)
}

func (e *Extractor) extractListing(container *goquery.Selection) (dal.Listing, bool) {
	var listing dal.Listing

	price, ok := parseAmount(priceRe, firstText(container, priceRe))
	if !ok || price == 0 {
		return listing, false
	}
	listing.Price = price

	if km, ok := parseAmount(mileageRe, firstText(container, mileageRe)); ok {
		listing.MileageKm = &km
	}

	container.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if linkRe.MatchString(href) {
			listing.URL = e.baseURL + href
			return false
		}
		return true
	})

	if loc := firstText(container, locationRe); loc != "" {
		listing.Location = strings.TrimSpace(loc)
	}

	return listing, true
}

// firstText returns the first text node under sel, in document order, that
// matches re.
func firstText(sel *goquery.Selection, re *regexp.Regexp) string {
	var match string
	sel.Contents().EachWithBreak(func(_ int, child *goquery.Selection) bool {
		switch goquery.NodeName(child) {
		case "#text":
			if text := child.Text(); re.MatchString(text) {
				match = text
			}
		case "#comment":
		default:
			match = firstText(child, re)
		}
		return match == ""
	})
	return match
}

func parseAmount(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}
