package listings

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekruzvatanshoev/carval/pkg/carval/apperr"
	"github.com/nekruzvatanshoev/carval/pkg/carval/config"
	"github.com/nekruzvatanshoev/carval/pkg/carval/logger"
)

const resultsPage = `<!DOCTYPE html>
<html><body>
<div class="col-xs-12 result-item enhanced">
  <a href="/a/volkswagen/tiguan/toronto/ontario/5_123_abc/">2021 Volkswagen Tiguan</a>
  <span class="price-amount">$32,495</span>
  <div class="kms"><span>Mileage</span> 41,200 km</div>
  <div class="proximity"><span>Toronto, ON</span></div>
</div>
<div class="result-item">
  <span class="price-amount">Call for price</span>
  <span>10,000 km</span>
</div>
<div class="listing-item">
  <p><b>$28,900</b></p>
  <a href="/dealer/xyz">Dealer page</a>
</div>
</body></html>`

const testIDPage = `<html><body>
<div data-testid="listing-card"><span>$19,999</span><span>120000KM</span></div>
<div data-testid="search-result-3"><span>$21,500</span><span> Halifax, NS </span></div>
</body></html>`

func newScraper(t *testing.T, baseURL string) *Scraper {
	s := NewScraper(config.ListingsConfig{
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
		MaxResults: 15,
		UserAgent:  "carval-test",
	}, logger.NewTestLogger(t))
	s.intn = rand.New(rand.NewSource(42)).Intn
	return s
}

func serveHTML(t *testing.T, calls *int32, status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "carval-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchURL(t *testing.T) {
	s := newScraper(t, "https://www.autotrader.ca/")

	tests := []struct {
		name string
		q    Query
		want string
	}{
		{
			name: "known province",
			q:    Query{Year: 2021, Make: "Volkswagen", Model: "Tiguan", Province: "Ontario"},
			want: "https://www.autotrader.ca/cars/volkswagen/tiguan/?rcp=100&rcs=0&srt=35&yRng=2021%2C2021&prx=-1&hprc=True&wcp=True&sts=New-Used&inMarket=advancedSearch&loc=ON",
		},
		{
			name: "unknown province passes through",
			q:    Query{Year: 2019, Make: "Honda", Model: "CR-V", Province: "BC"},
			want: "https://www.autotrader.ca/cars/honda/cr-v/?rcp=100&rcs=0&srt=35&yRng=2019%2C2019&prx=-1&hprc=True&wcp=True&sts=New-Used&inMarket=advancedSearch&loc=BC",
		},
		{
			name: "no province",
			q:    Query{Year: 2018, Make: "Land Rover", Model: "Range Rover Sport"},
			want: "https://www.autotrader.ca/cars/land-rover/range-rover-sport/?rcp=100&rcs=0&srt=35&yRng=2018%2C2018&prx=-1&hprc=True&wcp=True&sts=New-Used&inMarket=advancedSearch",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.SearchURL(tc.q))
		})
	}
}

func TestSearch_ExtractsListings(t *testing.T) {
	var calls int32
	srv := serveHTML(t, &calls, http.StatusOK, resultsPage)

	listings, err := newScraper(t, srv.URL).Search(context.Background(), Query{Year: 2021, Make: "Volkswagen", Model: "Tiguan"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls)
	require.Len(t, listings, 2, "container without a price is skipped")

	first := listings[0]
	assert.Equal(t, 32495, first.Price)
	require.NotNil(t, first.MileageKm)
	assert.Equal(t, 41200, *first.MileageKm)
	assert.Equal(t, "Toronto, ON", first.Location)
	assert.Equal(t, srv.URL+"/a/volkswagen/tiguan/toronto/ontario/5_123_abc/", first.URL)
	assert.False(t, first.IsSample)

	second := listings[1]
	assert.Equal(t, 28900, second.Price)
	assert.Nil(t, second.MileageKm)
	assert.Empty(t, second.URL, "links outside the listing path are ignored")
	assert.Empty(t, second.Location)
}

func TestSearch_FallsBackToTestIDStrategy(t *testing.T) {
	var calls int32
	srv := serveHTML(t, &calls, http.StatusOK, testIDPage)

	listings, err := newScraper(t, srv.URL).Search(context.Background(), Query{Year: 2015, Make: "Mazda", Model: "3"})
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, 19999, listings[0].Price)
	require.NotNil(t, listings[0].MileageKm)
	assert.Equal(t, 120000, *listings[0].MileageKm)
	assert.Equal(t, "Halifax, NS", listings[1].Location)
}

func TestSearch_RespectsMaxResults(t *testing.T) {
	var page strings.Builder
	page.WriteString("<html><body>")
	for i := 0; i < 30; i++ {
		page.WriteString(`<div class="result-item"><span>$10,000</span></div>`)
	}
	page.WriteString("</body></html>")

	var calls int32
	srv := serveHTML(t, &calls, http.StatusOK, page.String())

	listings, err := newScraper(t, srv.URL).Search(context.Background(), Query{Year: 2020, Make: "Kia", Model: "Soul", MaxResults: 4})
	require.NoError(t, err)
	assert.Len(t, listings, 4)

	listings, err = newScraper(t, srv.URL).Search(context.Background(), Query{Year: 2020, Make: "Kia", Model: "Soul"})
	require.NoError(t, err)
	assert.Len(t, listings, 15)
}

func TestSearch_NoContainersYieldsSortedSamples(t *testing.T) {
	var calls int32
	srv := serveHTML(t, &calls, http.StatusOK, "<html><body><p>Nothing here</p></body></html>")

	listings, err := newScraper(t, srv.URL).Search(context.Background(), Query{Year: 2021, Make: "Ford", Model: "F-150"})
	require.NoError(t, err)
	require.Len(t, listings, 15)

	assert.True(t, sort.SliceIsSorted(listings, func(i, j int) bool {
		return listings[i].Price < listings[j].Price
	}))

	urls := make(map[string]bool)
	for _, l := range listings {
		assert.True(t, l.IsSample)
		assert.GreaterOrEqual(t, l.Price, 25000)
		assert.LessOrEqual(t, l.Price, 38000)
		require.NotNil(t, l.MileageKm)
		assert.GreaterOrEqual(t, *l.MileageKm, 20000)
		assert.LessOrEqual(t, *l.MileageKm, 100000)
		assert.Contains(t, sampleLocations, l.Location)
		assert.True(t, strings.HasPrefix(l.URL, srv.URL+"/sample-listing-"), l.URL)
		urls[l.URL] = true
	}
	assert.Len(t, urls, 15)
}

func TestSearch_FetchFailureYieldsEmptyResult(t *testing.T) {
	t.Run("non-success status", func(t *testing.T) {
		var calls int32
		srv := serveHTML(t, &calls, http.StatusForbidden, resultsPage)

		listings, err := newScraper(t, srv.URL).Search(context.Background(), Query{Year: 2021, Make: "Ford", Model: "Escape"})
		require.NoError(t, err)
		assert.NotNil(t, listings)
		assert.Empty(t, listings)
		assert.EqualValues(t, 1, calls)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()

		listings, err := newScraper(t, base).Search(context.Background(), Query{Year: 2021, Make: "Ford", Model: "Escape"})
		require.NoError(t, err)
		assert.Empty(t, listings)
	})
}

func TestSearch_InvalidQueryNeverFetches(t *testing.T) {
	var calls int32
	srv := serveHTML(t, &calls, http.StatusOK, resultsPage)
	s := newScraper(t, srv.URL)

	_, err := s.Search(context.Background(), Query{Make: "Ford", Model: "Escape"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.Search(context.Background(), Query{Year: 2020, Make: " ", Model: "Escape"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Year, make, and model are required", err.Error())

	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

func TestFirstText_DocumentOrder(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div><span><!-- $1 --></span><em>was <s>$40,000</s></em> now $35,000</div>`))
	require.NoError(t, err)

	assert.Equal(t, "$40,000", firstText(doc.Find("div"), priceRe))
	assert.Empty(t, firstText(doc.Find("div"), locationRe))
}
