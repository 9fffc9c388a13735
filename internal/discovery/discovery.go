// Package discovery walks the hub's paginated index and collects detail-page
// URLs.
package discovery

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/OptimNow/my-scraper/internal/fetch"
	"github.com/OptimNow/my-scraper/internal/politeness"
)

// Config controls pagination behavior.
type Config struct {
	// BaseURL is the site root, e.g. https://www.optimnow.io.
	BaseURL *url.URL
	// IndexPath is the index page path, e.g. /hub/inefficiencies.
	IndexPath string
	// PageParam is the query parameter carrying the page number. Page 1 has
	// no suffix; subsequent pages use ?<PageParam>=N.
	PageParam string
	// MaxPages caps pagination as a safety net against runaway loops.
	MaxPages int
	// Delay is the politeness pause between successive index fetches.
	Delay time.Duration
}

// Discoverer fetches index pages until one yields no detail links.
type Discoverer struct {
	fetcher fetch.Fetcher
	pauser  politeness.Pauser
	cfg     Config
	logger  *zap.Logger
}

// New builds a Discoverer. A nil pauser gets a real timer; a nil logger a
// no-op.
func New(fetcher fetch.Fetcher, pauser politeness.Pauser, cfg Config, logger *zap.Logger) *Discoverer {
	if pauser == nil {
		pauser = politeness.TimerPauser{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{fetcher: fetcher, pauser: pauser, cfg: cfg, logger: logger}
}

// Discover returns the de-duplicated union of detail links across all index
// pages, deterministically sorted so downstream diffing is stable regardless
// of site-side pagination order. Pagination stops at the first page yielding
// zero detail links, at the page cap, or when the context finishes.
//
// A failure on page 1 is fatal; later page failures end pagination with
// whatever was collected, logged as a warning.
func (d *Discoverer) Discover(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})

	for page := 1; page <= d.cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery canceled: %w", err)
		}
		if page > 1 {
			d.pauser.Pause(ctx, d.cfg.Delay)
		}

		pageURL := d.pageURL(page)
		doc, err := d.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("fetch index page 1: %w", err)
			}
			d.logger.Warn("index page fetch failed, stopping pagination",
				zap.Int("page", page), zap.Error(err))
			break
		}

		found := d.harvest(doc)
		d.logger.Debug("index page harvested",
			zap.Int("page", page), zap.Int("links", len(found)))
		if len(found) == 0 {
			break
		}
		for _, link := range found {
			seen[link] = struct{}{}
		}
	}

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls, nil
}

func (d *Discoverer) pageURL(page int) string {
	u := *d.cfg.BaseURL
	u.Path = d.cfg.IndexPath
	if page > 1 {
		q := u.Query()
		q.Set(d.cfg.PageParam, strconv.Itoa(page))
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// harvest pulls every anchor whose resolved URL sits strictly beneath the
// index path on the same host.
func (d *Discoverer) harvest(doc *goquery.Document) []string {
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := d.cfg.BaseURL.ResolveReference(ref)
		if !d.isDetailLink(resolved) {
			return
		}
		resolved.Fragment = ""
		links = append(links, resolved.String())
	})
	return links
}

func (d *Discoverer) isDetailLink(u *url.URL) bool {
	if !strings.EqualFold(u.Hostname(), d.cfg.BaseURL.Hostname()) {
		return false
	}
	prefix := strings.TrimSuffix(d.cfg.IndexPath, "/") + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return false
	}
	rest := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
	return rest != ""
}
