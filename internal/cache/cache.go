// Package cache bounds the rate and blast-radius of upstream failures behind
// a graduated fallback chain. Consumers never see an error, only data of a
// lower freshness tier.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mfontes/dashboard-comercial-go/internal/models"
	"github.com/mfontes/dashboard-comercial-go/internal/obs"
	"github.com/mfontes/dashboard-comercial-go/internal/upstream"
)

type Tier string

const (
	TierFresh                Tier = "Fresh"
	TierCampaignListOnly     Tier = "CampaignListOnly"
	TierLastKnownGood        Tier = "LastKnownGood"
	TierSyntheticPlaceholder Tier = "SyntheticPlaceholder"
)

// Placeholder record identity, kept verbatim from the dashboard contract.
const (
	PlaceholderCampaignName = "Erro na API - Dados Mockados"
	PlaceholderCampaignID   = "error"
)

// Fetcher is the slice of the upstream gateway the cache needs.
type Fetcher interface {
	FetchCampaignInsights(ctx context.Context, since, until models.Date) ([]models.CampaignMetricRecord, error)
	FetchCampaignList(ctx context.Context) ([]upstream.Campaign, error)
}

// Dataset is the cache-private wrapper around one refresh result. Consumers
// of GetCampaignData only ever see the record list.
type Dataset struct {
	Records   []models.CampaignMetricRecord
	FetchedAt time.Time
	Tier      Tier
}

type Cache struct {
	gw           Fetcher
	ttl          time.Duration
	lookbackDays int
	log          *slog.Logger
	now          func() time.Time

	sf singleflight.Group

	mu     sync.RWMutex
	cur    *Dataset
	manual []models.CampaignMetricRecord
}

func New(gw Fetcher, ttl time.Duration, lookbackDays int, log *slog.Logger) *Cache {
	return &Cache{gw: gw, ttl: ttl, lookbackDays: lookbackDays, log: log, now: time.Now}
}

// GetCampaignData returns the current campaign records, refreshing lazily
// when the freshness window has passed. It never fails; it degrades.
func (c *Cache) GetCampaignData(ctx context.Context) []models.CampaignMetricRecord {
	c.mu.RLock()
	if c.cur != nil && len(c.cur.Records) > 0 && c.now().Sub(c.cur.FetchedAt) < c.ttl {
		out := c.snapshotLocked(c.cur.Records)
		c.mu.RUnlock()
		obs.CacheHits.Inc()
		return out
	}
	c.mu.RUnlock()

	ds := c.refresh(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked(ds.Records)
}

// Refresh bypasses the freshness window and runs the tier chain now. It is
// subject to the same single-flight guarantee as lazy refreshes.
func (c *Cache) Refresh(ctx context.Context) Dataset {
	return c.refresh(ctx)
}

// Append stores an operator-submitted record beside the tiered dataset. It
// survives refreshes (which replace only upstream-owned records) and is
// returned after them on every read.
func (c *Cache) Append(rec models.CampaignMetricRecord) {
	c.mu.Lock()
	c.manual = append(c.manual, rec)
	c.mu.Unlock()
}

// refresh collapses concurrent callers onto one tier-chain run; every waiter
// receives the identical resulting dataset.
func (c *Cache) refresh(ctx context.Context) Dataset {
	v, _, _ := c.sf.Do("refresh", func() (any, error) {
		return c.runTiers(ctx), nil
	})
	return v.(Dataset)
}

// runTiers attempts each fallback tier in fixed order, each only when the
// previous one reported the upstream unavailable.
func (c *Cache) runTiers(ctx context.Context) Dataset {
	since, until := upstream.Lookback(c.now(), c.lookbackDays)
	recs, err := c.gw.FetchCampaignInsights(ctx, since, until)
	if err == nil {
		return c.store(Dataset{Records: recs, FetchedAt: c.now(), Tier: TierFresh})
	}
	c.log.Warn("insights unavailable, falling back to campaign list", slog.String("err", err.Error()))

	campaigns, listErr := c.gw.FetchCampaignList(ctx)
	if listErr == nil {
		today := models.DateOf(c.now())
		zeroed := make([]models.CampaignMetricRecord, 0, len(campaigns))
		for _, cp := range campaigns {
			zeroed = append(zeroed, models.CampaignMetricRecord{
				Date:         today,
				Platform:     upstream.Platform,
				CampaignName: cp.Name,
				CampaignID:   cp.ID,
			})
		}
		return c.store(Dataset{Records: zeroed, FetchedAt: c.now(), Tier: TierCampaignListOnly})
	}
	c.log.Warn("campaign list unavailable", slog.String("err", listErr.Error()))

	c.mu.RLock()
	prev := c.cur
	c.mu.RUnlock()
	if prev != nil {
		// served unchanged, fetchedAt untouched: the next request past the
		// window retries the upstream instead of pinning stale data
		obs.CacheRefreshes.WithLabelValues(string(TierLastKnownGood)).Inc()
		c.log.Warn("serving last known good dataset", slog.String("fetched_at", prev.FetchedAt.Format(time.RFC3339)))
		return Dataset{Records: prev.Records, FetchedAt: prev.FetchedAt, Tier: TierLastKnownGood}
	}

	c.log.Error("no cached dataset, serving synthetic placeholder")
	return c.store(Dataset{
		Records: []models.CampaignMetricRecord{{
			Date:         models.DateOf(c.now()),
			Platform:     upstream.Platform,
			CampaignName: PlaceholderCampaignName,
			CampaignID:   PlaceholderCampaignID,
		}},
		FetchedAt: c.now(),
		Tier:      TierSyntheticPlaceholder,
	})
}

func (c *Cache) store(ds Dataset) Dataset {
	c.mu.Lock()
	c.cur = &ds
	c.mu.Unlock()
	obs.CacheRefreshes.WithLabelValues(string(ds.Tier)).Inc()
	c.log.Info("campaign cache refreshed",
		slog.String("tier", string(ds.Tier)), slog.Int("records", len(ds.Records)))
	return ds
}

// snapshotLocked copies recs plus the manual submissions; callers hold at
// least the read lock.
func (c *Cache) snapshotLocked(recs []models.CampaignMetricRecord) []models.CampaignMetricRecord {
	out := make([]models.CampaignMetricRecord, 0, len(recs)+len(c.manual))
	out = append(out, recs...)
	out = append(out, c.manual...)
	return out
}
