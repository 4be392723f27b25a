package cache

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfontes/dashboard-comercial-go/internal/models"
	"github.com/mfontes/dashboard-comercial-go/internal/upstream"
)

type fakeGateway struct {
	insightCalls atomic.Int64
	listCalls    atomic.Int64

	insights    []models.CampaignMetricRecord
	insightsErr error
	campaigns   []upstream.Campaign
	listErr     error
	delay       time.Duration
}

func (f *fakeGateway) FetchCampaignInsights(ctx context.Context, since, until models.Date) ([]models.CampaignMetricRecord, error) {
	f.insightCalls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.insightsErr != nil {
		return nil, f.insightsErr
	}
	return f.insights, nil
}

func (f *fakeGateway) FetchCampaignList(ctx context.Context) ([]upstream.Campaign, error) {
	f.listCalls.Add(1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.campaigns, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func record(name string) models.CampaignMetricRecord {
	return models.CampaignMetricRecord{
		Date: models.NewDate(2024, time.January, 15), Platform: upstream.Platform,
		CampaignName: name, Spend: 1000, Leads: 100, Clicks: 450, Impressions: 15420,
	}
}

func TestFreshTier(t *testing.T) {
	gw := &fakeGateway{insights: []models.CampaignMetricRecord{record("Launch")}}
	c := New(gw, 5*time.Minute, 30, testLogger())

	got := c.GetCampaignData(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "Launch", got[0].CampaignName)

	c.mu.RLock()
	defer c.mu.RUnlock()
	assert.Equal(t, TierFresh, c.cur.Tier)
}

func TestFreshnessWindowSkipsUpstream(t *testing.T) {
	gw := &fakeGateway{insights: []models.CampaignMetricRecord{record("Launch")}}
	c := New(gw, 5*time.Minute, 30, testLogger())

	for i := 0; i < 5; i++ {
		c.GetCampaignData(context.Background())
	}
	assert.Equal(t, int64(1), gw.insightCalls.Load())
}

func TestStalenessTriggersRefetch(t *testing.T) {
	gw := &fakeGateway{insights: []models.CampaignMetricRecord{record("Launch")}}
	c := New(gw, 5*time.Minute, 30, testLogger())

	base := time.Now()
	c.now = func() time.Time { return base }
	c.GetCampaignData(context.Background())

	c.now = func() time.Time { return base.Add(6 * time.Minute) }
	c.GetCampaignData(context.Background())
	assert.Equal(t, int64(2), gw.insightCalls.Load())
}

func TestFallbackToCampaignList(t *testing.T) {
	gw := &fakeGateway{
		insightsErr: upstream.ErrUnavailable,
		campaigns: []upstream.Campaign{
			{ID: "c1", Name: "Launch", Status: "ACTIVE"},
			{ID: "c2", Name: "Retargeting", Status: "PAUSED"},
		},
	}
	c := New(gw, 5*time.Minute, 30, testLogger())

	got := c.GetCampaignData(context.Background())
	require.Len(t, got, 2)
	// zeroed metrics, today's date, never the placeholder
	assert.Equal(t, "Launch", got[0].CampaignName)
	assert.Equal(t, "c1", got[0].CampaignID)
	assert.Zero(t, got[0].Spend)
	assert.Equal(t, models.DateOf(time.Now()), got[0].Date)
	assert.NotEqual(t, PlaceholderCampaignName, got[0].CampaignName)

	c.mu.RLock()
	defer c.mu.RUnlock()
	assert.Equal(t, TierCampaignListOnly, c.cur.Tier)
}

func TestLastKnownGoodServedUnchanged(t *testing.T) {
	gw := &fakeGateway{insights: []models.CampaignMetricRecord{record("Launch")}}
	c := New(gw, 5*time.Minute, 30, testLogger())

	base := time.Now()
	c.now = func() time.Time { return base }
	c.GetCampaignData(context.Background())
	fetchedAt := c.cur.FetchedAt

	// upstream dies entirely, cache goes stale
	gw.insightsErr = upstream.ErrUnavailable
	gw.listErr = upstream.ErrUnavailable
	c.now = func() time.Time { return base.Add(10 * time.Minute) }

	got := c.GetCampaignData(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "Launch", got[0].CampaignName)

	c.mu.RLock()
	defer c.mu.RUnlock()
	// fetchedAt untouched so the next request retries the upstream
	assert.Equal(t, fetchedAt, c.cur.FetchedAt)
	assert.Equal(t, TierFresh, c.cur.Tier)
}

func TestSyntheticPlaceholderWhenNothingElse(t *testing.T) {
	gw := &fakeGateway{insightsErr: upstream.ErrUnavailable, listErr: upstream.ErrUnavailable}
	c := New(gw, 5*time.Minute, 30, testLogger())

	got := c.GetCampaignData(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, PlaceholderCampaignName, got[0].CampaignName)
	assert.Equal(t, PlaceholderCampaignID, got[0].CampaignID)
	assert.Zero(t, got[0].Spend)
	assert.Zero(t, got[0].Leads)
}

func TestRefreshBypassesFreshnessWindow(t *testing.T) {
	gw := &fakeGateway{insights: []models.CampaignMetricRecord{record("Launch")}}
	c := New(gw, 5*time.Minute, 30, testLogger())

	c.GetCampaignData(context.Background())
	ds := c.Refresh(context.Background())

	assert.Equal(t, int64(2), gw.insightCalls.Load())
	assert.Equal(t, TierFresh, ds.Tier)
	require.Len(t, ds.Records, 1)
}

func TestConcurrentStaleReadersCollapseToOneFetch(t *testing.T) {
	gw := &fakeGateway{
		insights: []models.CampaignMetricRecord{record("Launch")},
		delay:    50 * time.Millisecond,
	}
	c := New(gw, 5*time.Minute, 30, testLogger())

	const n = 25
	results := make([][]models.CampaignMetricRecord, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.GetCampaignData(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), gw.insightCalls.Load(), "stale readers must collapse to one upstream fetch")
	for i := 0; i < n; i++ {
		require.Len(t, results[i], 1)
		assert.Equal(t, results[0], results[i])
	}
}

func TestAppendSurvivesRefresh(t *testing.T) {
	gw := &fakeGateway{insights: []models.CampaignMetricRecord{record("Launch")}}
	c := New(gw, 5*time.Minute, 30, testLogger())

	manual := record("Operador Manual")
	manual.Spend = 50
	c.Append(manual)

	got := c.GetCampaignData(context.Background())
	require.Len(t, got, 2)
	assert.Equal(t, "Launch", got[0].CampaignName)
	assert.Equal(t, "Operador Manual", got[1].CampaignName)

	c.Refresh(context.Background())
	got = c.GetCampaignData(context.Background())
	require.Len(t, got, 2, "manual submissions survive upstream refreshes")
}
