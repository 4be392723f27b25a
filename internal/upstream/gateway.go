package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mfontes/dashboard-comercial-go/internal/models"
	"github.com/mfontes/dashboard-comercial-go/internal/obs"
)

const Platform = "Meta Ads"

// Gateway talks to the Graph API and translates its response shape into
// CampaignMetricRecord. One instance is shared process-wide, injected where
// needed.
type Gateway struct {
	c           Doer
	baseURL     string
	accessToken string
	adAccountID string
	log         *slog.Logger
}

func NewGateway(c Doer, baseURL, accessToken, adAccountID string, log *slog.Logger) *Gateway {
	return &Gateway{c: c, baseURL: strings.TrimRight(baseURL, "/"), accessToken: accessToken, adAccountID: adAccountID, log: log}
}

type Campaign struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type actionValue struct {
	ActionType string     `json:"action_type"`
	Value      looseFloat `json:"value"`
}

type insightRow struct {
	CampaignID        string        `json:"campaign_id"`
	CampaignName      string        `json:"campaign_name"`
	DateStart         string        `json:"date_start"`
	DateStop          string        `json:"date_stop"`
	Impressions       looseInt      `json:"impressions"`
	Clicks            looseInt      `json:"clicks"`
	Reach             looseInt      `json:"reach"`
	Frequency         looseFloat    `json:"frequency"`
	CPC               looseFloat    `json:"cpc"`
	CTR               looseFloat    `json:"ctr"`
	CPM               looseFloat    `json:"cpm"`
	Spend             looseFloat    `json:"spend"`
	Conversions       looseInt      `json:"conversions"`
	Actions           []actionValue `json:"actions"`
	CostPerActionType []actionValue `json:"cost_per_action_type"`
	ROAS              looseFloat    `json:"roas"`
}

var insightFields = strings.Join([]string{
	"campaign_id", "campaign_name", "date_start", "date_stop",
	"impressions", "clicks", "reach", "frequency",
	"cpc", "ctr", "cpm", "spend", "conversions",
	"actions", "cost_per_action_type", "roas",
}, ",")

// FetchCampaignInsights pulls per-campaign daily metrics for [since, until].
func (g *Gateway) FetchCampaignInsights(ctx context.Context, since, until models.Date) ([]models.CampaignMetricRecord, error) {
	tr, _ := json.Marshal(map[string]string{"since": since.String(), "until": until.String()})
	q := url.Values{}
	q.Set("access_token", g.accessToken)
	q.Set("level", "campaign")
	q.Set("fields", insightFields)
	q.Set("time_range", string(tr))
	q.Set("limit", "100")

	var rows []insightRow
	if err := g.getData(ctx, "insights", q, &rows); err != nil {
		return nil, err
	}

	out := make([]models.CampaignMetricRecord, 0, len(rows))
	for _, r := range rows {
		d, err := models.ParseDate(r.DateStart)
		if err != nil {
			g.log.Warn("insight row has unusable date, skipping",
				slog.String("campaign", r.CampaignName), slog.String("date_start", r.DateStart))
			continue
		}
		leads, cpl := leadMetrics(r.Actions, r.CostPerActionType)
		out = append(out, models.CampaignMetricRecord{
			Date:             d,
			Platform:         Platform,
			CampaignName:     r.CampaignName,
			CampaignID:       r.CampaignID,
			Impressions:      int(r.Impressions),
			Clicks:           int(r.Clicks),
			Reach:            int(r.Reach),
			Frequency:        float64(r.Frequency),
			CostPerClick:     float64(r.CPC),
			ClickThroughRate: float64(r.CTR),
			CostPerMille:     float64(r.CPM),
			Spend:            float64(r.Spend),
			Conversions:      int(r.Conversions),
			Leads:            leads,
			CostPerLead:      cpl,
			ReturnOnAdSpend:  float64(r.ROAS),
		})
	}
	return out, nil
}

// FetchCampaignList pulls the account's campaigns without metrics.
func (g *Gateway) FetchCampaignList(ctx context.Context) ([]Campaign, error) {
	q := url.Values{}
	q.Set("access_token", g.accessToken)
	q.Set("fields", "id,name,status,objective,created_time,updated_time")
	q.Set("limit", "100")

	var campaigns []Campaign
	if err := g.getData(ctx, "campaigns", q, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// getData performs a Graph API GET and unwraps the {"data": [...]} envelope.
// Any transport failure, non-2xx status, undecodable body or missing data
// array is ErrUnavailable.
func (g *Gateway) getData(ctx context.Context, endpoint string, q url.Values, dst any) error {
	u := fmt.Sprintf("%s/%s/%s?%s", g.baseURL, g.adAccountID, endpoint, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := g.c.Do(req)
	if err != nil {
		obs.UpstreamRequests.WithLabelValues(endpoint, "transport_error").Inc()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		obs.UpstreamRequests.WithLabelValues(endpoint, "status_"+strconv.Itoa(resp.StatusCode)).Inc()
		return fmt.Errorf("%w: %s returned %d body=%s", ErrUnavailable, endpoint, resp.StatusCode, string(b))
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		obs.UpstreamRequests.WithLabelValues(endpoint, "bad_body").Inc()
		return fmt.Errorf("%w: decode %s response: %v", ErrUnavailable, endpoint, err)
	}
	if envelope.Data == nil {
		obs.UpstreamRequests.WithLabelValues(endpoint, "no_data").Inc()
		return fmt.Errorf("%w: %s response has no data array", ErrUnavailable, endpoint)
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		obs.UpstreamRequests.WithLabelValues(endpoint, "bad_data").Inc()
		return fmt.Errorf("%w: decode %s data: %v", ErrUnavailable, endpoint, err)
	}
	obs.UpstreamRequests.WithLabelValues(endpoint, "ok").Inc()
	return nil
}

// leadMetrics locates the lead conversion inside the Graph API's nested
// action collections. Absence is not an error, just zeros.
func leadMetrics(actions, costs []actionValue) (int, float64) {
	leads := 0
	if a, ok := findLeadAction(actions); ok {
		leads = int(a.Value)
	}
	cpl := 0.0
	if c, ok := findLeadAction(costs); ok {
		cpl = float64(c.Value)
	}
	return leads, cpl
}

func findLeadAction(vals []actionValue) (actionValue, bool) {
	for _, v := range vals {
		if v.ActionType == "lead" || v.ActionType == "offsite_conversion" {
			return v, true
		}
	}
	return actionValue{}, false
}

// Graph API numerics arrive as strings ("15420") as often as numbers. A
// missing or garbage value degrades to zero instead of failing the row.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = looseFloat(v)
	return nil
}

type looseInt int

func (i *looseInt) UnmarshalJSON(b []byte) error {
	var f looseFloat
	_ = f.UnmarshalJSON(b)
	*i = looseInt(f)
	return nil
}

// Lookback returns the fixed trailing window ending today that insight
// fetches use when no range is given.
func Lookback(now time.Time, days int) (models.Date, models.Date) {
	until := models.DateOf(now)
	since := models.DateOf(now.AddDate(0, 0, -days))
	return since, until
}
