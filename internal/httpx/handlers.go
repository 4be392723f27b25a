package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/mfontes/dashboard-comercial-go/internal/filter"
	"github.com/mfontes/dashboard-comercial-go/internal/kpi"
	"github.com/mfontes/dashboard-comercial-go/internal/models"
)

func (s *Server) getCampaigns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.GetCampaignData(r.Context()))
}

func (s *Server) postCampaign(w http.ResponseWriter, r *http.Request) {
	var rec models.CampaignMetricRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed campaign record: " + err.Error()})
		return
	}
	if err := rec.Validate(); err != nil {
		writeErr(w, err)
		return
	}
	s.cache.Append(rec)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "campaign record accepted",
		"data":    rec,
	})
}

func (s *Server) refreshCampaigns(w http.ResponseWriter, r *http.Request) {
	ds := s.cache.Refresh(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "campaign data refreshed",
		"data":      ds.Records,
		"tier":      ds.Tier,
		"timestamp": ds.FetchedAt.Format(time.RFC3339),
	})
}

// salesRow adds the per-record close-rate display value to the stored record.
type salesRow struct {
	models.SalesActivityRecord
	CloseRatePercent float64 `json:"closeRatePercent"`
}

func (s *Server) getSales(team models.Team) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := s.repos[team].GetAll(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		rows := make([]salesRow, 0, len(recs))
		for _, rec := range recs {
			rows = append(rows, salesRow{SalesActivityRecord: rec, CloseRatePercent: kpi.RecordCloseRate(rec)})
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func (s *Server) postSales(team models.Team) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := decodeSalesBody(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if err := s.repos[team].Upsert(r.Context(), recs); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"message":  "sales records accepted",
			"accepted": len(recs),
		})
	}
}

// decodeSalesBody accepts either a single record object or a batch array.
func decodeSalesBody(body io.Reader) ([]models.SalesActivityRecord, error) {
	b, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimLeft(b, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var recs []models.SalesActivityRecord
		if err := json.Unmarshal(b, &recs); err != nil {
			return nil, err
		}
		return recs, nil
	}
	var rec models.SalesActivityRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return []models.SalesActivityRecord{rec}, nil
}

func (s *Server) getKPIs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	window, err := filter.ParseWindow(q.Get("period"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var role models.Role
	if v := q.Get("role"); v != "" && v != "all" {
		role, err = models.ParseRole(v)
		if err != nil {
			writeErr(w, err)
			return
		}
	}
	var teamSel models.Team
	if v := q.Get("team"); v != "" && v != "all" {
		teamSel, err = models.ParseTeam(v)
		if err != nil {
			writeErr(w, err)
			return
		}
	}

	campaigns := s.cache.GetCampaignData(r.Context())
	teamA, err := s.repos[models.TeamA].GetAll(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	teamB, err := s.repos[models.TeamB].GetAll(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}

	now := time.Now()
	campaigns = filter.ByPeriod(campaigns, window, now)
	teamA = filter.ByRole(filter.ByPeriod(teamA, window, now), role)
	teamB = filter.ByRole(filter.ByPeriod(teamB, window, now), role)
	teamA, teamB = filter.TeamSwitch(teamSel, teamA, teamB)

	allSales := append(append([]models.SalesActivityRecord{}, teamA...), teamB...)
	writeJSON(w, http.StatusOK, map[string]any{
		"overall": kpi.Overall(campaigns, allSales),
		"teams": map[string]models.TeamKPISummary{
			"teamA": kpi.PerTeam(models.TeamA, teamA),
			"teamB": kpi.PerTeam(models.TeamB, teamB),
		},
		"series": kpi.Series(campaigns, allSales),
	})
}
