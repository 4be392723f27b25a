// Package kpi reduces filtered record streams into scalar and per-team
// summaries. Every ratio is zero when its denominator is zero; the aggregator
// never produces NaN or Inf and never fails.
package kpi

import (
	"sort"

	"github.com/mfontes/dashboard-comercial-go/internal/models"
)

// Overall merges the campaign stream with both teams' already-filtered sales
// streams into the dashboard's headline summary.
func Overall(campaigns []models.CampaignMetricRecord, sales []models.SalesActivityRecord) models.KPISummary {
	var totalSpend float64
	var totalLeads int
	for _, c := range campaigns {
		totalSpend += c.Spend
		totalLeads += c.Leads
	}

	var totalCalls, totalConnections, totalAppointments, totalSales int
	var totalRevenue float64
	for _, s := range sales {
		totalCalls += s.CallsMade
		totalConnections += s.Connections
		totalAppointments += s.AppointmentsSet
		totalSales += s.SalesClosed
		totalRevenue += s.RevenueClosed
	}

	return models.KPISummary{
		OverallROIPercent:           safeDiv(totalRevenue-totalSpend, totalSpend) * 100,
		CostPerSale:                 safeDiv(totalSpend, float64(totalSales)),
		LeadToSaleConversionPercent: safeDiv(float64(totalSales), float64(totalLeads)) * 100,
		TotalRevenue:                totalRevenue,
		ConnectionRatePercent:       safeDiv(float64(totalConnections), float64(totalCalls)) * 100,
		AppointmentRatePercent:      safeDiv(float64(totalAppointments), float64(totalConnections)) * 100,
		CloseRatePercent:            safeDiv(float64(totalSales), float64(totalAppointments)) * 100,
		AverageTicket:               safeDiv(totalRevenue, float64(totalSales)),
	}
}

// PerTeam reduces one team's filtered stream into its funnel summary.
func PerTeam(team models.Team, sales []models.SalesActivityRecord) models.TeamKPISummary {
	var out models.TeamKPISummary
	out.Team = team
	for _, s := range sales {
		out.TotalCalls += s.CallsMade
		out.TotalConnections += s.Connections
		out.TotalAppointments += s.AppointmentsSet
		out.TotalSalesClosed += s.SalesClosed
		out.TotalRevenue += s.RevenueClosed
	}
	out.ConnectionRatePercent = safeDiv(float64(out.TotalConnections), float64(out.TotalCalls)) * 100
	out.AppointmentRatePercent = safeDiv(float64(out.TotalAppointments), float64(out.TotalConnections)) * 100
	out.CloseRatePercent = safeDiv(float64(out.TotalSalesClosed), float64(out.TotalAppointments)) * 100
	out.AverageTicket = safeDiv(out.TotalRevenue, float64(out.TotalSalesClosed))
	return out
}

// Series buckets both streams by date for charting, sorted ascending.
func Series(campaigns []models.CampaignMetricRecord, sales []models.SalesActivityRecord) []models.SeriesPoint {
	buckets := map[string]*models.SeriesPoint{}
	bucket := func(d models.Date) *models.SeriesPoint {
		k := d.String()
		p, ok := buckets[k]
		if !ok {
			p = &models.SeriesPoint{Date: d}
			buckets[k] = p
		}
		return p
	}
	for _, c := range campaigns {
		p := bucket(c.Date)
		p.Spend += c.Spend
		p.Leads += c.Leads
	}
	for _, s := range sales {
		p := bucket(s.Date)
		p.Revenue += s.RevenueClosed
		p.SalesClosed += s.SalesClosed
	}
	out := make([]models.SeriesPoint, 0, len(buckets))
	for _, p := range buckets {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out
}

// RecordCloseRate is the per-record close-rate display value, under the same
// zero guard as the aggregate ratios.
func RecordCloseRate(r models.SalesActivityRecord) float64 {
	return safeDiv(float64(r.SalesClosed), float64(r.AppointmentsSet)) * 100
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
