package models

import (
	"fmt"
	"time"
)

// Date is a calendar day; the time component is always midnight. It marshals
// as "2006-01-02".
type Date struct{ time.Time }

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day. The result is always anchored at
// UTC midnight so that dates built from any server clock compare equal to
// dates parsed from the wire, day for day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	// tolerate full timestamps from older clients, keep only the day
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

type Team string

const (
	TeamA Team = "TeamA"
	TeamB Team = "TeamB"
)

func ParseTeam(s string) (Team, error) {
	switch Team(s) {
	case TeamA, TeamB:
		return Team(s), nil
	}
	return "", &InvalidTeamError{Value: s}
}

type Role string

const (
	RoleCloser     Role = "Closer"
	RoleProspector Role = "Prospector"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCloser, RoleProspector:
		return Role(s), nil
	}
	return "", &InvalidRoleError{Value: s}
}

// CampaignMetricRecord is one campaign's performance on one date. Records are
// never mutated after creation; the cache replaces them wholesale on refresh.
type CampaignMetricRecord struct {
	Date             Date    `json:"date"`
	Platform         string  `json:"platform"`
	CampaignName     string  `json:"campaignName"`
	CampaignID       string  `json:"campaignId,omitempty"`
	Impressions      int     `json:"impressions"`
	Clicks           int     `json:"clicks"`
	Reach            int     `json:"reach,omitempty"`
	Frequency        float64 `json:"frequency,omitempty"`
	CostPerClick     float64 `json:"costPerClick"`
	ClickThroughRate float64 `json:"clickThroughRate"`
	CostPerMille     float64 `json:"costPerMille,omitempty"`
	Spend            float64 `json:"spend"`
	Conversions      int     `json:"conversions,omitempty"`
	Leads            int     `json:"leads"`
	CostPerLead      float64 `json:"costPerLead"`
	ReturnOnAdSpend  float64 `json:"returnOnAdSpend"`
}

func (r CampaignMetricRecord) Day() Date { return r.Date }

// Validate checks the submission contract: required fields present, counters
// and money non-negative.
func (r CampaignMetricRecord) Validate() error {
	switch {
	case r.Date.IsZero():
		return &ValidationError{Field: "date"}
	case r.Platform == "":
		return &ValidationError{Field: "platform"}
	case r.CampaignName == "":
		return &ValidationError{Field: "campaignName"}
	case r.Impressions < 0:
		return &ValidationError{Field: "impressions", Reason: "must be >= 0"}
	case r.Clicks < 0:
		return &ValidationError{Field: "clicks", Reason: "must be >= 0"}
	case r.Spend < 0:
		return &ValidationError{Field: "spend", Reason: "must be >= 0"}
	case r.Leads < 0:
		return &ValidationError{Field: "leads", Reason: "must be >= 0"}
	}
	return nil
}

// SalesActivityRecord is one salesperson's activity on one date for one team.
type SalesActivityRecord struct {
	Date            Date    `json:"date"`
	Team            Team    `json:"team"`
	SalespersonName string  `json:"salespersonName"`
	Role            Role    `json:"role"`
	CallsMade       int     `json:"callsMade"`
	Connections     int     `json:"connections"`
	AppointmentsSet int     `json:"appointmentsSet"`
	SalesClosed     int     `json:"salesClosed"`
	RevenueClosed   float64 `json:"revenueClosed"`
}

func (r SalesActivityRecord) Day() Date { return r.Date }

// SalesKey is the natural upsert key of a sales record.
type SalesKey struct {
	Date            string
	SalespersonName string
	Team            Team
}

func (r SalesActivityRecord) Key() SalesKey {
	return SalesKey{Date: r.Date.String(), SalespersonName: r.SalespersonName, Team: r.Team}
}

func (r SalesActivityRecord) Validate() error {
	switch {
	case r.Date.IsZero():
		return &ValidationError{Field: "date"}
	case r.SalespersonName == "":
		return &ValidationError{Field: "salespersonName"}
	}
	if _, err := ParseRole(string(r.Role)); err != nil {
		return err
	}
	switch {
	case r.CallsMade < 0:
		return &ValidationError{Field: "callsMade", Reason: "must be >= 0"}
	case r.Connections < 0:
		return &ValidationError{Field: "connections", Reason: "must be >= 0"}
	case r.AppointmentsSet < 0:
		return &ValidationError{Field: "appointmentsSet", Reason: "must be >= 0"}
	case r.SalesClosed < 0:
		return &ValidationError{Field: "salesClosed", Reason: "must be >= 0"}
	case r.RevenueClosed < 0:
		return &ValidationError{Field: "revenueClosed", Reason: "must be >= 0"}
	}
	return nil
}

// KPISummary is recomputed on every request from filtered inputs; it has no
// persistent identity.
type KPISummary struct {
	OverallROIPercent           float64 `json:"overallRoiPercent"`
	CostPerSale                 float64 `json:"costPerSale"`
	LeadToSaleConversionPercent float64 `json:"leadToSaleConversionPercent"`
	TotalRevenue                float64 `json:"totalRevenue"`
	ConnectionRatePercent       float64 `json:"connectionRatePercent"`
	AppointmentRatePercent      float64 `json:"appointmentRatePercent"`
	CloseRatePercent            float64 `json:"closeRatePercent"`
	AverageTicket               float64 `json:"averageTicket"`
}

type TeamKPISummary struct {
	Team                   Team    `json:"team"`
	TotalCalls             int     `json:"totalCalls"`
	TotalConnections       int     `json:"totalConnections"`
	TotalAppointments      int     `json:"totalAppointments"`
	TotalSalesClosed       int     `json:"totalSalesClosed"`
	TotalRevenue           float64 `json:"totalRevenue"`
	ConnectionRatePercent  float64 `json:"connectionRatePercent"`
	AppointmentRatePercent float64 `json:"appointmentRatePercent"`
	CloseRatePercent       float64 `json:"closeRatePercent"`
	AverageTicket          float64 `json:"averageTicket"`
}

// SeriesPoint is one date bucket of the charting time series.
type SeriesPoint struct {
	Date        Date    `json:"date"`
	Spend       float64 `json:"spend"`
	Leads       int     `json:"leads"`
	Revenue     float64 `json:"revenue"`
	SalesClosed int     `json:"salesClosed"`
}
