package filter

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfontes/dashboard-comercial-go/internal/models"
)

var now = time.Date(2024, time.March, 20, 15, 30, 0, 0, time.UTC)

func salesOn(day time.Time, name string, role models.Role, team models.Team) models.SalesActivityRecord {
	return models.SalesActivityRecord{
		Date: models.DateOf(day), Team: team, SalespersonName: name, Role: role,
		CallsMade: 10, Connections: 8, AppointmentsSet: 4, SalesClosed: 1, RevenueClosed: 1000,
	}
}

func TestParseWindow(t *testing.T) {
	for in, want := range map[string]Window{
		"":      WindowAll,
		"all":   WindowAll,
		"today": WindowToday,
		"7d":    WindowLast7,
		"30d":   WindowLast30,
	} {
		got, err := ParseWindow(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseWindow("fortnight")
	assert.Error(t, err)
}

func TestByPeriodToday(t *testing.T) {
	recs := []models.SalesActivityRecord{
		salesOn(now, "today", models.RoleCloser, models.TeamA),
		salesOn(now.AddDate(0, 0, -1), "yesterday", models.RoleCloser, models.TeamA),
	}
	got := ByPeriod(recs, WindowToday, now)
	require.Len(t, got, 1)
	assert.Equal(t, "today", got[0].SalespersonName)
}

func TestByPeriodLast7Boundaries(t *testing.T) {
	recs := []models.SalesActivityRecord{
		salesOn(now, "today", models.RoleCloser, models.TeamA),
		salesOn(now.AddDate(0, 0, -7), "edge", models.RoleCloser, models.TeamA),
		salesOn(now.AddDate(0, 0, -8), "out", models.RoleCloser, models.TeamA),
		salesOn(now.AddDate(0, 0, 1), "future", models.RoleCloser, models.TeamA),
	}
	got := ByPeriod(recs, WindowLast7, now)
	names := make([]string, 0, len(got))
	for _, r := range got {
		names = append(names, r.SalespersonName)
	}
	assert.Equal(t, []string{"today", "edge"}, names)
}

func TestByPeriodAllPreservesOrder(t *testing.T) {
	recs := []models.SalesActivityRecord{
		salesOn(now.AddDate(0, 0, -40), "a", models.RoleCloser, models.TeamA),
		salesOn(now, "b", models.RoleCloser, models.TeamA),
		salesOn(now.AddDate(0, 0, -3), "c", models.RoleCloser, models.TeamA),
	}
	got := ByPeriod(recs, WindowAll, now)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].SalespersonName)
	assert.Equal(t, "c", got[2].SalespersonName)
}

func TestByPeriodWorksOnCampaigns(t *testing.T) {
	recs := []models.CampaignMetricRecord{
		{Date: models.DateOf(now), CampaignName: "in"},
		{Date: models.DateOf(now.AddDate(0, 0, -31)), CampaignName: "out"},
	}
	got := ByPeriod(recs, WindowLast30, now)
	require.Len(t, got, 1)
	assert.Equal(t, "in", got[0].CampaignName)
}

func TestByRole(t *testing.T) {
	recs := []models.SalesActivityRecord{
		salesOn(now, "a", models.RoleCloser, models.TeamA),
		salesOn(now, "b", models.RoleProspector, models.TeamA),
	}
	got := ByRole(recs, models.RoleProspector)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].SalespersonName)

	assert.Len(t, ByRole(recs, ""), 2)
}

func TestTeamSwitchEmptiesOtherStream(t *testing.T) {
	a := []models.SalesActivityRecord{salesOn(now, "a", models.RoleCloser, models.TeamA)}
	b := []models.SalesActivityRecord{salesOn(now, "b", models.RoleCloser, models.TeamB)}

	gotA, gotB := TeamSwitch(models.TeamA, a, b)
	assert.Len(t, gotA, 1)
	assert.Empty(t, gotB)

	gotA, gotB = TeamSwitch(models.TeamB, a, b)
	assert.Empty(t, gotA)
	assert.Len(t, gotB, 1)

	gotA, gotB = TeamSwitch("", a, b)
	assert.Len(t, gotA, 1)
	assert.Len(t, gotB, 1)
}

// Records arrive anchored at UTC midnight regardless of the server's clock;
// the window bounds must land on the same calendar days even when "now" sits
// in a non-UTC location close to a day boundary.
func TestByPeriodNonUTCServerClock(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
	}{
		{"utc-3 early morning", time.Date(2024, time.March, 20, 1, 30, 0, 0, time.FixedZone("UTC-3", -3*3600))},
		{"utc+2 late evening", time.Date(2024, time.March, 20, 23, 30, 0, 0, time.FixedZone("UTC+2", 2*3600))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sameDay, err := models.ParseDate("2024-03-20")
			require.NoError(t, err)
			edge, err := models.ParseDate("2024-03-13")
			require.NoError(t, err)
			recs := []models.SalesActivityRecord{
				{Date: sameDay, SalespersonName: "same-day"},
				{Date: edge, SalespersonName: "edge"},
			}

			today := ByPeriod(recs, WindowToday, tc.now)
			require.Len(t, today, 1, "same-day record must not fall out of the Today window")
			assert.Equal(t, "same-day", today[0].SalespersonName)

			week := ByPeriod(recs, WindowLast7, tc.now)
			assert.Len(t, week, 2, "both the same-day record and the inclusive -7 edge belong to Last7Days")
		})
	}
}

// Filtering by period, role and team in any order must yield the same result
// set: period and role are pure row predicates over independent fields, and
// the team switch drops or keeps a stream wholesale.
func TestFilterCompositionCommutative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	roles := []models.Role{models.RoleCloser, models.RoleProspector}

	stream := func(team models.Team, n int) []models.SalesActivityRecord {
		out := make([]models.SalesActivityRecord, 0, n)
		for i := 0; i < n; i++ {
			day := now.AddDate(0, 0, -rng.Intn(45))
			out = append(out, salesOn(day, "p", roles[rng.Intn(2)], team))
		}
		return out
	}
	teamARecs := stream(models.TeamA, 150)
	teamBRecs := stream(models.TeamB, 150)

	concat := func(a, b []models.SalesActivityRecord) []models.SalesActivityRecord {
		return append(append([]models.SalesActivityRecord{}, a...), b...)
	}

	windows := []Window{WindowToday, WindowLast7, WindowLast30, WindowAll}
	for _, w := range windows {
		for _, role := range []models.Role{"", models.RoleCloser, models.RoleProspector} {
			for _, sel := range []models.Team{"", models.TeamA, models.TeamB} {
				// period, then role, then team
				a1 := ByRole(ByPeriod(teamARecs, w, now), role)
				b1 := ByRole(ByPeriod(teamBRecs, w, now), role)
				a1, b1 = TeamSwitch(sel, a1, b1)

				// team, then role, then period
				a2, b2 := TeamSwitch(sel, teamARecs, teamBRecs)
				a2 = ByPeriod(ByRole(a2, role), w, now)
				b2 = ByPeriod(ByRole(b2, role), w, now)

				// role, then team, then period
				a3, b3 := TeamSwitch(sel, ByRole(teamARecs, role), ByRole(teamBRecs, role))
				a3 = ByPeriod(a3, w, now)
				b3 = ByPeriod(b3, w, now)

				got1, got2, got3 := concat(a1, b1), concat(a2, b2), concat(a3, b3)
				assert.Equal(t, got1, got2, "window=%s role=%s team=%s", w, role, sel)
				assert.Equal(t, got1, got3, "window=%s role=%s team=%s", w, role, sel)
			}
		}
	}
}
