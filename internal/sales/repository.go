// Package sales stores the per-team activity streams. A repository carries
// one team identity and corrects every submitted record to it.
package sales

import (
	"context"
	"sort"
	"sync"

	"github.com/mfontes/dashboard-comercial-go/internal/models"
)

type Repository interface {
	// Upsert validates the whole batch before touching storage; the first
	// invalid record rejects the batch with no partial acceptance. Records
	// are keyed by (date, salespersonName, team); later entries replace
	// earlier ones, within a batch last writer wins.
	Upsert(ctx context.Context, recs []models.SalesActivityRecord) error
	GetAll(ctx context.Context) ([]models.SalesActivityRecord, error)
}

// prepare normalizes the batch to the repository's team and validates it.
func prepare(team models.Team, recs []models.SalesActivityRecord) ([]models.SalesActivityRecord, error) {
	out := make([]models.SalesActivityRecord, len(recs))
	for i, r := range recs {
		r.Team = team
		if err := r.Validate(); err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func sortRecords(recs []models.SalesActivityRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].Date.Equal(recs[j].Date.Time) {
			return recs[i].Date.Before(recs[j].Date.Time)
		}
		return recs[i].SalespersonName < recs[j].SalespersonName
	})
}

// MemoryRepository keeps everything in process memory; state is lost on
// restart. A durable backend can replace it behind the same interface.
type MemoryRepository struct {
	team  models.Team
	mu    sync.Mutex
	byKey map[models.SalesKey]models.SalesActivityRecord
}

func NewMemoryRepository(team models.Team) *MemoryRepository {
	return &MemoryRepository{team: team, byKey: make(map[models.SalesKey]models.SalesActivityRecord)}
}

func (m *MemoryRepository) Upsert(ctx context.Context, recs []models.SalesActivityRecord) error {
	prepared, err := prepare(m.team, recs)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range prepared {
		m.byKey[r.Key()] = r
	}
	return nil
}

func (m *MemoryRepository) GetAll(ctx context.Context) ([]models.SalesActivityRecord, error) {
	m.mu.Lock()
	out := make([]models.SalesActivityRecord, 0, len(m.byKey))
	for _, r := range m.byKey {
		out = append(out, r)
	}
	m.mu.Unlock()
	sortRecords(out)
	return out, nil
}
