package sales

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mfontes/dashboard-comercial-go/internal/models"
)

// RedisRepository is the durable-storage collaborator substituted behind the
// Repository interface. Records live as JSON values under
// sales:<team>:<date>:<salesperson>, indexed by a per-team key set.
type RedisRepository struct {
	team models.Team
	rdb  *redis.Client
}

func NewRedisRepository(team models.Team, rdb *redis.Client) *RedisRepository {
	return &RedisRepository{team: team, rdb: rdb}
}

func (r *RedisRepository) indexKey() string {
	return fmt.Sprintf("sales:%s:keys", r.team)
}

func recordKey(k models.SalesKey) string {
	return fmt.Sprintf("sales:%s:%s:%s", k.Team, k.Date, k.SalespersonName)
}

func (r *RedisRepository) Upsert(ctx context.Context, recs []models.SalesActivityRecord) error {
	prepared, err := prepare(r.team, recs)
	if err != nil {
		return err
	}
	// one MULTI/EXEC per batch keeps the batch atomic
	pipe := r.rdb.TxPipeline()
	for _, rec := range prepared {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		key := recordKey(rec.Key())
		pipe.Set(ctx, key, b, 0)
		pipe.SAdd(ctx, r.indexKey(), key)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisRepository) GetAll(ctx context.Context) ([]models.SalesActivityRecord, error) {
	keys, err := r.rdb.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []models.SalesActivityRecord{}, nil
	}
	vals, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.SalesActivityRecord, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rec models.SalesActivityRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("corrupt sales record: %w", err)
		}
		out = append(out, rec)
	}
	sortRecords(out)
	return out, nil
}
