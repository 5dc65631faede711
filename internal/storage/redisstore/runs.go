// Package redisstore implements the run store on Redis for deployments
// that keep in-progress surveys out of the relational database.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/caseflow/intake/internal/domain/run"
	"github.com/caseflow/intake/internal/storage"
)

const keyPrefix = "intake:run:"

// RunStore persists runs as JSON values under a shared key prefix.
type RunStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ storage.RunStore = (*RunStore)(nil)

// NewRunStore creates a RunStore. A zero ttl keeps runs until deleted.
func NewRunStore(client *redis.Client, ttl time.Duration) *RunStore {
	return &RunStore{client: client, ttl: ttl}
}

func runKey(id string) string {
	return keyPrefix + id
}

func (s *RunStore) CreateRun(ctx context.Context, r run.Run) error {
	if r.ID == "" {
		return errors.New("run id required")
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	ok, err := s.client.SetNX(ctx, runKey(r.ID), data, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("run %s: %w", r.ID, storage.ErrAlreadyExists)
	}
	return nil
}

func (s *RunStore) GetRun(ctx context.Context, id string) (run.Run, error) {
	data, err := s.client.Get(ctx, runKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return run.Run{}, fmt.Errorf("run %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return run.Run{}, err
	}

	var r run.Run
	if err := json.Unmarshal(data, &r); err != nil {
		return run.Run{}, fmt.Errorf("decode run: %w", err)
	}
	return r, nil
}

func (s *RunStore) ReplaceRun(ctx context.Context, r run.Run) (run.Run, error) {
	existing, err := s.GetRun(ctx, r.ID)
	if err != nil {
		return run.Run{}, err
	}
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(r)
	if err != nil {
		return run.Run{}, fmt.Errorf("encode run: %w", err)
	}
	if err := s.client.Set(ctx, runKey(r.ID), data, s.ttl).Err(); err != nil {
		return run.Run{}, err
	}
	return r, nil
}

func (s *RunStore) ListIdleRuns(ctx context.Context, status run.Status, updatedBefore time.Time) ([]run.Run, error) {
	var result []run.Run

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // expired between SCAN and GET
		}
		if err != nil {
			return nil, err
		}
		var r run.Run
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		if r.Status == status && r.UpdatedAt.Before(updatedBefore) {
			result = append(result, r)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.Before(result[j].UpdatedAt) })
	return result, nil
}
