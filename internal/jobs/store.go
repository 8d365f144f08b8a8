package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	jobKeyPrefix = "pi:job:"
	maxTxRetries = 16
)

// ResultStore はワーカーとゲートウェイが共有するジョブ状態ストアです。
type ResultStore interface {
	// Get はレコードを返します。存在しない場合は nil, nil です。
	Get(ctx context.Context, jobID string) (*Record, error)
	// SaveProgress は実行中の進捗を書き込みます。最初の書き込みでレコードが作成されます。
	SaveProgress(ctx context.Context, jobID string, digits int, progress float64) error
	// MarkSucceeded は結果を書き込み、レコードを終端状態にします。
	MarkSucceeded(ctx context.Context, jobID string, result string) error
	// MarkFailed は失敗理由を書き込み、レコードを終端状態にします。
	MarkFailed(ctx context.Context, jobID string, cause string) error
}

// RedisStore はジョブ状態を Redis に保存します。
type RedisStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
	now func() time.Time
}

// NewRedisStore は RedisStore を作成します。ttl が 0 の場合は期限なしで保存します。
func NewRedisStore(rdb redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		ttl: ttl,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Get はジョブ情報を取得します。
func (s *RedisStore) Get(ctx context.Context, jobID string) (*Record, error) {
	if jobID == "" {
		return nil, nil
	}
	return decodeRecord(s.rdb.Get(ctx, jobKey(jobID)))
}

// SaveProgress は進捗を更新します。
func (s *RedisStore) SaveProgress(ctx context.Context, jobID string, digits int, progress float64) error {
	progress = clampProgress(progress)
	return s.update(ctx, jobID, func(record *Record) error {
		if record.Progress != nil && progress < *record.Progress {
			return fmt.Errorf("%w: job %s has %.6f, got %.6f", ErrProgressRegression, jobID, *record.Progress, progress)
		}
		if digits > 0 {
			record.Digits = digits
		}
		record.State = StateRunning
		record.Progress = &progress
		return nil
	})
}

// MarkSucceeded はジョブ完了時の情報を保存します。
func (s *RedisStore) MarkSucceeded(ctx context.Context, jobID string, result string) error {
	return s.update(ctx, jobID, func(record *Record) error {
		done := 1.0
		record.State = StateSucceeded
		record.Progress = &done
		record.Result = result
		record.Error = ""
		return nil
	})
}

// MarkFailed はジョブ失敗時の情報を保存します。
func (s *RedisStore) MarkFailed(ctx context.Context, jobID string, cause string) error {
	if cause == "" {
		cause = "unknown error"
	}
	return s.update(ctx, jobID, func(record *Record) error {
		record.State = StateFailed
		record.Result = ""
		record.Error = cause
		return nil
	})
}

// update は WATCH による楽観ロックでレコードを書き換えます。
// 終端状態のレコードは変更せず ErrTerminal を返します。
func (s *RedisStore) update(ctx context.Context, jobID string, mutate func(*Record) error) error {
	if jobID == "" {
		return fmt.Errorf("jobID is required")
	}
	key := jobKey(jobID)

	txf := func(tx *redis.Tx) error {
		record, err := decodeRecord(tx.Get(ctx, key))
		if err != nil {
			return err
		}
		now := s.now()
		if record == nil {
			record = &Record{JobID: jobID, CreatedAt: now}
		}
		if record.State.IsTerminal() {
			return fmt.Errorf("%w: job %s is %s", ErrTerminal, jobID, record.State)
		}
		if err := mutate(record); err != nil {
			return err
		}
		record.UpdatedAt = now

		payload, err := json.Marshal(record)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, ErrTerminal),
			errors.Is(err, ErrProgressRegression),
			errors.Is(err, ErrBackendUnavailable):
			return err
		default:
			return fmt.Errorf("%w: redis update %s: %w", ErrBackendUnavailable, jobID, err)
		}
	}
	return fmt.Errorf("%w: too many concurrent updates for job %s", ErrBackendUnavailable, jobID)
}

func decodeRecord(cmd *redis.StringCmd) (*Record, error) {
	data, err := cmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: redis get: %w", ErrBackendUnavailable, err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode job record: %w", err)
	}
	return &record, nil
}

func clampProgress(p float64) float64 {
	switch {
	case math.IsNaN(p) || p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

func jobKey(id string) string {
	return jobKeyPrefix + id
}
