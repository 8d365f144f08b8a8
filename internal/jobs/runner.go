package jobs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/axelbunt54/calculate-pi-app/internal/pi"
)

// logEvery は進捗ログを出力する桁の間隔です。
const logEvery = 10

// ComputeFunc は n 桁の結果文字列を計算します。
type ComputeFunc func(n int) (string, error)

// SleepFunc は ctx がキャンセルされるまで最大 d だけ待機します。
type SleepFunc func(ctx context.Context, d time.Duration) error

// Runner は 1 ジョブ分の計算と進捗報告を実行します。
type Runner struct {
	store   ResultStore
	compute ComputeFunc
	sleep   SleepFunc
	logger  zerolog.Logger
}

// RunnerOption は Runner の依存を差し替えます。
type RunnerOption func(*Runner)

// WithCompute は計算関数を差し替えます。
func WithCompute(fn ComputeFunc) RunnerOption {
	return func(r *Runner) { r.compute = fn }
}

// WithSleep は待機関数を差し替えます。
func WithSleep(fn SleepFunc) RunnerOption {
	return func(r *Runner) { r.sleep = fn }
}

// NewRunner は Runner を作成します。
func NewRunner(store ResultStore, logger zerolog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:   store,
		compute: pi.Compute,
		sleep:   sleepContext,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run は結果を先に計算し、桁ごとに減衰する待ち時間を挟みながら進捗を書き込みます。
// 最後に Succeeded を書き込みます。計算に失敗した場合は Failed を書き込みます。
// ctx がキャンセルされた場合は終端状態を書き込まずに戻ります。
func (r *Runner) Run(ctx context.Context, jobID string, n int) error {
	log := r.logger.With().Str("job_id", jobID).Int("digits", n).Logger()

	existing, err := r.store.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job record: %w", err)
	}
	if existing != nil && existing.State.IsTerminal() {
		log.Info().Str("state", string(existing.State)).Msg("Job already finished, skipping redelivery")
		jobsFinishedCounter.WithLabelValues(outcomeSkipped).Inc()
		return nil
	}

	start := 0
	if existing != nil {
		start = resumeIndex(existing.ProgressValue(), n)
		log.Info().Int("position", start).Msg("Resuming job")
	}

	jobsInFlightGauge.Inc()
	defer jobsInFlightGauge.Dec()
	began := time.Now()

	log.Info().Msgf("Starting Pi calculation for %d decimals", n)
	result, err := r.compute(n)
	if err != nil {
		return r.fail(ctx, log, jobID, fmt.Errorf("compute pi: %w", err))
	}

	total := n + 1
	denominator := float64(max(n, 1))
	var simulated float64
	for i := start; i < total; i++ {
		f := float64(i) / denominator
		delay := DelaySeconds(f)

		progress := float64(i+1) / float64(total)
		if err := r.store.SaveProgress(ctx, jobID, n, progress); err != nil {
			if ctx.Err() != nil {
				return r.interrupted(log, i, ctx.Err())
			}
			return r.fail(ctx, log, jobID, fmt.Errorf("save progress: %w", err))
		}

		if err := r.sleep(ctx, Delay(f)); err != nil {
			return r.interrupted(log, i, err)
		}
		simulated += delay

		if (i+1)%logEvery == 0 {
			log.Info().Msgf("Still revealing... %d/%d digits (current delay: %.3fs)", i+1, total, delay)
		}
	}

	if err := r.store.MarkSucceeded(ctx, jobID, result); err != nil {
		jobsFinishedCounter.WithLabelValues(outcomeFailed).Inc()
		return fmt.Errorf("save result: %w", err)
	}

	jobsFinishedCounter.WithLabelValues(outcomeSucceeded).Inc()
	jobDurationHist.Observe(time.Since(began).Seconds())
	log.Info().
		Str("result", preview(result)).
		Msgf("Calculation complete (total time: %.2fs)", simulated)
	return nil
}

func (r *Runner) fail(ctx context.Context, log zerolog.Logger, jobID string, cause error) error {
	jobsFinishedCounter.WithLabelValues(outcomeFailed).Inc()
	log.Error().Err(cause).Msg("Calculation failed")
	if err := r.store.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		log.Error().Err(err).Msg("Failed to record job failure")
		return errors.Join(cause, err)
	}
	return cause
}

func (r *Runner) interrupted(log zerolog.Logger, position int, err error) error {
	jobsFinishedCounter.WithLabelValues(outcomeInterrupted).Inc()
	log.Warn().Err(err).Int("position", position+1).Msg("Calculation interrupted")
	return err
}

// resumeIndex は保存済み進捗 p より大きい進捗を書き込む最初の位置を返します。
func resumeIndex(p float64, n int) int {
	i := int(math.Round(p * float64(n+1)))
	if i < 0 {
		return 0
	}
	if i > n+1 {
		return n + 1
	}
	return i
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func preview(s string) string {
	const limit = 64
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
