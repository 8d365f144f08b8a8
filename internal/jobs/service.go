package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service はジョブ投入（Submission Gateway）と進捗照会（Progress Query Gateway）を提供します。
// 状態は持たず、Runner との連携はすべて ResultStore を介して行います。
type Service struct {
	enqueuer Enqueuer
	store    ResultStore
	newID    func() string
	logger   zerolog.Logger
}

// NewService は Service を作成します。
func NewService(enqueuer Enqueuer, store ResultStore, logger zerolog.Logger) *Service {
	return &Service{
		enqueuer: enqueuer,
		store:    store,
		newID:    uuid.NewString,
		logger:   logger,
	}
}

// Submit は新しいジョブIDを払い出してキューに投入し、実行開始を待たずに返します。
// 投入に失敗した場合は ErrSubmissionFailed を返し、レコードは作成されません。
func (s *Service) Submit(ctx context.Context, digits int) (*Submission, error) {
	jobID := s.newID()
	s.logger.Info().Int("digits", digits).Msgf("Received request to calculate Pi with %d digits", digits)

	if err := s.enqueuer.Enqueue(ctx, Payload{JobID: jobID, Digits: digits}); err != nil {
		jobsSubmitFailedCounter.Inc()
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to start task")
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	jobsSubmittedCounter.Inc()
	s.logger.Info().Str("job_id", jobID).Msgf("Task %s started for %d digits", jobID, digits)
	return &Submission{
		JobID:   jobID,
		Message: fmt.Sprintf("Pi calculation started for %d digits", digits),
	}, nil
}

// Progress はレコードを読み出し、公開用の進捗ビューに変換します。
//
// 投入直後は最初の進捗が書き込まれるまで ErrNotFound になり得ます。
// 未投入のIDとの区別はしません。
func (s *Service) Progress(ctx context.Context, jobID string) (*ProgressView, error) {
	log := s.logger.With().Str("job_id", jobID).Logger()

	record, err := s.store.Get(ctx, jobID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check progress")
		if errors.Is(err, ErrBackendUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	if record == nil {
		log.Warn().Msg("Task not found")
		return nil, ErrNotFound
	}

	switch record.State {
	case StateFailed:
		cause := record.Error
		if cause == "" {
			cause = "Unknown error"
		}
		log.Error().Str("cause", cause).Msg("Task failed")
		return nil, &ExecutionError{JobID: jobID, Cause: cause}
	case StateSucceeded:
		result := record.Result
		return &ProgressView{
			State:    PublicStateFinished,
			Progress: 1.0,
			Result:   &result,
		}, nil
	default:
		return &ProgressView{
			State:    PublicStateProgress,
			Progress: record.ProgressValue(),
			Result:   nil,
		}, nil
	}
}
