package jobs

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmissionFailed はキュー投入に失敗したことを表します。
	ErrSubmissionFailed = errors.New("submission failed")
	// ErrNotFound はレコードが存在しないことを表します（未投入と未開始は区別しません）。
	ErrNotFound = errors.New("job not found")
	// ErrExecutionFailed はジョブが失敗状態で終了したことを表します。
	ErrExecutionFailed = errors.New("job execution failed")
	// ErrBackendUnavailable は結果ストアに到達できないことを表します。
	ErrBackendUnavailable = errors.New("result backend unavailable")

	// ErrTerminal は終端状態のレコードへの書き込みを拒否したことを表します。
	ErrTerminal = errors.New("job record is terminal")
	// ErrProgressRegression は進捗を減少させる書き込みを拒否したことを表します。
	ErrProgressRegression = errors.New("job progress must not decrease")
)

// ExecutionError はワーカーが記録した失敗理由を保持します。
type ExecutionError struct {
	JobID string
	Cause string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Cause)
}

// Is は errors.Is(err, ErrExecutionFailed) を成立させます。
func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecutionFailed
}
