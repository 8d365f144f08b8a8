package jobs

import "time"

// State はジョブレコードの状態を表します。
// レコードが存在しない状態（Absent）は nil の *Record で表現します。
type State string

const (
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// IsTerminal は終端状態（以後の書き込み不可）かどうかを返します。
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Record はジョブの現在状態を表します。
type Record struct {
	JobID     string    `json:"jobId"`
	Digits    int       `json:"digits,omitempty"`
	State     State     `json:"state"`
	Progress  *float64  `json:"progress,omitempty"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProgressValue は進捗値を返します。値が無い場合は 0 です。
func (r *Record) ProgressValue() float64 {
	if r == nil || r.Progress == nil {
		return 0
	}
	return *r.Progress
}

// PublicState はクライアントに返す状態です。
type PublicState string

const (
	PublicStateProgress PublicState = "PROGRESS"
	PublicStateFinished PublicState = "FINISHED"
)

// ProgressView は進捗照会のレスポンスです。
type ProgressView struct {
	State    PublicState `json:"state"`
	Progress float64     `json:"progress"`
	Result   *string     `json:"result"`
}

// Submission は投入結果です。
type Submission struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}
