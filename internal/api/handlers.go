// Package api は HTTP 境界（ルーティング、入力検証、エラー変換）を提供します。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/axelbunt54/calculate-pi-app/internal/jobs"
)

// JobService はジョブ投入と進捗照会を提供するサービスが実装します。
type JobService interface {
	Submit(ctx context.Context, digits int) (*jobs.Submission, error)
	Progress(ctx context.Context, jobID string) (*jobs.ProgressView, error)
}

type calculateRequest struct {
	N *digitsParam `json:"n"`
}

type progressRequest struct {
	JobID *string `json:"job_id"`
}

// digitsParam は整数、小数部が 0 の数値（1.0, 1e2）、
// または整数として解釈できる文字列を受け付けます。
type digitsParam int

func (d *digitsParam) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case json.Number:
		n, err := integralNumber(v)
		if err != nil {
			return err
		}
		*d = digitsParam(n)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errNotInteger
		}
		*d = digitsParam(n)
	default:
		return errNotInteger
	}
	return nil
}

var errNotInteger = errors.New("n must be an integer")

func integralNumber(num json.Number) (int, error) {
	if n, err := strconv.Atoi(num.String()); err == nil {
		return n, nil
	}
	f, _, err := big.ParseFloat(num.String(), 10, 256, big.ToNearestEven)
	if err != nil || !f.IsInt() {
		return 0, errNotInteger
	}
	i, acc := f.Int64()
	if acc != big.Exact || i > math.MaxInt || i < math.MinInt {
		return 0, errNotInteger
	}
	return int(i), nil
}

// CalculateHandler は POST /calculate_pi のハンドラーを返します。
func CalculateHandler(svc JobService, maxDigits int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req calculateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if req.N == nil {
			respondValidation(c, "n is required")
			return
		}
		n := int(*req.N)
		if n < 1 {
			respondValidation(c, "n must be greater than or equal to 1")
			return
		}
		if maxDigits > 0 && n > maxDigits {
			respondValidation(c, fmt.Sprintf("n must be less than or equal to %d", maxDigits))
			return
		}

		sub, err := svc.Submit(c.Request.Context(), n)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, sub)
	}
}

// CheckProgressHandler は POST /check_progress のハンドラーを返します。
func CheckProgressHandler(svc JobService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req progressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		// 空文字列は有効なIDとしてそのまま照会する
		if req.JobID == nil {
			respondValidation(c, "job_id is required")
			return
		}
		respondProgress(c, svc, *req.JobID)
	}
}

// JobStatusHandler は GET /jobs/:id のハンドラーを返します。
func JobStatusHandler(svc JobService) gin.HandlerFunc {
	return func(c *gin.Context) {
		respondProgress(c, svc, c.Param("id"))
	}
}

func respondProgress(c *gin.Context, svc JobService, jobID string) {
	view, err := svc.Progress(c.Request.Context(), jobID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func respondValidation(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"code":    "VALIDATION_ERROR",
		"message": message,
	})
}

func respondWithError(c *gin.Context, err error) {
	var execErr *jobs.ExecutionError
	switch {
	case errors.Is(err, jobs.ErrSubmissionFailed):
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SUBMISSION_FAILED",
			"message": "Failed to start calculation: " + causeOf(err, jobs.ErrSubmissionFailed),
		})
	case errors.Is(err, jobs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "JOB_NOT_FOUND",
			"message": "Task not found",
		})
	case errors.As(err, &execErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "EXECUTION_FAILED",
			"message": "Task execution failed: " + execErr.Cause,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Failed to check task progress: " + causeOf(err, jobs.ErrBackendUnavailable),
		})
	}
}

// causeOf はセンチネルの接頭辞を除いたエラーメッセージを返します。
func causeOf(err error, sentinel error) string {
	msg := err.Error()
	return strings.TrimPrefix(msg, sentinel.Error()+": ")
}
