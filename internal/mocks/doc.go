// Package mocks はテスト用の GoMock 実装をまとめたものです。
package mocks

//go:generate mockgen -destination=mock_jobs.go -package=mocks github.com/axelbunt54/calculate-pi-app/internal/jobs Enqueuer
//go:generate mockgen -destination=mock_api.go -package=mocks github.com/axelbunt54/calculate-pi-app/internal/api JobService
