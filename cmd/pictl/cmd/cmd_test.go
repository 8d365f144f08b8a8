package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPictl(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	root := RootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--server", server}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestSubmitPrintsJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 12, body["n"])
		_, _ = w.Write([]byte(`{"job_id":"job-1","message":"Pi calculation started for 12 digits"}`))
	}))
	defer srv.Close()

	out, err := runPictl(t, srv.URL, "submit", "12")
	require.NoError(t, err)
	assert.Equal(t, "job-1\n", out)
}

func TestSubmitRejectsNonInteger(t *testing.T) {
	_, err := runPictl(t, "http://localhost:0", "submit", "many")
	assert.Error(t, err)
}

func TestStatusShowsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"JOB_NOT_FOUND","message":"Task not found"}`))
	}))
	defer srv.Close()

	_, err := runPictl(t, srv.URL, "status", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Task not found")
}

func TestWatchUntilFinished(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			_, _ = w.Write([]byte(`{"state":"PROGRESS","progress":0.5,"result":null}`))
		case 2:
			_, _ = w.Write([]byte(`{"state":"PROGRESS","progress":0.5,"result":null}`))
		default:
			_, _ = w.Write([]byte(`{"state":"FINISHED","progress":1,"result":"3.14"}`))
		}
	}))
	defer srv.Close()

	out, err := runPictl(t, srv.URL, "watch", "job-1", "--interval", "1ms")
	require.NoError(t, err)
	assert.Equal(t, "job-1\tPROGRESS\t 50.0%\njob-1\tFINISHED\t100.0%\n3.14\n", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWatchRejectsBadInterval(t *testing.T) {
	_, err := runPictl(t, "http://localhost:0", "watch", "job-1", "--interval", "0s")
	assert.Error(t, err)
}
