package store

import (
	"context"
	stdjson "encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
	"github.com/tolujimoh/flowdrift/internal/core/ports"
	apperrors "github.com/tolujimoh/flowdrift/internal/errors"
)

type testLogger struct{}

func (testLogger) Debugf(ctx context.Context, format string, args ...any)            {}
func (testLogger) Infof(ctx context.Context, format string, args ...any)             {}
func (testLogger) Warnf(ctx context.Context, format string, args ...any)             {}
func (testLogger) Errorf(ctx context.Context, err error, format string, args ...any) {}
func (l testLogger) WithFields(fields map[string]any) ports.Logger                   { return l }

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:  baseURL,
		Token:    "test-token",
		CacheTTL: time.Minute,
	}, testLogger{})
	require.NoError(t, err)
	// Tests never need real backoff sleeps.
	client.policy.Sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, stdjson.NewEncoder(w).Encode(v))
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{}, testLogger{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigValidation, apperrors.GetCode(err))
}

func TestFetchEnvironmentRecords_ResolvesLatestSnapshot(t *testing.T) {
	var fetchedFile string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/v1/environments/qa/snapshots":
			writeJSON(t, w, map[string]any{"snapshots": []map[string]any{
				{"filename": "qa-old.json", "savedAt": "2025-05-01T09:00:00Z"},
				{"filename": "qa-new.json", "savedAt": "2025-05-02T09:00:00Z"},
			}})
		case "/api/v1/environments/qa/snapshots/qa-new.json":
			fetchedFile = "qa-new.json"
			writeJSON(t, w, map[string]any{"records": []map[string]any{
				{"artifactId": "flow-a", "parameterKey": "endpoint", "parameterValue": "https://qa.example"},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	records, err := client.FetchEnvironmentRecords(context.Background(), domain.EnvQA)
	require.NoError(t, err)

	assert.Equal(t, "qa-new.json", fetchedFile)
	require.Len(t, records, 1)
	assert.Equal(t, "flow-a", records[0].ArtifactID)
	assert.Equal(t, domain.EnvQA, records[0].Environment)
}

func TestFetchEnvironmentRecords_EmptyEnvironment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"snapshots": []map[string]any{}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	records, err := client.FetchEnvironmentRecords(context.Background(), domain.EnvDev)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchEnvironmentRecords_SecondCallServedFromCache(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/api/v1/environments/qa/snapshots":
			writeJSON(t, w, map[string]any{"snapshots": []map[string]any{
				{"filename": "qa.json", "savedAt": "2025-05-01T09:00:00Z"},
			}})
		default:
			writeJSON(t, w, map[string]any{"records": []map[string]any{
				{"artifactId": "flow-a", "parameterKey": "endpoint", "parameterValue": "x"},
			}})
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.FetchEnvironmentRecords(context.Background(), domain.EnvQA)
	require.NoError(t, err)
	assert.Equal(t, int64(2), requests.Load()) // list + fetch

	_, err = client.FetchEnvironmentRecords(context.Background(), domain.EnvQA)
	require.NoError(t, err)
	assert.Equal(t, int64(2), requests.Load()) // no new requests
}

func TestFetchEnvironmentRecords_RetriesTransientFailure(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/environments/qa/snapshots" {
			if attempts.Add(1) == 1 {
				http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
				return
			}
			writeJSON(t, w, map[string]any{"snapshots": []map[string]any{}})
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.FetchEnvironmentRecords(context.Background(), domain.EnvQA)
	require.NoError(t, err)
	assert.Equal(t, int64(2), attempts.Load())
}

func TestFetchEnvironmentRecords_SnapshotNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/environments/qa/snapshots" {
			writeJSON(t, w, map[string]any{"snapshots": []map[string]any{
				{"filename": "gone.json", "savedAt": "2025-05-01T09:00:00Z"},
			}})
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.FetchEnvironmentRecords(context.Background(), domain.EnvQA)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSnapshotNotFound, apperrors.GetCode(err))
}

func TestFetchEnvironmentPair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/environments/qa/snapshots", "/api/v1/environments/production/snapshots":
			env := "qa"
			if r.URL.Path == "/api/v1/environments/production/snapshots" {
				env = "production"
			}
			writeJSON(t, w, map[string]any{"snapshots": []map[string]any{
				{"filename": env + ".json", "savedAt": "2025-05-01T09:00:00Z"},
			}})
		case "/api/v1/environments/qa/snapshots/qa.json":
			writeJSON(t, w, map[string]any{"records": []map[string]any{
				{"artifactId": "flow-a", "parameterKey": "endpoint", "parameterValue": "qa-value"},
			}})
		case "/api/v1/environments/production/snapshots/production.json":
			writeJSON(t, w, map[string]any{"records": []map[string]any{
				{"artifactId": "flow-a", "parameterKey": "endpoint", "parameterValue": "prod-value"},
				{"artifactId": "flow-a", "parameterKey": "timeout", "parameterValue": "30"},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	source, target, err := client.FetchEnvironmentPair(context.Background(), domain.EnvQA, domain.EnvProduction)
	require.NoError(t, err)
	assert.Len(t, source, 1)
	assert.Len(t, target, 2)
}

func TestPersistRecords_WritesSnapshotAndInvalidatesCache(t *testing.T) {
	var posted struct {
		Filename string                       `json:"filename"`
		Records  []domain.ConfigurationRecord `json:"records"`
	}
	var listCalls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			require.NoError(t, stdjson.NewDecoder(r.Body).Decode(&posted))
			w.WriteHeader(http.StatusCreated)
			return
		}
		listCalls.Add(1)
		writeJSON(t, w, map[string]any{"snapshots": []map[string]any{}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	// Prime the cache so invalidation is observable.
	_, err := client.FetchEnvironmentRecords(context.Background(), domain.EnvDev)
	require.NoError(t, err)
	require.Equal(t, int64(1), listCalls.Load())

	records := []domain.ConfigurationRecord{{
		Environment:    domain.EnvDev,
		ArtifactID:     "flow-a",
		ParameterKey:   "endpoint",
		ParameterValue: "https://dev.example",
		SavedAt:        time.Now().UTC(),
	}}
	result, err := client.PersistRecords(context.Background(), domain.EnvDev, records)
	require.NoError(t, err)

	assert.Equal(t, 1, result.RecordCount)
	assert.Regexp(t, regexp.MustCompile(`^dev-\d{8}T\d{6}Z-[0-9a-f]{8}\.json$`), result.Filename)
	assert.Equal(t, result.Filename, posted.Filename)
	require.Len(t, posted.Records, 1)
	assert.Equal(t, "flow-a", posted.Records[0].ArtifactID)

	// A read after persist goes back to the server.
	_, err = client.FetchEnvironmentRecords(context.Background(), domain.EnvDev)
	require.NoError(t, err)
	assert.Equal(t, int64(2), listCalls.Load())
}

func TestPersistRecords_RejectsIntegrityViolations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the store for invalid records")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	records := []domain.ConfigurationRecord{
		{Environment: domain.EnvDev, ArtifactID: "flow-a", ParameterKey: "endpoint", ParameterValue: "x"},
		{Environment: domain.EnvDev, ArtifactID: "flow-a", ParameterKey: "endpoint", ParameterValue: "y"},
	}

	_, err := client.PersistRecords(context.Background(), domain.EnvDev, records)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeIntegrityViolated, apperrors.GetCode(err))
	msg, _, found := apperrors.GetUserFacingMessage(err)
	assert.True(t, found)
	assert.Contains(t, msg, "integrity")
}

func TestPersistRecords_ServerErrorSurfacesAsWriteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	records := []domain.ConfigurationRecord{{
		Environment:    domain.EnvDev,
		ArtifactID:     "flow-a",
		ParameterKey:   "endpoint",
		ParameterValue: "x",
	}}

	_, err := client.PersistRecords(context.Background(), domain.EnvDev, records)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeStoreWriteError, apperrors.GetCode(err))
}

func TestDo_UsesRequestContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"snapshots": []map[string]any{}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchEnvironmentRecords(ctx, domain.EnvQA)
	require.Error(t, err)
}

func TestPersistRecords_FilenameEmbedsEnvironment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	for _, env := range []domain.Environment{domain.EnvDev, domain.EnvQA, domain.EnvProduction} {
		result, err := client.PersistRecords(context.Background(), env, []domain.ConfigurationRecord{{
			Environment:    env,
			ArtifactID:     "flow-a",
			ParameterKey:   "endpoint",
			ParameterValue: "x",
		}})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%s-", env), result.Filename[:len(env)+1])
	}
}
