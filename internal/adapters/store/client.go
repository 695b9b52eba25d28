// Package store implements the configuration record store client. An
// environment's configuration history is a log of snapshot files; reads
// resolve the latest snapshot, writes append a new one.
package store

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
	"github.com/tolujimoh/flowdrift/internal/core/ports"
	"github.com/tolujimoh/flowdrift/internal/errors"
	"github.com/tolujimoh/flowdrift/internal/reconcile"
	"github.com/tolujimoh/flowdrift/pkg/retry"
	"github.com/tolujimoh/flowdrift/pkg/ttlcache"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	BaseURL        string        `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	Token          string        `yaml:"token" mapstructure:"token"`
	CacheTTL       time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts"`
}

type Client struct {
	http    *http.Client
	baseURL string
	token   string
	cache   *ttlcache.Cache[[]domain.ConfigurationRecord]
	policy  retry.Policy
	logger  ports.Logger
}

var _ ports.StoreClient = (*Client)(nil)

func NewClient(cfg Config, logger ports.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.CodeConfigValidation, "store client requires a base URL")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	policy := retry.DefaultPolicy()
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		cache:   ttlcache.New[[]domain.ConfigurationRecord](cfg.CacheTTL),
		policy:  policy,
		logger:  logger.WithFields(map[string]any{"component": "store_client"}),
	}, nil
}

type snapshotInfo struct {
	Filename string    `json:"filename"`
	SavedAt  time.Time `json:"savedAt"`
}

// FetchEnvironmentRecords returns the records of the environment's latest
// snapshot, reading through a TTL cache. An environment with no snapshots
// yields an empty slice.
func (c *Client) FetchEnvironmentRecords(ctx context.Context, env domain.Environment) ([]domain.ConfigurationRecord, error) {
	cacheKey := "records:" + string(env)
	if cached, ok := c.cache.Get(cacheKey); ok {
		c.logger.Debugf(ctx, "Cache hit for environment %s (%d records)", env, len(cached))
		return cached, nil
	}

	snapshots, err := c.listSnapshots(ctx, env)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		c.logger.Debugf(ctx, "No snapshots recorded for environment %s", env)
		return []domain.ConfigurationRecord{}, nil
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].SavedAt.After(snapshots[j].SavedAt)
	})
	latest := snapshots[0]
	c.logger.Debugf(ctx, "Resolved latest snapshot for %s: %s (saved %s)", env, latest.Filename, latest.SavedAt)

	records, err := c.fetchSnapshot(ctx, env, latest.Filename)
	if err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, records, 0)
	return records, nil
}

// FetchEnvironmentPair fetches two environments concurrently; reconciliation
// always needs both sides.
func (c *Client) FetchEnvironmentPair(ctx context.Context, source, target domain.Environment) ([]domain.ConfigurationRecord, []domain.ConfigurationRecord, error) {
	var sourceRecords, targetRecords []domain.ConfigurationRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sourceRecords, err = c.FetchEnvironmentRecords(gctx, source)
		return err
	})
	g.Go(func() error {
		var err error
		targetRecords, err = c.FetchEnvironmentRecords(gctx, target)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return sourceRecords, targetRecords, nil
}

// PersistRecords appends a new snapshot for the environment after an
// integrity pre-check, then invalidates the read cache.
func (c *Client) PersistRecords(ctx context.Context, env domain.Environment, records []domain.ConfigurationRecord) (domain.PersistResult, error) {
	if valid, issues := reconcile.ValidateIntegrity(records); !valid {
		return domain.PersistResult{}, errors.NewUserFacing(errors.CodeIntegrityViolated,
			fmt.Sprintf("records failed integrity checks: %s", strings.Join(issues, "; ")),
			"Fix the reported records and retry the import.")
	}

	filename := fmt.Sprintf("%s-%s-%s.json", env, time.Now().UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
	payload := struct {
		Filename string                       `json:"filename"`
		Records  []domain.ConfigurationRecord `json:"records"`
	}{Filename: filename, Records: records}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.PersistResult{}, errors.Wrap(err, errors.CodeInternal, "encoding snapshot payload")
	}

	url := fmt.Sprintf("%s/api/v1/environments/%s/snapshots", c.baseURL, env)
	_, err = retry.DoValue(ctx, c.policy, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, http.MethodPost, url, body)
	})
	if err != nil {
		return domain.PersistResult{}, errors.Wrap(err, errors.CodeStoreWriteError,
			fmt.Sprintf("persisting %d records to environment %s", len(records), env))
	}

	c.cache.Delete("records:" + string(env))
	c.logger.Infof(ctx, "Persisted %d records to %s as %s", len(records), env, filename)

	return domain.PersistResult{Filename: filename, RecordCount: len(records)}, nil
}

func (c *Client) listSnapshots(ctx context.Context, env domain.Environment) ([]snapshotInfo, error) {
	url := fmt.Sprintf("%s/api/v1/environments/%s/snapshots", c.baseURL, env)
	body, err := retry.DoValue(ctx, c.policy, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStoreReadError,
			fmt.Sprintf("listing snapshots for environment %s", env))
	}

	var response struct {
		Snapshots []snapshotInfo `json:"snapshots"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, errors.CodeStoreParseError,
			fmt.Sprintf("decoding snapshot list for environment %s", env))
	}
	return response.Snapshots, nil
}

func (c *Client) fetchSnapshot(ctx context.Context, env domain.Environment, filename string) ([]domain.ConfigurationRecord, error) {
	url := fmt.Sprintf("%s/api/v1/environments/%s/snapshots/%s", c.baseURL, env, filename)
	body, err := retry.DoValue(ctx, c.policy, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		var statusErr *retry.StatusError
		if stderrors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, errors.Wrap(err, errors.CodeSnapshotNotFound,
				fmt.Sprintf("snapshot %s not found in environment %s", filename, env))
		}
		return nil, errors.Wrap(err, errors.CodeStoreReadError,
			fmt.Sprintf("fetching snapshot %s for environment %s", filename, env))
	}

	var response struct {
		Records []map[string]any `json:"records"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, errors.CodeStoreParseError,
			fmt.Sprintf("decoding snapshot %s", filename))
	}

	records := make([]domain.ConfigurationRecord, 0, len(response.Records))
	for i, raw := range response.Records {
		rec, err := normalizeRecord(raw, env)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStoreParseError,
				fmt.Sprintf("normalizing record %d of snapshot %s", i, filename))
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &retry.StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return data, nil
}
