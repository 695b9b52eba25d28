// Package compliance implements the client for the remote design-guideline
// validation service. Executions are long-running and the service offers no
// cancellation endpoint; callers poll for results.
package compliance

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/tolujimoh/flowdrift/internal/core/domain"
	"github.com/tolujimoh/flowdrift/internal/core/ports"
	"github.com/tolujimoh/flowdrift/internal/errors"
	"github.com/tolujimoh/flowdrift/pkg/retry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	BaseURL        string        `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	Token          string        `yaml:"token" mapstructure:"token"`
	RateLimitRPS   int           `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts"`
}

type Client struct {
	http    *http.Client
	baseURL string
	token   string
	limiter ports.RateLimiter
	policy  retry.Policy
	logger  ports.Logger
}

var _ ports.ComplianceService = (*Client)(nil)

func NewClient(cfg Config, logger ports.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.CodeConfigValidation, "compliance client requires a base URL")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	policy := retry.DefaultPolicy()
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	clog := logger.WithFields(map[string]any{"component": "compliance_client"})

	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		limiter: NewRateLimiter(cfg.RateLimitRPS, clog),
		policy:  policy,
		logger:  clog,
	}, nil
}

// Trigger starts a remote compliance run and returns its execution id.
func (c *Client) Trigger(ctx context.Context, artifactID, version string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/artifacts/%s/versions/%s/compliance-runs",
		c.baseURL, url.PathEscape(artifactID), url.PathEscape(version))

	body, err := retry.DoValue(ctx, c.policy, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, http.MethodPost, endpoint, []byte(`{}`))
	})
	if err != nil {
		return "", classify(err, "trigger", artifactID, ctx)
	}

	var response struct {
		ExecutionID string `json:"executionId"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", errors.Wrap(err, errors.CodeComplianceAPIError,
			fmt.Sprintf("decoding trigger response for artifact %s", artifactID))
	}
	if response.ExecutionID == "" {
		return "", errors.Newf(errors.CodeComplianceAPIError,
			"trigger for artifact %s returned no execution id", artifactID)
	}

	c.logger.Debugf(ctx, "Triggered compliance run %s for %s:%s", response.ExecutionID, artifactID, version)
	return response.ExecutionID, nil
}

// FetchResults returns the guideline results for an execution. With an empty
// executionID the service returns the most recent execution, which is how
// callers probe for existing history. An empty guideline list means the run
// has not produced results yet.
func (c *Client) FetchResults(ctx context.Context, artifactID, version, executionID string) (domain.ComplianceReport, error) {
	endpoint := fmt.Sprintf("%s/api/v1/artifacts/%s/versions/%s/compliance-runs/latest",
		c.baseURL, url.PathEscape(artifactID), url.PathEscape(version))
	if executionID != "" {
		endpoint += "?executionId=" + url.QueryEscape(executionID)
	}

	body, err := retry.DoValue(ctx, c.policy, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return domain.ComplianceReport{}, classify(err, "fetch results", artifactID, ctx)
	}

	var payload rawReport
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.ComplianceReport{}, errors.Wrap(err, errors.CodeComplianceAPIError,
			fmt.Sprintf("decoding results for artifact %s", artifactID))
	}

	return payload.normalize(), nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
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
