package predictor

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/gridfan/pitwall/internal/platform/logging"
	"github.com/gridfan/pitwall/internal/platform/resilience"
	"github.com/gridfan/pitwall/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

var errPredictorTransient = crerr.New("predictor transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	breaker, circuitEnabled := resilience.NewBreakerFromConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		logger:         logger,
		breaker:        breaker,
		circuitEnabled: circuitEnabled,
	}
}

func (c *Client) Predict(ctx context.Context, input usecase.PredictionInput) (usecase.PredictionResult, error) {
	if err := c.allow(ctx); err != nil {
		return usecase.PredictionResult{}, err
	}
	if c.baseURL == "" {
		return usecase.PredictionResult{}, crerr.New("predictor base url is required")
	}

	body, err := sonic.Marshal(predictRequest{
		Driver:       input.Driver,
		Circuit:      input.Circuit,
		GridPosition: input.GridPosition,
		RecentForm:   input.RecentForm,
		Weather:      input.Weather,
	})
	if err != nil {
		return usecase.PredictionResult{}, crerr.Wrap(err, "marshal predict request")
	}

	fullURL := c.baseURL + "/api/predict"
	c.logger.InfoContext(ctx, "predictor predict request", "url", fullURL, "curl_preview", buildPredictCurlPreview(fullURL, string(body)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, strings.NewReader(string(body)))
	if err != nil {
		return usecase.PredictionResult{}, crerr.Wrap(err, "create predict request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("accept", "application/json")

	var out predictResponse
	if err := c.execute(ctx, req, &out); err != nil {
		return usecase.PredictionResult{}, err
	}

	factors := make([]usecase.PredictionFactor, 0, len(out.ContributingFactors))
	for _, item := range out.ContributingFactors {
		factors = append(factors, usecase.PredictionFactor{
			Factor: item.Factor,
			Impact: item.Impact,
			Icon:   item.Icon,
		})
	}
	return usecase.PredictionResult{
		Driver:              out.Driver,
		Circuit:             out.Circuit,
		PodiumProbability:   out.PodiumProbability,
		PredictedPosition:   out.PredictedPosition,
		Confidence:          out.Confidence,
		ContributingFactors: factors,
	}, nil
}

func (c *Client) ListDrivers(ctx context.Context) ([]string, error) {
	var out driversResponse
	if err := c.doGET(ctx, "/api/drivers", &out); err != nil {
		return nil, err
	}
	return out.Drivers, nil
}

func (c *Client) ListCircuits(ctx context.Context) ([]string, error) {
	var out circuitsResponse
	if err := c.doGET(ctx, "/api/circuits", &out); err != nil {
		return nil, err
	}
	return out.Circuits, nil
}

func (c *Client) doGET(ctx context.Context, path string, target any) error {
	if err := c.allow(ctx); err != nil {
		return err
	}
	if c.baseURL == "" {
		return crerr.New("predictor base url is required")
	}

	fullURL := c.baseURL + path
	out, err, _ := c.flight.Do(path, func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "create request")
		}
		req.Header.Set("accept", "application/json")
		return c.fetch(ctx, req)
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode predictor payload: %w", err)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, req *http.Request, target any) error {
	raw, err := c.fetch(ctx, req)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode predictor payload: %w", err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: send request: %v", errPredictorTransient, err)
		c.recordCircuitResult(callErr)
		c.logger.WarnContext(ctx, "predictor request failed", "url", req.URL.String(), "error", callErr)
		return nil, callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if readErr != nil {
		callErr := fmt.Errorf("%w: read response body: %v", errPredictorTransient, readErr)
		c.recordCircuitResult(callErr)
		return nil, callErr
	}

	if resp.StatusCode/100 != 2 {
		callErr := fmt.Errorf("predictor status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
		switch {
		case isPredictorRetryableStatus(resp.StatusCode):
			callErr = fmt.Errorf("%w: %v", errPredictorTransient, callErr)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			// The model rejected the request itself, e.g. an unknown driver
			// or circuit name.
			callErr = fmt.Errorf("%w: %v", usecase.ErrInvalidInput, callErr)
		}
		c.recordCircuitResult(callErr)
		c.logger.WarnContext(ctx, "predictor request failed", "url", req.URL.String(), "error", callErr)
		return nil, callErr
	}

	c.recordCircuitResult(nil)
	return raw, nil
}

func (c *Client) allow(ctx context.Context) error {
	if !c.circuitEnabled {
		return nil
	}
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "predictor circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: prediction model is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	return nil
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled || c.breaker == nil {
		return
	}
	if err != nil && stderrors.Is(err, errPredictorTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func isPredictorRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func buildPredictCurlPreview(fullURL, body string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(fullURL))
	appendPart("-H")
	appendPart(shellQuote("Content-Type: application/json"))
	appendPart("-d")
	appendPart(shellQuote(truncateForLog(body, 4096)))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
