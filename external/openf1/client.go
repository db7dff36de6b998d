package openf1

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/gridfan/pitwall/internal/domain/driver"
	"github.com/gridfan/pitwall/internal/domain/session"
	"github.com/gridfan/pitwall/internal/platform/logging"
	"github.com/gridfan/pitwall/internal/platform/resilience"
	"github.com/gridfan/pitwall/internal/usecase"
)

const defaultBaseURL = "https://api.openf1.org/v1"

var errOpenF1Transient = crerr.New("openf1 transient failure")

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
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breaker, circuitEnabled := resilience.NewBreakerFromConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		logger:         logger,
		breaker:        breaker,
		circuitEnabled: circuitEnabled,
	}
}

// FetchRaceSessions returns every race session of the given year, in the order
// the provider reports them (chronological in practice).
func (c *Client) FetchRaceSessions(ctx context.Context, year int) ([]session.Session, error) {
	if year <= 0 {
		return nil, fmt.Errorf("year must be greater than zero")
	}

	query := map[string]string{
		"year":         strconv.Itoa(year),
		"session_type": session.TypeRace,
	}

	var items []sessionItem
	if err := c.doJSON(ctx, "/sessions", query, &items); err != nil {
		return nil, fmt.Errorf("fetch race sessions year=%d: %w", year, err)
	}

	out := make([]session.Session, 0, len(items))
	for _, item := range items {
		if item.SessionKey <= 0 {
			continue
		}
		out = append(out, session.Session{
			Key:              item.SessionKey,
			MeetingKey:       item.MeetingKey,
			Year:             item.Year,
			Location:         strings.TrimSpace(item.Location),
			CountryName:      strings.TrimSpace(item.CountryName),
			CircuitShortName: strings.TrimSpace(item.CircuitShortName),
			Type:             strings.TrimSpace(item.SessionType),
			Name:             strings.TrimSpace(item.SessionName),
			DateStart:        parseProviderDateTime(item.DateStart),
		})
	}
	return out, nil
}

// FetchParticipants returns the driver roster entered in one session.
func (c *Client) FetchParticipants(ctx context.Context, sessionKey int64) ([]driver.Participant, error) {
	if sessionKey <= 0 {
		return nil, fmt.Errorf("session key must be greater than zero")
	}

	query := map[string]string{
		"session_key": strconv.FormatInt(sessionKey, 10),
	}

	var items []driverItem
	if err := c.doJSON(ctx, "/drivers", query, &items); err != nil {
		return nil, fmt.Errorf("fetch drivers session_key=%d: %w", sessionKey, err)
	}

	out := make([]driver.Participant, 0, len(items))
	for _, item := range items {
		if item.DriverNumber <= 0 {
			continue
		}
		out = append(out, driver.Participant{
			Number:      item.DriverNumber,
			FullName:    strings.TrimSpace(item.FullName),
			TeamName:    strings.TrimSpace(item.TeamName),
			TeamColour:  strings.TrimSpace(item.TeamColour),
			HeadshotURL: strings.TrimSpace(item.HeadshotURL),
		})
	}
	return out, nil
}

// FetchChampionship returns the cumulative championship table as of one session.
func (c *Client) FetchChampionship(ctx context.Context, sessionKey int64) ([]driver.ChampionshipEntry, error) {
	if sessionKey <= 0 {
		return nil, fmt.Errorf("session key must be greater than zero")
	}

	query := map[string]string{
		"session_key": strconv.FormatInt(sessionKey, 10),
	}

	var items []championshipItem
	if err := c.doJSON(ctx, "/championship_drivers", query, &items); err != nil {
		return nil, fmt.Errorf("fetch championship session_key=%d: %w", sessionKey, err)
	}

	out := make([]driver.ChampionshipEntry, 0, len(items))
	for _, item := range items {
		if item.DriverNumber <= 0 {
			continue
		}
		out = append(out, driver.ChampionshipEntry{
			Number:   item.DriverNumber,
			Position: item.PositionCurrent,
			Points:   item.PointsCurrent,
		})
	}
	return out, nil
}

// FetchPositions returns one driver's position time series for a session. The
// provider publishes every change of track position; callers wanting the final
// classification take the last record.
func (c *Client) FetchPositions(ctx context.Context, sessionKey int64, driverNumber int) ([]driver.PositionRecord, error) {
	if sessionKey <= 0 {
		return nil, fmt.Errorf("session key must be greater than zero")
	}
	if driverNumber <= 0 {
		return nil, fmt.Errorf("driver number must be greater than zero")
	}

	query := map[string]string{
		"session_key":   strconv.FormatInt(sessionKey, 10),
		"driver_number": strconv.Itoa(driverNumber),
	}

	var items []positionItem
	if err := c.doJSON(ctx, "/position", query, &items); err != nil {
		return nil, fmt.Errorf("fetch positions session_key=%d driver_number=%d: %w", sessionKey, driverNumber, err)
	}

	out := make([]driver.PositionRecord, 0, len(items))
	for _, item := range items {
		if item.Position <= 0 {
			continue
		}
		out = append(out, driver.PositionRecord{
			Position: item.Position,
			Date:     parseProviderDateTime(item.Date),
		})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "openf1 circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: race data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isOpenF1CircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		reqErr := fmt.Errorf("%w: send request: %v", errOpenF1Transient, err)
		c.logger.WarnContext(ctx, "openf1 request failed", "url", fullURL, "error", reqErr)
		return nil, reqErr
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errOpenF1Transient, readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
		if isTransientStatus(resp.StatusCode) {
			reqErr = fmt.Errorf("%w: %v", errOpenF1Transient, reqErr)
		}
		c.logger.WarnContext(ctx, "openf1 request failed", "url", fullURL, "error", reqErr)
		return nil, reqErr
	}
	return raw, nil
}

func isOpenF1CircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errOpenF1Transient) || stderrors.Is(err, context.DeadlineExceeded)
}

func isTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	value := strings.TrimSpace(string(raw))
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}

func parseProviderDateTime(raw string) time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
