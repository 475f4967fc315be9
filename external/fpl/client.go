package fpl

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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/fixture"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/gameweek"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/livestat"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/player"
	"github.com/ardhisaif/fpl-live-sync/internal/domain/team"
	"github.com/ardhisaif/fpl-live-sync/internal/platform/logging"
	"github.com/ardhisaif/fpl-live-sync/internal/platform/resilience"
	"github.com/ardhisaif/fpl-live-sync/internal/usecase"
)

const (
	defaultBaseURL        = "https://fantasy.premierleague.com/api"
	defaultTimeout        = 10 * time.Second
	defaultRetryBaseDelay = time.Second
	maxResponseBytes      = 16 << 20
)

var errFPLTransient = crerr.New("fpl transient failure")

// EndpointError reports a non-success HTTP status from a named upstream
// endpoint. Retryable statuses are marked transient before this surfaces.
type EndpointError struct {
	Endpoint   string
	StatusCode int
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("fpl endpoint %s returned status %d", e.Endpoint, e.StatusCode)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	retryBaseDelay time.Duration
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
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	retryBaseDelay := cfg.RetryBaseDelay
	if retryBaseDelay <= 0 {
		retryBaseDelay = defaultRetryBaseDelay
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		retryBaseDelay: retryBaseDelay,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) FetchBootstrap(ctx context.Context) (usecase.UpstreamBootstrap, error) {
	var envelope bootstrapEnvelope
	if err := c.doJSON(ctx, "/bootstrap-static/", nil, &envelope); err != nil {
		return usecase.UpstreamBootstrap{}, fmt.Errorf("fetch bootstrap: %w", err)
	}

	out := usecase.UpstreamBootstrap{
		Teams:     make([]team.Team, 0, len(envelope.Teams)),
		Players:   make([]player.Player, 0, len(envelope.Elements)),
		Gameweeks: make([]gameweek.Gameweek, 0, len(envelope.Events)),
	}
	for _, item := range envelope.Teams {
		out.Teams = append(out.Teams, team.Team{
			ID:        item.ID,
			Name:      strings.TrimSpace(item.Name),
			ShortName: strings.TrimSpace(item.ShortName),
		})
	}
	for _, item := range envelope.Elements {
		name := strings.TrimSpace(strings.TrimSpace(item.FirstName) + " " + strings.TrimSpace(item.SecondName))
		out.Players = append(out.Players, player.Player{
			ID:       item.ID,
			TeamID:   item.Team,
			Name:     name,
			WebName:  strings.TrimSpace(item.WebName),
			Position: player.NormalizePosition(item.ElementType),
		})
	}
	for _, item := range envelope.Events {
		// The upstream only flips finished after bonus settles, so it stands
		// in for the bonus flag until event-status refines it.
		out.Gameweeks = append(out.Gameweeks, gameweek.Gameweek{
			ID:          item.ID,
			BonusAdded:  item.Finished,
			DataChecked: item.DataChecked,
		})
	}
	return out, nil
}

func (c *Client) FetchFixtures(ctx context.Context, gameweekID int) ([]usecase.FixtureSnapshot, error) {
	var query map[string]string
	if gameweekID > 0 {
		query = map[string]string{"event": strconv.Itoa(gameweekID)}
	}

	var rows []fixtureJSON
	if err := c.doJSON(ctx, "/fixtures/", query, &rows); err != nil {
		return nil, fmt.Errorf("fetch fixtures gameweek_id=%d: %w", gameweekID, err)
	}

	out := make([]usecase.FixtureSnapshot, 0, len(rows))
	for _, row := range rows {
		if row.ID <= 0 || row.Event <= 0 {
			continue
		}
		item := usecase.FixtureSnapshot{
			Fixture: fixture.Fixture{
				ID:             row.ID,
				GameweekID:     row.Event,
				HomeTeamID:     row.TeamH,
				AwayTeamID:     row.TeamA,
				HomeScore:      row.TeamHScore,
				AwayScore:      row.TeamAScore,
				Started:        row.Started,
				Finished:       row.Finished,
				MinutesElapsed: row.Minutes,
			},
			Stats: make([]usecase.FixtureStatLine, 0, len(row.Stats)),
		}
		if parsed := parseKickoff(row.KickoffTime); parsed != nil {
			item.Fixture.KickoffAt = *parsed
		}
		for _, stat := range row.Stats {
			item.Stats = append(item.Stats, usecase.FixtureStatLine{
				Identifier: stat.Identifier,
				Home:       mapStatValues(stat.Home),
				Away:       mapStatValues(stat.Away),
			})
		}
		out = append(out, item)
	}
	return out, nil
}

func (c *Client) FetchLiveStats(ctx context.Context, gameweekID int) ([]livestat.PlayerStat, error) {
	if gameweekID <= 0 {
		return nil, fmt.Errorf("gameweek id must be greater than zero")
	}

	path := fmt.Sprintf("/event/%d/live/", gameweekID)
	var envelope liveEnvelope
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch live stats gameweek_id=%d: %w", gameweekID, err)
	}

	out := make([]livestat.PlayerStat, 0, len(envelope.Elements))
	for _, item := range envelope.Elements {
		if item.ID <= 0 {
			continue
		}
		out = append(out, livestat.PlayerStat{
			GameweekID:      gameweekID,
			PlayerID:        item.ID,
			Minutes:         item.Stats.Minutes,
			GoalsScored:     item.Stats.GoalsScored,
			Assists:         item.Stats.Assists,
			CleanSheets:     item.Stats.CleanSheets,
			GoalsConceded:   item.Stats.GoalsConceded,
			OwnGoals:        item.Stats.OwnGoals,
			PenaltiesSaved:  item.Stats.PenaltiesSaved,
			PenaltiesMissed: item.Stats.PenaltiesMissed,
			YellowCards:     item.Stats.YellowCards,
			RedCards:        item.Stats.RedCards,
			Saves:           item.Stats.Saves,
			Bonus:           item.Stats.Bonus,
			BPS:             item.Stats.BPS,
			TotalPoints:     item.Stats.TotalPoints,
		})
	}
	return out, nil
}

// FetchEventStatus folds the upstream's per-day bonus flags into one flag per
// gameweek: bonus counts as added only once every reported day has it.
func (c *Client) FetchEventStatus(ctx context.Context) ([]usecase.GameweekStatus, error) {
	var envelope eventStatusEnvelope
	if err := c.doJSON(ctx, "/event-status/", nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch event status: %w", err)
	}

	bonusByEvent := make(map[int]bool, len(envelope.Status))
	order := make([]int, 0, len(envelope.Status))
	for _, day := range envelope.Status {
		if day.Event <= 0 {
			continue
		}
		added, seen := bonusByEvent[day.Event]
		if !seen {
			order = append(order, day.Event)
			added = true
		}
		bonusByEvent[day.Event] = added && day.BonusAdded
	}

	out := make([]usecase.GameweekStatus, 0, len(order))
	for _, id := range order {
		out = append(out, usecase.GameweekStatus{GameweekID: id, BonusAdded: bonusByEvent[id]})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fpl circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: fpl api is temporarily unavailable", usecase.ErrDependencyUnavailable)
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
	raw, err, _ := c.flight.Do(key, func() ([]byte, error) {
		body, reqErr := c.executeRequest(ctx, path, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return body, reqErr
	})
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode fpl payload %s: %w", path, err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, path, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Mark(fmt.Errorf("send request %s: %w", path, err), errFPLTransient)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = crerr.Mark(fmt.Errorf("read response body %s: %w", path, readErr), errFPLTransient)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				endpointErr := &EndpointError{Endpoint: path, StatusCode: resp.StatusCode}
				if resp.StatusCode == http.StatusTooManyRequests {
					c.logger.WarnContext(ctx, "fpl rate limit hit",
						"endpoint", path,
						"attempt", attempt,
					)
				}
				if !isRetryableStatus(resp.StatusCode) {
					return nil, endpointErr
				}
				lastErr = crerr.Mark(endpointErr, errFPLTransient)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := c.retryBaseDelay << attempt
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("fpl request failed: %s", path)
	}
	c.logger.WarnContext(ctx, "fpl request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errFPLTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func mapStatValues(items []statValueJSON) []usecase.StatElementValue {
	out := make([]usecase.StatElementValue, 0, len(items))
	for _, item := range items {
		if item.Element <= 0 {
			continue
		}
		out = append(out, usecase.StatElementValue{PlayerID: item.Element, Value: item.Value})
	}
	return out
}

func parseKickoff(raw *string) *time.Time {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw))
	if err != nil {
		return nil
	}
	utc := parsed.UTC()
	return &utc
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

type bootstrapEnvelope struct {
	Events   []bootstrapEventJSON   `json:"events"`
	Teams    []bootstrapTeamJSON    `json:"teams"`
	Elements []bootstrapElementJSON `json:"elements"`
}

type bootstrapEventJSON struct {
	ID          int  `json:"id"`
	Finished    bool `json:"finished"`
	DataChecked bool `json:"data_checked"`
}

type bootstrapTeamJSON struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type bootstrapElementJSON struct {
	ID          int    `json:"id"`
	Team        int    `json:"team"`
	ElementType int    `json:"element_type"`
	FirstName   string `json:"first_name"`
	SecondName  string `json:"second_name"`
	WebName     string `json:"web_name"`
}

type fixtureJSON struct {
	ID          int               `json:"id"`
	Event       int               `json:"event"`
	TeamH       int               `json:"team_h"`
	TeamA       int               `json:"team_a"`
	TeamHScore  *int              `json:"team_h_score"`
	TeamAScore  *int              `json:"team_a_score"`
	Started     bool              `json:"started"`
	Finished    bool              `json:"finished"`
	Minutes     int               `json:"minutes"`
	KickoffTime *string           `json:"kickoff_time"`
	Stats       []fixtureStatJSON `json:"stats"`
}

type fixtureStatJSON struct {
	Identifier string          `json:"identifier"`
	Away       []statValueJSON `json:"a"`
	Home       []statValueJSON `json:"h"`
}

type statValueJSON struct {
	Value   int `json:"value"`
	Element int `json:"element"`
}

type liveEnvelope struct {
	Elements []liveElementJSON `json:"elements"`
}

type liveElementJSON struct {
	ID    int           `json:"id"`
	Stats liveStatsJSON `json:"stats"`
}

type liveStatsJSON struct {
	Minutes         int `json:"minutes"`
	GoalsScored     int `json:"goals_scored"`
	Assists         int `json:"assists"`
	CleanSheets     int `json:"clean_sheets"`
	GoalsConceded   int `json:"goals_conceded"`
	OwnGoals        int `json:"own_goals"`
	PenaltiesSaved  int `json:"penalties_saved"`
	PenaltiesMissed int `json:"penalties_missed"`
	YellowCards     int `json:"yellow_cards"`
	RedCards        int `json:"red_cards"`
	Saves           int `json:"saves"`
	Bonus           int `json:"bonus"`
	BPS             int `json:"bps"`
	TotalPoints     int `json:"total_points"`
}

type eventStatusEnvelope struct {
	Status []eventDayStatusJSON `json:"status"`
}

type eventDayStatusJSON struct {
	Event      int    `json:"event"`
	Date       string `json:"date"`
	BonusAdded bool   `json:"bonus_added"`
}
