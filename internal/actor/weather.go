package actor

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stagehand/internal/config"
	"github.com/xkilldash9x/stagehand/internal/network"
	"github.com/xkilldash9x/stagehand/internal/weather"
)

// Fetcher performs a GET and returns the fully read response.
// *network.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*network.Response, error)
}

var _ Fetcher = (*network.Client)(nil)

// WeatherActor calls the weather API. It has no browser.
type WeatherActor struct {
	*Actor

	baseURL string
	apiKey  string
	client  Fetcher
}

// NewWeatherActor builds a weather actor. The API key is process wide and
// comes from the weather section of cfg.
func NewWeatherActor(name string, cfg config.Interface, client Fetcher, opts Options) (*WeatherActor, error) {
	if client == nil {
		return nil, fmt.Errorf("weather actor %q: http client is required", name)
	}
	if opts.SeedOverride == "" {
		opts.SeedOverride = cfg.Chance().Seed
	}
	a, err := New(name, opts)
	if err != nil {
		return nil, err
	}
	if cfg.Weather().APIKey == "" {
		a.logger.Warn("Weather API key is empty; requests will be rejected upstream.")
	}
	return &WeatherActor{
		Actor:   a,
		baseURL: cfg.Targets().WeatherURL,
		apiKey:  cfg.Weather().APIKey,
		client:  client,
	}, nil
}

// GetsCurrentWeatherWithPostcode requests current conditions for a postcode.
func (w *WeatherActor) GetsCurrentWeatherWithPostcode(ctx context.Context, postcode string) (*network.Response, error) {
	return w.GetsCurrentWeather(ctx, weather.Postcode(postcode))
}

// GetsCurrentWeatherWithCoordinates requests current conditions for a location.
func (w *WeatherActor) GetsCurrentWeatherWithCoordinates(ctx context.Context, lat, lon float64) (*network.Response, error) {
	return w.GetsCurrentWeather(ctx, weather.Coordinates(lat, lon))
}

// GetsCurrentWeather requests current conditions for whatever location
// parameters opts carries. The response is returned whatever its status.
func (w *WeatherActor) GetsCurrentWeather(ctx context.Context, opts weather.QueryOptions) (*network.Response, error) {
	target, err := weather.CurrentURL(w.baseURL, opts, w.apiKey)
	if err != nil {
		return nil, fmt.Errorf("actor %q: %w", w.name, err)
	}
	resp, err := w.client.Fetch(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("actor %q: current weather: %w", w.name, err)
	}
	w.logger.Debug("Current weather fetched.",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", resp.Duration),
	)
	return resp, nil
}

// SeesStatusOK asserts the response has status 200.
func (w *WeatherActor) SeesStatusOK(resp *network.Response) error {
	if resp == nil {
		return fmt.Errorf("actor %q: no response", w.name)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("actor %q: expected status %d, got %d from %s",
			w.name, http.StatusOK, resp.StatusCode, resp.URL)
	}
	return nil
}

// SeesWeatherDataMatchesSchema parses the response body and checks every
// record in its data array against weather.Schema. A body that is not JSON
// wraps weather.ErrParse; shape mismatches wrap weather.ErrSchema.
func (w *WeatherActor) SeesWeatherDataMatchesSchema(resp *network.Response) error {
	if resp == nil {
		return fmt.Errorf("actor %q: no response", w.name)
	}
	records, err := weather.ParseRecords(resp.Body)
	if err != nil {
		return fmt.Errorf("actor %q: %w", w.name, err)
	}
	if err := weather.Validate(records); err != nil {
		return fmt.Errorf("actor %q: weather data does not match schema: %w", w.name, err)
	}
	return nil
}
