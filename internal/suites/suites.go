// Package suites defines the scenario suites the harness ships with.
package suites

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stagehand/internal/actor"
	"github.com/xkilldash9x/stagehand/internal/browser"
	"github.com/xkilldash9x/stagehand/internal/config"
	"github.com/xkilldash9x/stagehand/internal/scenario"
)

// Tags used by the built-in suites.
const (
	TagWeb = "@web"
	TagAPI = "@api"
)

// Deps are the collaborators suites build their actors from.
type Deps struct {
	Config   config.Interface
	Browsers browser.Provider
	HTTP     actor.Fetcher
	Logger   *zap.Logger
}

// All builds every suite. Random test data is drawn here, at build time, so
// it is fixed before any step runs and is logged with the actor's seed.
func All(d Deps) ([]*scenario.Suite, error) {
	builders := []func(Deps) (*scenario.Suite, error){
		Checkout,
		CurrentWeather,
	}
	out := make([]*scenario.Suite, 0, len(builders))
	for _, build := range builders {
		s, err := build(d)
		if err != nil {
			return nil, fmt.Errorf("building suites: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}
