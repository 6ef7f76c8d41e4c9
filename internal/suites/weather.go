package suites

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stagehand/internal/actor"
	"github.com/xkilldash9x/stagehand/internal/chance"
	"github.com/xkilldash9x/stagehand/internal/fixtures"
	"github.com/xkilldash9x/stagehand/internal/scenario"
)

const accessorLatLon = "pickoneLatLon"

// CurrentWeather queries current conditions for random cities, once by
// coordinates and once by postcode, and checks the records' shape.
func CurrentWeather(d Deps) (*scenario.Suite, error) {
	leela, err := actor.NewWeatherActor("Leela", d.Config, d.HTTP, actor.Options{
		Logger: d.Logger,
		Generators: map[string]chance.GeneratorSpec{
			"coordinates": {Method: chance.MethodPickOne, Suffix: "LatLon", Options: fixtures.Cities},
		},
	})
	if err != nil {
		return nil, err
	}

	byCoordinates, err := actor.GenerateAs[fixtures.City](leela.Actor, accessorLatLon)
	if err != nil {
		return nil, err
	}
	byPostcode := actor.PickOne(leela, fixtures.Cities)
	leela.Logger().Info("Weather data drawn.",
		zap.String("coordinates_city", byCoordinates.Name),
		zap.String("postcode_city", byPostcode.Name),
	)

	return &scenario.Suite{
		Name: "Leela consumes the weather API to get weather data using coordinates and postcodes",
		Tags: []string{TagAPI},
		Steps: []scenario.Step{
			{Name: "send coordinates to retrieve weather data", Run: func(ctx context.Context) error {
				resp, err := leela.GetsCurrentWeatherWithCoordinates(ctx, byCoordinates.Lat, byCoordinates.Lon)
				if err != nil {
					return err
				}
				if err := leela.SeesStatusOK(resp); err != nil {
					return err
				}
				return leela.SeesWeatherDataMatchesSchema(resp)
			}},
			{Name: "send postcodes to retrieve weather data", Run: func(ctx context.Context) error {
				resp, err := leela.GetsCurrentWeatherWithPostcode(ctx, byPostcode.Postcode)
				if err != nil {
					return err
				}
				if err := leela.SeesStatusOK(resp); err != nil {
					return err
				}
				return leela.SeesWeatherDataMatchesSchema(resp)
			}},
		},
	}, nil
}
