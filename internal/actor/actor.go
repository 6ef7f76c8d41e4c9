// Package actor implements the test actors scenarios are written against.
//
// An Actor couples a display name with a seeded random data stream. The
// concrete actors embed it and add the operations of one external system:
// StorefrontActor drives the web shop through a browser page and
// WeatherActor calls the weather API over HTTP.
package actor

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stagehand/internal/chance"
	"github.com/xkilldash9x/stagehand/internal/observability"
)

// Performer is the capability every actor shares.
type Performer interface {
	Name() string
	Chance() *chance.Chance
}

// Options are the construction parameters common to all actors.
type Options struct {
	// SeedOverride replays a previous run when it holds a version 4 UUID.
	// Anything else, including the empty string, yields a fresh seed.
	SeedOverride string
	// Generators declares custom accessors, see chance.GeneratorSpec.
	Generators map[string]chance.GeneratorSpec
	Logger     *zap.Logger
}

// Actor is the identity and random data shared by every concrete actor. Its
// seed never changes after New returns.
type Actor struct {
	name       string
	chance     *chance.Chance
	generators *chance.Generators
	logger     *zap.Logger
}

var _ Performer = (*Actor)(nil)

// New builds an actor and logs its seed so a failing run can be replayed.
func New(name string, opts Options) (*Actor, error) {
	if name == "" {
		return nil, fmt.Errorf("actor name must not be empty")
	}
	generators, err := chance.NewGenerators(opts.Generators)
	if err != nil {
		return nil, fmt.Errorf("actor %q: %w", name, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = observability.GetLogger()
	}
	logger = logger.Named("actor").With(zap.String("actor", name))

	if opts.SeedOverride != "" && !chance.IsRandomUUID(opts.SeedOverride) {
		logger.Warn("Ignoring seed override that is not a version 4 UUID.",
			zap.String("override", opts.SeedOverride),
			zap.String("env", chance.SeedEnv),
		)
	}
	c, replayed := chance.NewFromOverride(opts.SeedOverride)
	logger.Info("Actor seeded.",
		zap.String("seed", c.Seed().String()),
		zap.Bool("override", replayed),
		zap.String("env", chance.SeedEnv),
	)

	return &Actor{
		name:       name,
		chance:     c,
		generators: generators,
		logger:     logger,
	}, nil
}

func (a *Actor) Name() string           { return a.name }
func (a *Actor) Seed() uuid.UUID        { return a.chance.Seed() }
func (a *Actor) Chance() *chance.Chance { return a.chance }

// Logger is the actor's named logger, tagged with its name.
func (a *Actor) Logger() *zap.Logger { return a.logger }

// Postcode draws a postcode from the actor's stream.
func (a *Actor) Postcode() string { return a.chance.Postcode() }

// Generate draws from a custom accessor declared at construction, such as
// "pickoneProduct".
func (a *Actor) Generate(accessor string) (any, error) {
	v, err := a.generators.Generate(a.chance, accessor)
	if err != nil {
		return nil, fmt.Errorf("actor %q: %w", a.name, err)
	}
	return v, nil
}

// Accessors lists the custom accessors the actor was built with.
func (a *Actor) Accessors() []string { return a.generators.Accessors() }

// PickOne draws uniformly from items using p's stream. items must not be empty.
func PickOne[T any](p Performer, items []T) T {
	return chance.PickOne(p.Chance(), items)
}

// GenerateAs is Generate with the result asserted to T.
func GenerateAs[T any](a *Actor, accessor string) (T, error) {
	var zero T
	v, err := a.Generate(accessor)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("actor %q: accessor %q yields %T, not %T", a.name, accessor, v, zero)
	}
	return t, nil
}
