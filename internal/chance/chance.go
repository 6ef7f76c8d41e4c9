// Package chance provides the seeded random data stream owned by each actor.
//
// Every value handed out by a Chance is derived from its seed and the order of
// calls, so a failing run can be replayed by supplying the logged seed through
// the QAT_CHANCE_SEED override.
package chance

import (
	"encoding/binary"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
)

// SeedEnv is the environment variable consulted for a fixed seed.
const SeedEnv = "QAT_CHANCE_SEED"

// Chance is a deterministic pseudo-random generator rooted in a version 4 UUID.
// It is not safe for concurrent use; each actor owns its own instance.
type Chance struct {
	seed uuid.UUID
	rng  *rand.Rand
}

// New seeds a generator from the given UUID.
func New(seed uuid.UUID) *Chance {
	hi := binary.BigEndian.Uint64(seed[:8])
	lo := binary.BigEndian.Uint64(seed[8:])
	return &Chance{
		seed: seed,
		rng:  rand.New(rand.NewPCG(hi, lo)),
	}
}

// NewFromOverride resolves the seed from override (see ResolveSeed) and
// returns the generator along with whether the override was used.
func NewFromOverride(override string) (*Chance, bool) {
	seed, fromOverride := ResolveSeed(override)
	return New(seed), fromOverride
}

// Seed returns the root value of the stream.
func (c *Chance) Seed() uuid.UUID { return c.seed }

// IsRandomUUID reports whether v is a canonically formatted version 4 UUID
// (RFC 9562, section 5.4).
func IsRandomUUID(v string) bool {
	if len(v) != 36 {
		return false
	}
	u, err := uuid.Parse(v)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122
}

// ResolveSeed uses override verbatim when it is a valid version 4 UUID and
// otherwise mints a fresh one. The boolean reports which path was taken.
func ResolveSeed(override string) (uuid.UUID, bool) {
	if IsRandomUUID(override) {
		return uuid.MustParse(override), true
	}
	return uuid.New(), false
}

// PickOne selects uniformly from items. It panics when items is empty; callers
// own the non-empty guarantee, as with rand.IntN.
func PickOne[T any](c *Chance, items []T) T {
	if len(items) == 0 {
		panic("chance: PickOne called with an empty slice")
	}
	return items[c.rng.IntN(len(items))]
}

// Natural returns an integer in [min, max].
func (c *Chance) Natural(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + c.rng.IntN(max-min+1)
}

// Bool returns true with probability one half.
func (c *Chance) Bool() bool {
	return c.rng.IntN(2) == 1
}

// Letter returns an upper case ASCII letter.
func (c *Chance) Letter() byte {
	return byte('A' + c.rng.IntN(26))
}

// ukPostcodeAreas lists the outward area codes of the UK postcode system.
var ukPostcodeAreas = []string{
	"AB", "AL", "B", "BA", "BB", "BD", "BH", "BL", "BN", "BR", "BS", "BT",
	"CA", "CB", "CF", "CH", "CM", "CO", "CR", "CT", "CV", "CW",
	"DA", "DD", "DE", "DG", "DH", "DL", "DN", "DT", "DY",
	"E", "EC", "EH", "EN", "EX", "FK", "FY", "G", "GL", "GU",
	"HA", "HD", "HG", "HP", "HR", "HS", "HU", "HX", "IG", "IP", "IV",
	"KA", "KT", "KW", "KY", "L", "LA", "LD", "LE", "LL", "LN", "LS", "LU",
	"M", "ME", "MK", "ML", "N", "NE", "NG", "NN", "NP", "NR", "NW",
	"OL", "OX", "PA", "PE", "PH", "PL", "PO", "PR",
	"RG", "RH", "RM", "S", "SA", "SE", "SG", "SK", "SL", "SM", "SN", "SO",
	"SP", "SR", "SS", "ST", "SW", "SY", "TA", "TD", "TF", "TN", "TQ", "TR",
	"TS", "TW", "UB", "W", "WA", "WC", "WD", "WF", "WN", "WR", "WS", "WV",
	"YO", "ZE",
}

// Postcode returns a plausible UK postcode such as "SW1A 2AA": area, district
// digit, optional sub-district letter, then sector digit and two unit letters.
func (c *Chance) Postcode() string {
	area := PickOne(c, ukPostcodeAreas)
	district := c.Natural(0, 9)

	b := make([]byte, 0, 8)
	b = append(b, area...)
	b = strconv.AppendInt(b, int64(district), 10)
	if c.Bool() {
		b = append(b, c.Letter())
	}
	b = append(b, ' ')
	b = strconv.AppendInt(b, int64(c.Natural(0, 9)), 10)
	b = append(b, c.Letter(), c.Letter())
	return string(b)
}
