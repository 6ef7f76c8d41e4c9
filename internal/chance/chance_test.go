package chance

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixedSeed = "3b241101-e2bb-4255-8caf-4136c566a962"

func TestIsRandomUUID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid v4", fixedSeed, true},
		{"valid v4 upper case", "3B241101-E2BB-4255-8CAF-4136C566A962", true},
		{"v1 uuid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
		{"wrong variant", "3b241101-e2bb-4255-0caf-4136c566a962", false},
		{"urn form", "urn:uuid:" + fixedSeed, false},
		{"braced form", "{" + fixedSeed + "}", false},
		{"empty", "", false},
		{"garbage", "not-a-uuid-at-all-not-a-uuid-at-all!", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRandomUUID(tt.input))
		})
	}
}

func TestResolveSeed(t *testing.T) {
	t.Run("uses a valid override verbatim", func(t *testing.T) {
		seed, fromOverride := ResolveSeed(fixedSeed)
		assert.True(t, fromOverride)
		assert.Equal(t, fixedSeed, seed.String())
	})

	t.Run("mints a fresh v4 seed for a malformed override", func(t *testing.T) {
		seed, fromOverride := ResolveSeed("malformed")
		assert.False(t, fromOverride)
		assert.Equal(t, uuid.Version(4), seed.Version())
		assert.True(t, IsRandomUUID(seed.String()))
	})
}

func TestSameSeedSameSequence(t *testing.T) {
	items := []string{"backpack", "bike light", "bolt t-shirt", "fleece jacket", "onesie"}

	a, _ := NewFromOverride(fixedSeed)
	b, _ := NewFromOverride(fixedSeed)

	for i := 0; i < 50; i++ {
		require.Equal(t, PickOne(a, items), PickOne(b, items), "pick %d", i)
		require.Equal(t, a.Postcode(), b.Postcode(), "postcode %d", i)
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(uuid.MustParse(fixedSeed))
	b := New(uuid.MustParse("9f1c2a44-5b6d-4e7f-8a9b-0c1d2e3f4a5b"))

	var same int
	for i := 0; i < 20; i++ {
		if a.Postcode() == b.Postcode() {
			same++
		}
	}
	assert.Less(t, same, 20)
}

func TestPickOneCoversAllItems(t *testing.T) {
	c := New(uuid.MustParse(fixedSeed))
	items := []int{1, 2, 3}
	seen := map[int]bool{}
	for i := 0; i < 300; i++ {
		seen[PickOne(c, items)] = true
	}
	assert.Len(t, seen, 3)
}

func TestPickOnePanicsOnEmpty(t *testing.T) {
	c := New(uuid.MustParse(fixedSeed))
	assert.Panics(t, func() { PickOne(c, []string{}) })
}

func TestPostcodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z]? [0-9][A-Z]{2}$`)
	c := New(uuid.MustParse(fixedSeed))
	for i := 0; i < 200; i++ {
		pc := c.Postcode()
		assert.Regexp(t, pattern, pc)
	}
}

func TestNaturalBounds(t *testing.T) {
	c := New(uuid.MustParse(fixedSeed))
	for i := 0; i < 200; i++ {
		n := c.Natural(3, 5)
		assert.GreaterOrEqual(t, n, 3)
		assert.LessOrEqual(t, n, 5)
	}
	assert.Equal(t, 7, c.Natural(7, 7))
}
