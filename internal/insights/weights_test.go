package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var weightsNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(days int) time.Time {
	return weightsNow.AddDate(0, 0, -days)
}

func TestTimeWeight(t *testing.T) {
	cases := []struct {
		name string
		days int
		want float64
	}{
		{"same day", 0, 1.5},
		{"boundary of first week", 7, 1.5},
		{"within a month", 20, 1.2},
		{"boundary of month", 30, 1.2},
		{"within three months", 45, 1.0},
		{"boundary of quarter", 90, 1.0},
		{"older than a quarter", 120, 0.7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TimeWeight(daysAgo(tc.days), weightsNow))
		})
	}
}

func TestQuantityWeight(t *testing.T) {
	assert.Equal(t, 1.0, QuantityWeight(1))
	assert.Equal(t, 1.2, QuantityWeight(2))
	assert.Equal(t, 1.2, QuantityWeight(3))
	assert.Equal(t, 1.5, QuantityWeight(4))
	assert.Equal(t, 1.5, QuantityWeight(10))
}

func TestRepeatBonus(t *testing.T) {
	assert.Equal(t, 1.0, RepeatBonus(1))
	assert.Equal(t, 1.3, RepeatBonus(2))
	assert.Equal(t, 1.3, RepeatBonus(3))
	assert.Equal(t, 1.5, RepeatBonus(4))
	assert.Equal(t, 1.5, RepeatBonus(5))
	assert.Equal(t, 2.0, RepeatBonus(6))
	assert.Equal(t, 2.0, RepeatBonus(12))
}
