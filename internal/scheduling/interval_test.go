package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.Local)
}

func TestNewTimeIntervalRejectsInvertedBounds(t *testing.T) {
	_, err := NewTimeInterval(at(2024, 3, 4, 11, 0), at(2024, 3, 4, 10, 0))
	require.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NewTimeInterval(at(2024, 3, 4, 10, 0), at(2024, 3, 4, 10, 0))
	require.ErrorIs(t, err, ErrInvalidInterval)

	iv, err := NewTimeInterval(at(2024, 3, 4, 10, 0), at(2024, 3, 4, 11, 0))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, iv.Duration())
}

func TestOverlapsHalfOpenBoundary(t *testing.T) {
	first := TimeInterval{Start: at(2024, 3, 4, 9, 0), End: at(2024, 3, 4, 10, 0)}
	second := TimeInterval{Start: at(2024, 3, 4, 10, 0), End: at(2024, 3, 4, 11, 0)}

	assert.False(t, first.Overlaps(second), "a lesson ending at 10:00 must not collide with one starting at 10:00")
	assert.False(t, second.Overlaps(first))
}

func TestOverlapsSymmetry(t *testing.T) {
	cases := []struct {
		name string
		a, b TimeInterval
		want bool
	}{
		{
			name: "partial overlap",
			a:    TimeInterval{Start: at(2024, 3, 4, 9, 0), End: at(2024, 3, 4, 11, 0)},
			b:    TimeInterval{Start: at(2024, 3, 4, 10, 0), End: at(2024, 3, 4, 12, 0)},
			want: true,
		},
		{
			name: "containment",
			a:    TimeInterval{Start: at(2024, 3, 4, 9, 0), End: at(2024, 3, 4, 17, 0)},
			b:    TimeInterval{Start: at(2024, 3, 4, 10, 0), End: at(2024, 3, 4, 11, 0)},
			want: true,
		},
		{
			name: "identical",
			a:    TimeInterval{Start: at(2024, 3, 4, 10, 0), End: at(2024, 3, 4, 11, 0)},
			b:    TimeInterval{Start: at(2024, 3, 4, 10, 0), End: at(2024, 3, 4, 11, 0)},
			want: true,
		},
		{
			name: "disjoint same day",
			a:    TimeInterval{Start: at(2024, 3, 4, 9, 0), End: at(2024, 3, 4, 10, 0)},
			b:    TimeInterval{Start: at(2024, 3, 4, 14, 0), End: at(2024, 3, 4, 15, 0)},
			want: false,
		},
		{
			name: "different days",
			a:    TimeInterval{Start: at(2024, 3, 4, 9, 0), End: at(2024, 3, 4, 10, 0)},
			b:    TimeInterval{Start: at(2024, 3, 5, 9, 0), End: at(2024, 3, 5, 10, 0)},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestContains(t *testing.T) {
	iv := TimeInterval{Start: at(2024, 3, 4, 10, 0), End: at(2024, 3, 4, 11, 0)}

	assert.True(t, iv.Contains(at(2024, 3, 4, 10, 0)))
	assert.True(t, iv.Contains(at(2024, 3, 4, 10, 59)))
	assert.False(t, iv.Contains(at(2024, 3, 4, 11, 0)), "end is exclusive")
	assert.False(t, iv.Contains(at(2024, 3, 4, 9, 59)))
}

func TestSameDate(t *testing.T) {
	assert.True(t, SameDate(at(2024, 3, 4, 0, 0), at(2024, 3, 4, 23, 59)))
	assert.False(t, SameDate(at(2024, 3, 4, 23, 59), at(2024, 3, 5, 0, 0)))
}
