package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, DefaultLimit, NormalizeLimit(-5))
	require.Equal(t, 7, NormalizeLimit(7))
	require.Equal(t, MaxLimit, NormalizeLimit(MaxLimit))
	require.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
}

func TestLimitWithBuffer(t *testing.T) {
	require.Equal(t, DefaultLimit+1, LimitWithBuffer(0))
	require.Equal(t, 11, LimitWithBuffer(10))
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC),
		ID:        uuid.New(),
	}

	parsed, err := ParseCursor(EncodeCursor(cursor))
	require.NoError(t, err)
	require.NotNil(t, parsed)
	require.True(t, cursor.CreatedAt.Equal(parsed.CreatedAt))
	require.Equal(t, cursor.ID, parsed.ID)
}

func TestParseCursor_EmptyMeansFirstPage(t *testing.T) {
	parsed, err := ParseCursor("")
	require.NoError(t, err)
	require.Nil(t, parsed)

	parsed, err = ParseCursor("   ")
	require.NoError(t, err)
	require.Nil(t, parsed)
}

func TestParseCursor_Invalid(t *testing.T) {
	for _, value := range []string{
		"not-base64!!!",
		"bm8tc2VwYXJhdG9y",             // "no-separator"
		"MjAyNi0wMS0wMXxub3QtYS11dWlk", // valid time, bad uuid
	} {
		_, err := ParseCursor(value)
		require.Error(t, err, "cursor %q", value)
	}
}
