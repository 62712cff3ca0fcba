package awarddomain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetDay(t *testing.T) {
	msk, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	// 22:30 UTC on Mar 1 is already Mar 2 in Moscow.
	now := time.Date(2026, time.March, 1, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), TargetDay(now, msk))
	assert.Equal(t, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC), TargetDay(now, nil))
}

func TestParseDay(t *testing.T) {
	want := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	got, err := ParseDay("01.03.2026")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = ParseDay(" 2026-03-01 ")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = ParseDay("31.02.2026")
	assert.Error(t, err)
}
