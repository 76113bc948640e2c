package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservation(t *testing.T) {
	res, err := NewReservation("wo-1", "part-1", "wh-1", 5, "tech-1")
	require.NoError(t, err)
	assert.Equal(t, ReservationActive, res.Status)
	assert.Equal(t, 5, res.Quantity)
	assert.True(t, res.IsActive())

	_, err = NewReservation("wo-1", "part-1", "wh-1", 0, "tech-1")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewReservation("wo-1", "part-1", "wh-1", -3, "tech-1")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestReservation_Consume(t *testing.T) {
	res, err := NewReservation("wo-1", "part-1", "wh-1", 5, "tech-1")
	require.NoError(t, err)

	require.NoError(t, res.Consume())
	assert.Equal(t, ReservationConsumed, res.Status)
	require.NotNil(t, res.ConsumedAt)
	assert.False(t, res.IsActive())

	assert.ErrorIs(t, res.Consume(), ErrReservationNotActive)
	assert.ErrorIs(t, res.Cancel(), ErrReservationNotActive)
}

func TestReservation_Cancel(t *testing.T) {
	res, err := NewReservation("wo-1", "part-1", "wh-1", 5, "tech-1")
	require.NoError(t, err)

	require.NoError(t, res.Cancel())
	assert.Equal(t, ReservationCancelled, res.Status)
	require.NotNil(t, res.CancelledAt)

	assert.ErrorIs(t, res.Cancel(), ErrReservationNotActive)
}

func TestReservation_IsStale(t *testing.T) {
	res, err := NewReservation("wo-1", "part-1", "wh-1", 5, "tech-1")
	require.NoError(t, err)

	assert.False(t, res.IsStale(72*time.Hour))

	res.CreatedAt = time.Now().Add(-73 * time.Hour)
	assert.True(t, res.IsStale(72*time.Hour))

	// Closed holds are never stale
	require.NoError(t, res.Cancel())
	assert.False(t, res.IsStale(72*time.Hour))
}
