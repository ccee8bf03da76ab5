package queue

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/mcdev12/liveauction/go/internal/models"
)

func players(n int) []*models.Player {
	out := make([]*models.Player, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, &models.Player{ID: i, BasePrice: 1_000_000, Status: models.PlayerStatusAvailable})
	}
	return out
}

func TestNext_FIFO(t *testing.T) {
	q := New(players(3), 0)

	for want := 1; want <= 3; want++ {
		p, promoted, err := q.Next()
		assert.NoError(t, err)
		check.False(t, promoted)
		check.Equal(t, want, p.ID)
	}

	_, _, err := q.Next()
	check.True(t, errors.Is(err, ErrQueueExhausted))
	check.True(t, q.Exhausted())
}

func TestNew_SkipsUnavailable(t *testing.T) {
	ps := players(3)
	ps[1].Status = models.PlayerStatusSold
	q := New(ps, 0)
	check.Equal(t, 2, q.Pending())
}

func TestRequeueAsUnsold_WaitsForNextRound(t *testing.T) {
	q := New(players(3), 0)

	first, _, err := q.Next()
	assert.NoError(t, err)
	q.RequeueAsUnsold(first)
	check.Equal(t, models.PlayerStatusUnsold, first.Status)
	check.Equal(t, 1, q.Unsold())

	// The unsold player must not come back before the round ends.
	second, promoted, err := q.Next()
	assert.NoError(t, err)
	check.False(t, promoted)
	check.Equal(t, 2, second.ID)

	third, _, err := q.Next()
	assert.NoError(t, err)
	check.Equal(t, 3, third.ID)
	check.Equal(t, 1, q.Round())

	again, promoted, err := q.Next()
	assert.NoError(t, err)
	check.True(t, promoted)
	check.Equal(t, 1, again.ID)
	check.Equal(t, models.PlayerStatusAvailable, again.Status)
	check.Equal(t, 2, q.Round())
	check.Equal(t, 0, q.Unsold())
}

func TestPromotion_KeepsUnsoldOrder(t *testing.T) {
	q := New(players(4), 0)
	var drawn []*models.Player
	for i := 0; i < 4; i++ {
		p, _, err := q.Next()
		assert.NoError(t, err)
		drawn = append(drawn, p)
	}
	q.RequeueAsUnsold(drawn[3])
	q.RequeueAsUnsold(drawn[1])

	p, promoted, err := q.Next()
	assert.NoError(t, err)
	check.True(t, promoted)
	check.Equal(t, 4, p.ID)

	p, _, err = q.Next()
	assert.NoError(t, err)
	check.Equal(t, 2, p.ID)
}

func TestMaxRounds_StopsPromotion(t *testing.T) {
	q := New(players(1), 2)

	p, _, err := q.Next()
	assert.NoError(t, err)
	q.RequeueAsUnsold(p)

	p, promoted, err := q.Next()
	assert.NoError(t, err)
	check.True(t, promoted)
	check.Equal(t, 2, q.Round())
	q.RequeueAsUnsold(p)

	_, _, err = q.Next()
	check.True(t, errors.Is(err, ErrQueueExhausted))
	check.Equal(t, models.PlayerStatusUnsold, p.Status)
	check.Equal(t, 1, q.Unsold())
}
