package session_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhs-monitor/internal/apperrors"
	"xhs-monitor/internal/models"
	"xhs-monitor/internal/session"
)

func sessions(n int) []models.Session {
	out := make([]models.Session, n)
	for i := range out {
		out[i] = models.Session{ID: int64(i + 1), Value: "web_session=" + string(rune('a'+i)), Alive: true}
	}
	return out
}

func TestAcquireEmptyPool(t *testing.T) {
	p := session.NewPool(session.PolicyRandom)

	_, err := p.Acquire()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoSession)
}

func TestAcquireSkipsDeadSessions(t *testing.T) {
	p := session.NewPool(session.PolicyRandom)
	p.Load(sessions(3))

	require.True(t, p.Invalidate(models.Session{ID: 1}))
	require.True(t, p.Invalidate(models.Session{ID: 3}))

	for i := 0; i < 50; i++ {
		s, err := p.Acquire()
		require.NoError(t, err)
		assert.Equal(t, int64(2), s.ID)
	}
}

func TestInvalidateIsIdempotent(t *testing.T) {
	p := session.NewPool(session.PolicyRandom)
	p.Load(sessions(2))

	assert.True(t, p.Invalidate(models.Session{ID: 1}))
	assert.False(t, p.Invalidate(models.Session{ID: 1}))
	assert.False(t, p.Invalidate(models.Session{ID: 99}))
	assert.Equal(t, 1, p.Count())
	assert.Equal(t, []int64{1}, p.Dead())
}

func TestLoadKeepsDeadSessionsOutOfRotation(t *testing.T) {
	all := sessions(2)
	all[0].Alive = false

	p := session.NewPool(session.PolicyRandom)
	p.Load(all)

	assert.Equal(t, 1, p.Count())
	s, err := p.Acquire()
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.ID)
}

func TestAddSession(t *testing.T) {
	p := session.NewPool(session.PolicyRandom)

	p.Add(models.Session{ID: 7, Value: "a=1"}, false)
	assert.Equal(t, 0, p.Count())

	p.Add(models.Session{ID: 7, Value: "a=2"}, true)
	assert.Equal(t, 1, p.Count())

	s, err := p.Acquire()
	require.NoError(t, err)
	assert.Equal(t, "a=2", s.Value)
	assert.True(t, s.Alive)
}

func TestLRUPolicyRotates(t *testing.T) {
	tick := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	p := session.NewPool(session.PolicyLRU, session.WithClock(clock))
	p.Load(sessions(3))

	var got []int64
	for i := 0; i < 6; i++ {
		s, err := p.Acquire()
		require.NoError(t, err)
		got = append(got, s.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 1, 2, 3}, got)
}

func TestLRUPolicyCarriesAcrossPools(t *testing.T) {
	tick := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	stored := sessions(3)

	var got []int64
	for pass := 0; pass < 4; pass++ {
		p := session.NewPool(session.PolicyLRU, session.WithClock(clock))
		p.Load(stored)

		s, err := p.Acquire()
		require.NoError(t, err)
		got = append(got, s.ID)

		for id, at := range p.Used() {
			stored[id-1].LastUsedAt = at
		}
	}
	assert.Equal(t, []int64{1, 2, 3, 1}, got)
}

func TestUsedReportsOnlyAcquiredSessions(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := session.NewPool(session.PolicyLRU, session.WithClock(func() time.Time { return at }))
	seeded := sessions(2)
	seeded[0].LastUsedAt = at.Add(-time.Hour)
	p.Load(seeded)

	assert.Empty(t, p.Used())

	s, err := p.Acquire()
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.ID)
	assert.Equal(t, at, s.LastUsedAt)
	assert.Equal(t, map[int64]time.Time{2: at}, p.Used())
}

func TestRandomPolicyUsesIndexSource(t *testing.T) {
	p := session.NewPool(session.PolicyRandom, session.WithRand(func(n int) int { return n - 1 }))
	p.Load(sessions(4))

	s, err := p.Acquire()
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.ID)
}

func TestConcurrentAcquireInvalidate(t *testing.T) {
	p := session.NewPool(session.PolicyRandom)
	p.Load(sessions(20))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		flipped int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, _ = p.Acquire()
			if p.Invalidate(models.Session{ID: id}) {
				mu.Lock()
				flipped++
				mu.Unlock()
			}
		}(int64(i%20 + 1))
	}
	wg.Wait()

	assert.Equal(t, 20, flipped)
	assert.Equal(t, 0, p.Count())
}

func TestParsePolicy(t *testing.T) {
	p, err := session.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, session.PolicyRandom, p)

	p, err = session.ParsePolicy("lru")
	require.NoError(t, err)
	assert.Equal(t, session.PolicyLRU, p)

	_, err = session.ParsePolicy("round-robin")
	assert.Error(t, err)
}
