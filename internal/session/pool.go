// Package session holds the pool of platform authentication sessions used by monitoring passes.
package session

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"xhs-monitor/internal/apperrors"
	"xhs-monitor/internal/models"
)

// Policy selects which live session Acquire hands out.
type Policy string

const (
	PolicyRandom Policy = "random"
	PolicyLRU    Policy = "lru"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyRandom, "":
		return PolicyRandom, nil
	case PolicyLRU:
		return PolicyLRU, nil
	default:
		return "", fmt.Errorf("unknown session policy %q", s)
	}
}

// slot is one arena entry. Dead slots stay in the arena so indexes never shift.
type slot struct {
	session  models.Session
	alive    bool
	lastUsed time.Time
	touched  bool
}

// Pool is an arena of sessions with liveness flags guarded by a single mutex.
type Pool struct {
	mu     sync.Mutex
	slots  []slot
	byID   map[int64]int
	policy Policy
	intn   func(n int) int
	now    func() time.Time
}

type Option func(*Pool)

// WithRand overrides the random index source, mainly for tests.
func WithRand(intn func(n int) int) Option {
	return func(p *Pool) { p.intn = intn }
}

// WithClock overrides the clock used for least-recently-used bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) { p.now = now }
}

func NewPool(policy Policy, opts ...Option) *Pool {
	p := &Pool{
		byID:   make(map[int64]int),
		policy: policy,
		intn:   rand.Intn,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load replaces the arena with the given sessions. Each session's LastUsedAt seeds the
// least-recently-used ordering, so rotation carries over between pools.
func (p *Pool) Load(sessions []models.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.slots = p.slots[:0]
	p.byID = make(map[int64]int, len(sessions))
	for _, s := range sessions {
		p.insertLocked(s, s.Alive)
	}
}

// Add inserts a session. Adding an ID already present updates its value and liveness.
func (p *Pool) Add(s models.Session, alive bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.byID[s.ID]; ok {
		s.Alive = alive
		p.slots[idx].session = s
		p.slots[idx].alive = alive
		return
	}
	p.insertLocked(s, alive)
}

func (p *Pool) insertLocked(s models.Session, alive bool) {
	s.Alive = alive
	p.byID[s.ID] = len(p.slots)
	p.slots = append(p.slots, slot{session: s, alive: alive, lastUsed: s.LastUsedAt})
}

// Acquire hands out a live session according to the pool policy.
func (p *Pool) Acquire() (models.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	live := make([]int, 0, len(p.slots))
	for i := range p.slots {
		if p.slots[i].alive {
			live = append(live, i)
		}
	}
	if len(live) == 0 {
		return models.Session{}, apperrors.New(apperrors.KindNoSession, "acquire", "no live session in pool")
	}

	var chosen int
	switch p.policy {
	case PolicyLRU:
		chosen = live[0]
		for _, idx := range live[1:] {
			if p.slots[idx].lastUsed.Before(p.slots[chosen].lastUsed) {
				chosen = idx
			}
		}
	default:
		chosen = live[p.intn(len(live))]
	}

	now := p.now()
	p.slots[chosen].lastUsed = now
	p.slots[chosen].touched = true
	p.slots[chosen].session.LastUsedAt = now
	return p.slots[chosen].session, nil
}

// Invalidate marks a session dead. It returns true only for the call that flipped it;
// invalidating an unknown or already-dead session is a no-op.
func (p *Pool) Invalidate(s models.Session) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.byID[s.ID]
	if !ok || !p.slots[idx].alive {
		return false
	}
	p.slots[idx].alive = false
	p.slots[idx].session.Alive = false
	return true
}

// Count returns the number of live sessions.
func (p *Pool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for i := range p.slots {
		if p.slots[i].alive {
			n++
		}
	}
	return n
}

// Dead returns the IDs of every session marked dead, in arena order.
func (p *Pool) Dead() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	var ids []int64
	for i := range p.slots {
		if !p.slots[i].alive {
			ids = append(ids, p.slots[i].session.ID)
		}
	}
	return ids
}

// Used returns the last acquisition time of every session this pool handed out.
func (p *Pool) Used() map[int64]time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	used := make(map[int64]time.Time)
	for i := range p.slots {
		if p.slots[i].touched {
			used[p.slots[i].session.ID] = p.slots[i].lastUsed
		}
	}
	return used
}
