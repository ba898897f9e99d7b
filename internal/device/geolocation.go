package device

import (
	"context"
	"sync"
	"time"

	"suraksha/pkg/errors"
)

// ErrPositionUnavailable covers denial and timeout alike; activation
// degrades to a session without coordinates instead of aborting.
var ErrPositionUnavailable = errors.WithCode(errors.CodePositionUnavailable, "position unavailable")

type Position struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type WatchOptions struct {
	HighAccuracy bool
	MaxAge       time.Duration // how stale a cached fix may be for Current
	Timeout      time.Duration // how long Current waits for a fresh fix
}

// Watch is a live position subscription. Whoever starts it owns the handle
// and must Cancel it; an uncancelled watch keeps the sensor feed alive.
type Watch interface {
	Cancel()
}

// Source is the geolocation boundary: one-shot fix plus continuous watch.
type Source interface {
	Current(ctx context.Context, opts WatchOptions) (Position, error)
	Watch(ctx context.Context, opts WatchOptions, fn func(Position)) (Watch, error)
}

// LocationGateway receives position fixes pushed by the mobile client and
// fans them out to whoever is watching that user's feed.
type LocationGateway struct {
	mu     sync.Mutex
	latest map[uint]Position
	subs   map[uint]map[int]func(Position)
	nextID int
}

func NewLocationGateway() *LocationGateway {
	return &LocationGateway{
		latest: make(map[uint]Position),
		subs:   make(map[uint]map[int]func(Position)),
	}
}

// Push records a fix from the device and delivers it to active watches.
func (g *LocationGateway) Push(userID uint, p Position) {
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}
	g.mu.Lock()
	g.latest[userID] = p
	fns := make([]func(Position), 0, len(g.subs[userID]))
	for _, fn := range g.subs[userID] {
		fns = append(fns, fn)
	}
	g.mu.Unlock()
	for _, fn := range fns {
		fn(p)
	}
}

// ForUser binds the gateway to one user's feed.
func (g *LocationGateway) ForUser(userID uint) Source {
	return &userSource{g: g, userID: userID}
}

type userSource struct {
	g      *LocationGateway
	userID uint
}

func (s *userSource) Current(ctx context.Context, opts WatchOptions) (Position, error) {
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 10 * time.Second
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	s.g.mu.Lock()
	if p, ok := s.g.latest[s.userID]; ok && time.Since(p.Timestamp) <= maxAge {
		s.g.mu.Unlock()
		return p, nil
	}
	s.g.mu.Unlock()

	// No fresh fix cached; wait for the device to push one.
	ch := make(chan Position, 1)
	w := s.subscribe(func(p Position) {
		select {
		case ch <- p:
		default:
		}
	})
	defer w.Cancel()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		return Position{}, ErrPositionUnavailable
	case <-ctx.Done():
		return Position{}, ErrPositionUnavailable
	}
}

func (s *userSource) Watch(ctx context.Context, opts WatchOptions, fn func(Position)) (Watch, error) {
	return s.subscribe(fn), nil
}

func (s *userSource) subscribe(fn func(Position)) Watch {
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	s.g.nextID++
	id := s.g.nextID
	if s.g.subs[s.userID] == nil {
		s.g.subs[s.userID] = make(map[int]func(Position))
	}
	s.g.subs[s.userID][id] = fn
	return &gatewayWatch{g: s.g, userID: s.userID, id: id}
}

type gatewayWatch struct {
	g      *LocationGateway
	userID uint
	id     int
	once   sync.Once
}

func (w *gatewayWatch) Cancel() {
	w.once.Do(func() {
		w.g.mu.Lock()
		delete(w.g.subs[w.userID], w.id)
		w.g.mu.Unlock()
	})
}
