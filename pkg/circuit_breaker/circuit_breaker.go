package circuit_breaker

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

type State uint8

const (
	Closed State = iota + 1
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrOpen = errors.New("circuit breaker is open")

type CircuitBreaker interface {
	Call(fn func() error) error
	State() State
	Reset()
}

type Config struct {
	// Window is the number of most recent calls the failure ratio is computed over.
	Window int `envconfig:"CB_WINDOW" default:"10"`
	// Cooldown is how long the breaker stays open before letting a trial call through.
	Cooldown time.Duration `envconfig:"CB_COOLDOWN" default:"10s"`
	// FailureRatio in (0,1] opens the breaker.
	FailureRatio float64 `envconfig:"CB_FAILURE_RATIO" default:"0.5"`
	// Recovery is the number of consecutive half-open successes that close it again.
	Recovery int `envconfig:"CB_RECOVERY" default:"3"`
}

type circuitBreaker struct {
	mu  sync.Mutex
	cfg Config
	now func() time.Time

	state    State
	openedAt time.Time
	// ring of outcomes, true = failed
	window    []bool
	pos       int
	successes int
}

func New(cfg Config) CircuitBreaker {
	if cfg.Window <= 0 {
		cfg.Window = 1
	}
	return &circuitBreaker{
		cfg:    cfg,
		now:    time.Now,
		state:  Closed,
		window: make([]bool, cfg.Window),
	}
}

func (cb *circuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == Open {
		if cb.now().Sub(cb.openedAt) < cb.cfg.Cooldown {
			cb.mu.Unlock()
			return ErrOpen
		}
		cb.state = HalfOpen
		cb.successes = 0
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.window[cb.pos] = err != nil
	cb.pos = (cb.pos + 1) % len(cb.window)

	if cb.state == HalfOpen {
		if err != nil {
			cb.trip()
			return err
		}
		cb.successes++
		if cb.successes >= cb.cfg.Recovery {
			cb.reset()
		}
		return err
	}

	fails := 0
	for _, failed := range cb.window {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(len(cb.window)) >= cb.cfg.FailureRatio {
		cb.trip()
	}
	return err
}

func (cb *circuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.reset()
}

func (cb *circuitBreaker) trip() {
	cb.state = Open
	cb.successes = 0
	cb.openedAt = cb.now()
}

func (cb *circuitBreaker) reset() {
	for i := range cb.window {
		cb.window[i] = false
	}
	cb.pos = 0
	cb.successes = 0
	cb.state = Closed
}
