package locate

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cecobask/wizardlite/internal/logger"
)

const (
	DefaultBudget = 60 * time.Second
	pollInterval  = time.Second
	settleDelay   = time.Second
)

type Finder interface {
	FindElement(by Strategy, target string) (any, error)
}

type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

type ElementNotFoundError struct {
	Target string
	Budget time.Duration
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("the element - %s not found within %s", e.Target, e.Budget)
}

func NewElementNotFoundError(target string, budget time.Duration) error {
	return &ElementNotFoundError{
		Target: target,
		Budget: budget,
	}
}

type outcome int

const (
	pending outcome = iota
	found
)

type Engine struct {
	clock  Clock
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		clock:  realClock{},
		logger: logger,
	}
}

// WaitUntilVisible polls finder once per second until the element is located or budget elapses.
// A non-positive budget means DefaultBudget.
func (e *Engine) WaitUntilVisible(finder Finder, strategy, target string, budget time.Duration) error {
	by, err := ParseStrategy(strategy)
	if err != nil {
		return err
	}
	if budget <= 0 {
		budget = DefaultBudget
	}
	start := e.clock.Now()
	for attempt := 1; ; attempt++ {
		if e.clock.Now().Sub(start) >= budget {
			return NewElementNotFoundError(target, budget)
		}
		if e.attempt(finder, by, target, attempt) == found {
			e.clock.Sleep(settleDelay)
			return nil
		}
		e.clock.Sleep(pollInterval)
	}
}

func (e *Engine) attempt(finder Finder, by Strategy, target string, attempt int) outcome {
	element, err := finder.FindElement(by, target)
	if err != nil || element == nil {
		e.logger.Debug("element not located yet",
			slog.String("strategy", string(by)),
			slog.String("target", target),
			slog.Int("attempt", attempt),
			logger.Error(err),
		)
		return pending
	}
	e.logger.Debug("element located",
		slog.String("strategy", string(by)),
		slog.String("target", target),
		slog.Int("attempt", attempt),
	)
	return found
}
