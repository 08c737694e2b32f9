package browser

import (
	"sync"
	"time"

	pkgbrowser "github.com/pkg/browser"
	"github.com/rs/zerolog/log"
)

// DefaultDelay gives the dev server a moment to start listening. It is not a
// readiness check.
const DefaultDelay = 300 * time.Millisecond

// OpenFunc opens url in the system browser.
type OpenFunc func(url string) error

// Scheduler performs at most one delayed, best-effort browser open.
type Scheduler struct {
	delay time.Duration
	open  OpenFunc
	once  sync.Once
	done  chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDelay overrides the delay before the browser is opened.
func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		s.delay = d
	}
}

// WithOpener replaces the system browser opener.
func WithOpener(open OpenFunc) Option {
	return func(s *Scheduler) {
		s.open = open
	}
}

// NewScheduler creates a scheduler which opens the default system browser.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		delay: DefaultDelay,
		open:  pkgbrowser.OpenURL,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule arranges for url to be opened after the delay. Only the first call
// schedules anything; it reports whether this call did.
func (s *Scheduler) Schedule(url string) bool {
	scheduled := false

	s.once.Do(func() {
		scheduled = true

		log.Debug().Str("url", url).Dur("delay", s.delay).Msg("Scheduling browser open")

		time.AfterFunc(s.delay, func() {
			defer close(s.done)

			if err := s.open(url); err != nil {
				log.Info().Err(err).Str("url", url).Msg("Unable to open browser")
				return
			}
			log.Info().Str("url", url).Msg("Opened browser")
		})
	})

	return scheduled
}

// Done is closed once the scheduled open attempt has been made, whether or
// not it succeeded. It never closes if Schedule was not called.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}
