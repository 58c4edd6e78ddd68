package media

import (
	"sync"

	"github.com/rs/zerolog"

	"ytgrab/internal/domain/media"
	"ytgrab/internal/metrics"
)

// arbiter commits the first signal it is offered and discards the rest.
// It implements media.SignalSink for one job.
type arbiter struct {
	path   string
	logger zerolog.Logger

	mu        sync.Mutex
	committed bool
	winner    media.Signal
	outcome   media.Outcome
	done      chan struct{}
}

func newArbiter(path string, logger zerolog.Logger) *arbiter {
	return &arbiter{path: path, logger: logger, done: make(chan struct{})}
}

// Offer commits sig if nothing has been committed yet.
func (a *arbiter) Offer(sig media.Signal) bool {
	a.mu.Lock()
	if a.committed {
		winner := a.winner
		a.mu.Unlock()
		metrics.LateSignals.WithLabelValues(string(sig.Origin)).Inc()
		a.logger.Debug().
			Str("origin", string(sig.Origin)).
			Str("signal", sig.String()).
			Str("committed", winner.String()).
			Msg("late signal discarded")
		return false
	}
	a.committed = true
	a.winner = sig
	a.outcome = media.OutcomeOf(sig, a.path)
	close(a.done)
	a.mu.Unlock()

	a.logger.Debug().
		Str("origin", string(sig.Origin)).
		Str("signal", sig.String()).
		Msg("terminal signal committed")
	return true
}

// Done closes once an outcome is committed.
func (a *arbiter) Done() <-chan struct{} {
	return a.done
}

// Outcome blocks until a signal is committed and returns its outcome.
func (a *arbiter) Outcome() media.Outcome {
	<-a.done
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.outcome
}
