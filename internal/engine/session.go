package engine

import (
	"log/slog"
	"time"
)

// Observer is notified after every key a Session consumes.
type Observer interface {
	OnTransition(sessionID string, tr Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(sessionID string, tr Transition)

// OnTransition calls f.
func (f ObserverFunc) OnTransition(sessionID string, tr Transition) {
	f(sessionID, tr)
}

// Session owns one State over a shared Config on behalf of a single
// player. It is a convenience for front ends; Config.Advance remains the
// primitive.
//
// Thread-safety: a Session is not safe for concurrent use. Run one per
// player; many Sessions may share a Config.
type Session struct {
	id        string
	cfg       *Config
	state     State
	seq       Sequence
	observers []Observer
	logger    *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithObserver registers an observer. Observers run in registration order.
func WithObserver(o Observer) SessionOption {
	return func(s *Session) {
		s.observers = append(s.observers, o)
	}
}

// WithLogger sets the session logger. Transitions are logged at debug.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession starts a session at root.
func NewSession(cfg *Config, ids SessionIDGenerator, opts ...SessionOption) *Session {
	s := &Session{
		id:     ids.Generate(),
		cfg:    cfg,
		state:  cfg.Reset(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Config returns the Config the session currently runs on.
func (s *Session) Config() *Config {
	return s.cfg
}

// State returns the current session state.
func (s *Session) State() State {
	return s.state
}

// Seq returns how many keys the session has consumed since the last reset.
func (s *Session) Seq() int64 {
	return s.seq.Current()
}

// Feed advances the session by one key and returns the completed labels.
func (s *Session) Feed(key string, now time.Time) []string {
	return s.FeedDetail(key, now).Outputs
}

// FeedDetail is Feed with the full Transition.
func (s *Session) FeedDetail(key string, now time.Time) Transition {
	next, tr := s.cfg.AdvanceDetail(s.state, key, now)
	s.state = next
	s.seq.Next()

	s.logger.Debug("advance",
		"key", key,
		"symbol", tr.Symbol,
		"from", int(tr.From),
		"to", int(tr.To),
		"outputs", tr.Outputs,
		"timed_out", tr.TimedOut,
		"unbound", tr.Unbound,
	)

	for _, o := range s.observers {
		o.OnTransition(s.id, tr)
	}
	return tr
}

// PrefixProbe reports how much of seq the session has matched.
func (s *Session) PrefixProbe(seq []string) int {
	return s.cfg.PrefixProbe(s.state, seq)
}

// Diagnostics reports the session's current automaton state.
func (s *Session) Diagnostics() Diagnostics {
	return s.cfg.Diagnostics(s.state)
}

// Reset discards matching progress and the last-event time.
func (s *Session) Reset() {
	s.state = s.cfg.Reset()
	s.seq.Reset()
	s.logger.Debug("reset")
}

// Swap replaces the Config, for example after the rule file changed. State
// indices do not carry across automatons, so the session restarts at root.
func (s *Session) Swap(cfg *Config) {
	s.cfg = cfg
	s.state = cfg.Reset()
	s.logger.Info("rules swapped", "states", cfg.Automaton().Len())
}
