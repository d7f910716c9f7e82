package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ftality/internal/automaton"
	"github.com/roach88/ftality/internal/testutil"
)

// play feeds keys 100ms apart starting at startMS.
func play(cfg *Config, st State, startMS int64, keys ...string) (State, []string) {
	var outs []string
	for i, k := range keys {
		st, outs = cfg.Advance(st, k, testutil.AtMS(startMS+int64(i)*100))
	}
	return st, outs
}

func TestAdvance_ClawThenSaibot(t *testing.T) {
	cfg, st := mkConfig(t)

	st, outs := cfg.Advance(st, "q", testutil.AtMS(0))
	assert.Equal(t, []string{"Claw Slam"}, outs)
	assert.NotEqual(t, automaton.Root, st.Current)
	assert.True(t, st.HasLastEvent)
	assert.Equal(t, testutil.AtMS(0), st.LastEvent)

	st, outs = cfg.Advance(st, "w", testutil.AtMS(200))
	assert.Equal(t, []string{"Saibot Blast"}, outs)
	assert.Equal(t, testutil.AtMS(200), st.LastEvent)
}

func TestAdvance_MissingPrefix(t *testing.T) {
	cfg, st := mkConfig(t)

	_, outs := play(cfg, st, 0, "right", "w")
	assert.NotContains(t, outs, "Fireball")

	_, outs = play(cfg, st, 0, "down", "right", "w")
	assert.Equal(t, []string{"Fireball"}, outs)
}

func TestAdvance_UnboundKeyIsNoOp(t *testing.T) {
	cfg, st := mkConfig(t)
	st, _ = cfg.Advance(st, "down", testutil.AtMS(0))

	next, tr := cfg.AdvanceDetail(st, "z", testutil.AtMS(5000))
	assert.Equal(t, st, next, "state and timestamp unchanged")
	assert.True(t, tr.Unbound)
	assert.Empty(t, tr.Outputs)
	assert.Empty(t, tr.Symbol)
	assert.Equal(t, st.Current, tr.From)
	assert.Equal(t, st.Current, tr.To)

	// The unbound key must not have refreshed the timestamp: the combo can
	// still complete within the window measured from "down".
	next, _ = cfg.Advance(next, "right", testutil.AtMS(100))
	_, outs := cfg.Advance(next, "w", testutil.AtMS(200))
	assert.Equal(t, []string{"Fireball"}, outs)
}

func TestAdvance_TimeoutResetsToRoot(t *testing.T) {
	cfg, st := mkConfig(t)

	st, _ = cfg.Advance(st, "down", testutil.AtMS(0))
	st, _ = cfg.Advance(st, "right", testutil.AtMS(100))

	next, tr := cfg.AdvanceDetail(st, "w", testutil.AtMS(100+501))
	assert.True(t, tr.TimedOut)
	assert.Empty(t, tr.Outputs, "Fireball must not fire after a stale gap")

	fromRoot, _ := cfg.Advance(cfg.Reset(), "w", testutil.AtMS(601))
	assert.Equal(t, fromRoot.Current, next.Current)
}

func TestAdvance_GapEqualToTimeoutKeepsProgress(t *testing.T) {
	cfg, st := mkConfig(t)

	st, _ = cfg.Advance(st, "down", testutil.AtMS(0))
	st, _ = cfg.Advance(st, "right", testutil.AtMS(500))
	_, tr := cfg.AdvanceDetail(st, "w", testutil.AtMS(1000))
	assert.False(t, tr.TimedOut)
	assert.Equal(t, []string{"Fireball"}, tr.Outputs)
}

func TestAdvance_TimeoutProperty(t *testing.T) {
	cfg, _ := mkConfig(t, WithTimeout(300*time.Millisecond))
	keys := []string{"q", "w", "down", "right", "z"}

	for _, prefix := range [][]string{{"q"}, {"down"}, {"down", "right"}, {"q", "w"}} {
		for _, gap := range []int64{301, 302, 1000, 60000} {
			for _, k := range keys {
				name := fmt.Sprintf("%v/gap=%d/%s", prefix, gap, k)
				t.Run(name, func(t *testing.T) {
					st, _ := play(cfg, cfg.Reset(), 0, prefix...)
					now := st.LastEvent.Add(time.Duration(gap) * time.Millisecond)

					gotState, gotOuts := cfg.Advance(st, k, now)
					wantState, wantOuts := cfg.Advance(cfg.Reset(), k, now)

					if k == "z" {
						// Unbound keys leave the stale state alone entirely.
						assert.Equal(t, st, gotState)
						assert.Empty(t, gotOuts)
						return
					}
					assert.Equal(t, wantState, gotState)
					assert.Equal(t, wantOuts, gotOuts)
				})
			}
		}
	}
}

func TestAdvance_FirstKeyNeverTimesOut(t *testing.T) {
	cfg, st := mkConfig(t)
	_, tr := cfg.AdvanceDetail(st, "q", testutil.AtMS(1_000_000))
	assert.False(t, tr.TimedOut)
	assert.Equal(t, []string{"Claw Slam"}, tr.Outputs)
}

func TestAdvance_TransitionFields(t *testing.T) {
	cfg, st := mkConfig(t)
	now := testutil.AtMS(42)

	_, tr := cfg.AdvanceDetail(st, "q", now)
	assert.Equal(t, "q", tr.Key)
	assert.Equal(t, "[BP]", tr.Symbol)
	assert.Equal(t, now, tr.At)
	assert.Equal(t, automaton.Root, tr.From)
	assert.NotEqual(t, automaton.Root, tr.To)
	assert.False(t, tr.Unbound)
}

func TestPrefixProbe(t *testing.T) {
	cfg, st := mkConfig(t)
	fireball := []string{"Down", "Right", "[FP]"}
	saibot := []string{"[BP]", "[FP]"}

	assert.Equal(t, 0, cfg.PrefixProbe(st, fireball), "nothing typed yet")

	st, _ = cfg.Advance(st, "down", testutil.AtMS(0))
	assert.Equal(t, 1, cfg.PrefixProbe(st, fireball))
	assert.Equal(t, 0, cfg.PrefixProbe(st, saibot))

	st, _ = cfg.Advance(st, "right", testutil.AtMS(100))
	before := st
	assert.Equal(t, 2, cfg.PrefixProbe(st, fireball))
	assert.Equal(t, before, st, "probe must not mutate the live state")

	st, _ = cfg.Advance(st, "w", testutil.AtMS(200))
	assert.Equal(t, 3, cfg.PrefixProbe(st, fireball))
}

func TestPrefixProbe_AgreesWithAdvance(t *testing.T) {
	cfg, _ := mkConfig(t)

	for _, combo := range cfg.Combos() {
		st := cfg.Reset()
		for i, sym := range combo.Sequence {
			keys := cfg.KeysFor(sym)
			require.NotEmpty(t, keys)
			st, _ = cfg.Advance(st, keys[0], testutil.AtMS(int64(i)*10))
			assert.Equal(t, i+1, cfg.PrefixProbe(st, combo.Sequence), "%s step %d", combo.Label, i)
		}
	}
}

func TestDiagnostics(t *testing.T) {
	cfg, st := mkConfig(t)

	d := cfg.Diagnostics(st)
	assert.Equal(t, automaton.Root, d.State)
	assert.False(t, d.Missed, "fresh session has no history")
	assert.Empty(t, d.Outputs)

	st, _ = cfg.Advance(st, "q", testutil.AtMS(0))
	d = cfg.Diagnostics(st)
	assert.Equal(t, []string{"Claw Slam"}, d.Outputs)
	assert.False(t, d.Missed)

	// "right" alone leads nowhere from "[BP]".
	st, _ = cfg.Advance(st, "right", testutil.AtMS(10))
	d = cfg.Diagnostics(st)
	assert.Equal(t, automaton.Root, d.State)
	assert.True(t, d.Missed)

	d = cfg.Diagnostics(State{Current: automaton.StateID(9999)})
	assert.Empty(t, d.Outputs)
}

func TestReset(t *testing.T) {
	cfg, st := mkConfig(t)
	st, _ = cfg.Advance(st, "q", testutil.AtMS(0))
	require.NotEqual(t, automaton.Root, st.Current)

	st = cfg.Reset()
	assert.Equal(t, automaton.Root, st.Current)
	assert.False(t, st.HasLastEvent)
}

func TestAdvance_ConcurrentSessionsShareConfig(t *testing.T) {
	cfg, _ := mkConfig(t)
	const players = 32

	var wg sync.WaitGroup
	results := make([][]string, players)
	for p := 0; p < players; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			st := cfg.Reset()
			var fired []string
			for round := 0; round < 50; round++ {
				base := int64(round) * 1000
				var outs []string
				for i, k := range []string{"down", "right", "w"} {
					st, outs = cfg.Advance(st, k, testutil.AtMS(base+int64(i)*50))
					fired = append(fired, outs...)
				}
			}
			results[p] = fired
		}(p)
	}
	wg.Wait()

	for p := 0; p < players; p++ {
		assert.Len(t, results[p], 50, "player %d", p)
		assert.Equal(t, results[0], results[p])
	}
}
