// Package progress reports simulation run milestones — quiescence,
// deadlock, time-budget exhaustion — to the host application, the way the
// chaos runner's ProgressReporter reports fault-injection phases.
package progress

import (
	"fmt"
	"io"

	"github.com/jihwankim/dscale-sim/pkg/jiffy"
	"github.com/rs/zerolog"
)

// Reporter receives simulation lifecycle events. Implementations must not
// block the simulation loop for long — they are called synchronously
// between steps.
type Reporter interface {
	// StepAdvanced reports that the clock advanced to now via an event on
	// the named actor ("network" or "timer").
	StepAdvanced(now jiffy.Jiffies, actor string)
	// Converged reports that the run's stop condition was satisfied at now.
	Converged(now jiffy.Jiffies)
	// Deadlocked reports that neither actor had a pending event before the
	// stop condition was satisfied.
	Deadlocked(now jiffy.Jiffies)
	// BudgetExhausted reports that the next event would exceed the
	// configured time budget.
	BudgetExhausted(now, budget jiffy.Jiffies)
}

// Noop discards every event. It is the Builder default.
type Noop struct{}

func (Noop) StepAdvanced(jiffy.Jiffies, string)       {}
func (Noop) Converged(jiffy.Jiffies)                  {}
func (Noop) Deadlocked(jiffy.Jiffies)                 {}
func (Noop) BudgetExhausted(jiffy.Jiffies, jiffy.Jiffies) {}

// Text writes a line of human-readable text per event. StepAdvanced lines
// are the chattiest and are only written when Verbose is set, mirroring
// how the chaos runner keeps per-fault progress lines out of the default
// output.
type Text struct {
	Out     io.Writer
	Verbose bool
}

func NewText(out io.Writer, verbose bool) *Text {
	return &Text{Out: out, Verbose: verbose}
}

func (t *Text) StepAdvanced(now jiffy.Jiffies, actor string) {
	if t.Verbose {
		fmt.Fprintf(t.Out, "[step] t=%s actor=%s\n", now, actor)
	}
}

func (t *Text) Converged(now jiffy.Jiffies) {
	fmt.Fprintf(t.Out, "[converged] t=%s\n", now)
}

func (t *Text) Deadlocked(now jiffy.Jiffies) {
	fmt.Fprintf(t.Out, "[deadlock] t=%s: no pending events before stop condition was met\n", now)
}

func (t *Text) BudgetExhausted(now, budget jiffy.Jiffies) {
	fmt.Fprintf(t.Out, "[budget-exhausted] next event at t=%s exceeds budget %s\n", now, budget)
}

// FromLogger adapts a zerolog.Logger into a Reporter, for hosts that want
// progress folded into their structured log stream instead of a separate
// text stream.
type FromLogger struct {
	Logger zerolog.Logger
}

func NewFromLogger(l zerolog.Logger) *FromLogger {
	return &FromLogger{Logger: l}
}

func (f *FromLogger) StepAdvanced(now jiffy.Jiffies, actor string) {
	f.Logger.Debug().Str("actor", actor).Str("t", now.String()).Msg("step")
}

func (f *FromLogger) Converged(now jiffy.Jiffies) {
	f.Logger.Info().Str("t", now.String()).Msg("converged")
}

func (f *FromLogger) Deadlocked(now jiffy.Jiffies) {
	f.Logger.Warn().Str("t", now.String()).Msg("deadlocked")
}

func (f *FromLogger) BudgetExhausted(now, budget jiffy.Jiffies) {
	f.Logger.Warn().Str("t", now.String()).Str("budget", budget.String()).Msg("time budget exhausted")
}
