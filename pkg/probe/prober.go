package probe

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"reservewatch/pkg/browser"
	"reservewatch/pkg/config"
	"reservewatch/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is the subset of the browser session a probe drives.
type Session interface {
	Open(ctx context.Context, url string) error
	ClearClientState(ctx context.Context) error
	WaitFor(ctx context.Context, sel browser.Selector, timeout time.Duration) (browser.Element, error)
	Click(ctx context.Context, el browser.Element) error
}

type step struct {
	waypoint Waypoint
	label    string
	selector browser.Selector
	click    bool
}

// Prober runs the model -> color -> capacity -> confirmation sequence.
type Prober struct {
	session Session
	target  config.TargetConfig
	timeout time.Duration
	steps   []step
}

// New creates a prober bound to session. timeout bounds every element wait.
func New(session Session, target *config.TargetConfig, timeout time.Duration) *Prober {
	t := *target
	return &Prober{
		session: session,
		target:  t,
		timeout: timeout,
		steps: []step{
			{WaypointModel, t.Model, browser.TextSelector(t.Model), true},
			{WaypointColor, t.Color, browser.TextSelector(t.Color), true},
			{WaypointCapacity, t.Capacity, browser.TextSelector(t.Capacity), true},
			{WaypointConfirmation, "", browser.ConfirmSelector(), false},
		},
	}
}

// Probe executes one full check and always returns exactly one verdict. It
// never retries; a failed step ends the probe.
func (p *Prober) Probe(ctx context.Context) (v Verdict) {
	probeID := uuid.NewString()
	ctx = logger.WithProbeID(ctx, probeID)
	log := logger.FromContext(ctx)
	start := time.Now()
	current := WaypointOpen

	defer func() {
		if r := recover(); r != nil {
			v = Verdict{
				Kind:       Errored,
				Waypoint:   current,
				Detail:     fmt.Sprintf("panic at %s: %v", current, r),
				Trace:      string(debug.Stack()),
				Unexpected: true,
			}
		}
		v.ProbeID = probeID
		v.CheckedAt = start
		v.Duration = time.Since(start)

		log.Info("Probe finished",
			zap.Stringer("verdict", v.Kind),
			zap.String("waypoint", string(v.Waypoint)),
			zap.Duration("duration", v.Duration))
	}()

	err := p.run(ctx, &current)
	return p.classify(ctx, current, err)
}

func (p *Prober) run(ctx context.Context, current *Waypoint) error {
	log := logger.FromContext(ctx)

	if err := p.session.ClearClientState(ctx); err != nil {
		return err
	}
	if err := p.session.Open(ctx, p.target.URL); err != nil {
		return err
	}

	for _, s := range p.steps {
		*current = s.waypoint
		if err := ctx.Err(); err != nil {
			return err
		}

		el, err := p.session.WaitFor(ctx, s.selector, p.timeout)
		if err != nil {
			return err
		}
		if !s.click {
			continue
		}
		if err := p.session.Click(ctx, el); err != nil {
			return err
		}
		log.Debug("Selected option", zap.String("waypoint", string(s.waypoint)), zap.String("label", s.label))
	}
	return nil
}

func (p *Prober) classify(ctx context.Context, at Waypoint, err error) Verdict {
	if err == nil {
		return Verdict{Kind: Available, Target: p.target, Waypoint: WaypointConfirmation}
	}

	if errors.Is(err, browser.ErrNotFound) {
		return Verdict{Kind: Unavailable, Waypoint: at}
	}

	var fe *browser.FaultError
	if errors.As(err, &fe) || errors.Is(err, browser.ErrSessionClosed) {
		return Verdict{Kind: Errored, Waypoint: at, Detail: fmt.Sprintf("%s: %v", at, err)}
	}

	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return Verdict{Kind: Errored, Waypoint: at, Detail: fmt.Sprintf("%s: probe cancelled: %v", at, err)}
	}

	return Verdict{
		Kind:       Errored,
		Waypoint:   at,
		Detail:     fmt.Sprintf("%s: %v", at, err),
		Trace:      errorChain(err),
		Unexpected: true,
	}
}

// errorChain renders every wrapped error on its own line, outermost first.
func errorChain(err error) string {
	var b strings.Builder
	for depth := 0; err != nil; depth++ {
		fmt.Fprintf(&b, "%s%T: %v\n", strings.Repeat("  ", depth), err, err)
		err = errors.Unwrap(err)
	}
	return b.String()
}
