package snooze

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SeanReardon/let-food-into-civic/internal/domain"
)

// Sender delivers one notification to one recipient. Implementations are
// expected to carry their own timeout; the coordinator never retries a
// failed send within a cycle.
type Sender interface {
	Send(ctx context.Context, r domain.Recipient) error
}

// Outcome classifies one recipient's result within a dispatch cycle.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped_snoozed"
	OutcomeFailed  Outcome = "send_failed"
)

// Result is the per-recipient record of one dispatch cycle. Used for
// logging only, never persisted.
type Result struct {
	Recipient domain.Recipient
	Outcome   Outcome
	Err       error
}

// Coordinator owns the snooze state. A single mutex guards the entire
// load-decide-send-reset sequence of Dispatch and the load-mutate-save
// sequence of Toggle, so concurrent unlock events and dashboard toggles
// serialize instead of racing on the shared file. Granularity is coarse
// on purpose: at a few events per hour, correctness wins over throughput.
type Coordinator struct {
	mu     sync.Mutex
	store  *Store
	reg    *domain.Registry
	sender Sender
	log    *zap.Logger
}

func NewCoordinator(store *Store, reg *domain.Registry, sender Sender, log *zap.Logger) *Coordinator {
	return &Coordinator{store: store, reg: reg, sender: sender, log: log}
}

// Dispatch runs one full unlock cycle: load state, attempt a send to every
// recipient whose flag is clear, then unconditionally clear every flag and
// persist. Sends run concurrently but Dispatch does not return until all
// attempts complete. The reset happens regardless of send failures: the
// guarantee is "snooze applies to the next event", not "until an SMS
// succeeds". Errors never propagate to the caller.
func (c *Coordinator) Dispatch(ctx context.Context) []Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.store.Load()
	recipients := c.reg.All()
	results := make([]Result, len(recipients))

	var g errgroup.Group
	for i, r := range recipients {
		if r.Household() && state.Snoozed(r.ID) {
			results[i] = Result{Recipient: r, Outcome: OutcomeSkipped}
			c.log.Info(fmt.Sprintf("😴 Skipping %s (snoozed)", r.Name))
			continue
		}
		g.Go(func() error {
			if err := c.sender.Send(ctx, r); err != nil {
				results[i] = Result{Recipient: r, Outcome: OutcomeFailed, Err: err}
				c.log.Error("❌ SMS send failed",
					zap.String("to", r.Phone), zap.Error(err))
				return nil
			}
			results[i] = Result{Recipient: r, Outcome: OutcomeSent}
			c.log.Info("✅ SMS sent", zap.String("to", r.Phone))
			return nil
		})
	}
	_ = g.Wait()

	// Unconditional reset, even when every send failed.
	if err := c.store.Save(domain.NewSnoozeState()); err != nil {
		c.log.Error("failed to reset snooze state", zap.Error(err))
	} else {
		c.log.Info("🔄 All snooze states reset")
	}

	var sent, failed, snoozed int
	for _, res := range results {
		switch res.Outcome {
		case OutcomeSent:
			sent++
		case OutcomeFailed:
			failed++
		case OutcomeSkipped:
			snoozed++
		}
	}
	c.log.Info("📊 SMS notification summary",
		zap.Int("succeeded", sent),
		zap.Int("failed", failed),
		zap.Int("snoozed", snoozed),
		zap.Int("total", len(results)))

	return results
}

// Toggle sets one recipient's skip-next flag and returns the full
// resulting state so the caller can render a consistent view without a
// second read. Serialized against Dispatch by the same lock.
func (c *Coordinator) Toggle(id domain.RecipientID, snoozed bool) (domain.SnoozeState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.store.Load().Set(id, snoozed)
	if err := c.store.Save(state); err != nil {
		return state, err
	}

	emoji := "🔔"
	if snoozed {
		emoji = "😴"
	}
	c.log.Info(fmt.Sprintf("%s %s snooze set to %t", emoji, id, snoozed))
	return state, nil
}

// State returns the current snooze state for display.
func (c *Coordinator) State() domain.SnoozeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Load()
}
