// Package notify turns the Telnyx client and the consent store into the
// per-recipient sender the dispatch coordinator drives.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SeanReardon/let-food-into-civic/internal/domain"
	"github.com/SeanReardon/let-food-into-civic/internal/store"
)

const (
	unlockMessage  = "the civic callbox was answered and I did 5s, <3 lfic."
	welcomeMessage = "Welcome to Let Food Into Civic gate unlock notifications! " +
		"You'll receive alerts when deliveries arrive. " +
		"Reply STOP to unsubscribe, HELP for assistance."
)

var ErrNotOptedIn = errors.New("recipient not opted in")

// Messenger is the outbound SMS surface the notifier needs.
type Messenger interface {
	SendMessage(ctx context.Context, from, to, text string) error
}

// Notifier sends unlock notifications, enforcing the durable opt-in
// record before every send. It satisfies snooze.Sender.
type Notifier struct {
	client Messenger
	repo   store.Repo
	from   string // our Telnyx number, E.164
	log    *zap.Logger
}

func New(client Messenger, repo store.Repo, from string, log *zap.Logger) *Notifier {
	return &Notifier{client: client, repo: repo, from: from, log: log}
}

// Send delivers the unlock notification to one recipient. Numbers that
// are opted out, or were never opted in, are refused; that counts as a
// send failure for the dispatch summary but is never retried.
func (n *Notifier) Send(ctx context.Context, r domain.Recipient) error {
	status, err := n.repo.OptInStatus(ctx, r.Phone)
	if err != nil {
		return fmt.Errorf("opt-in lookup for %s: %w", r.Phone, err)
	}
	if status != store.StatusOptedIn {
		if status == store.StatusOptedOut {
			n.log.Warn("🛑 Skipping SMS, recipient opted out", zap.String("to", r.Phone))
		} else {
			n.log.Warn("⚠️ Skipping SMS, recipient not opted in", zap.String("to", r.Phone))
		}
		return fmt.Errorf("%w: %s", ErrNotOptedIn, r.Phone)
	}
	return n.client.SendMessage(ctx, n.from, r.Phone, unlockMessage)
}

// Reply sends an arbitrary text, used for STOP/HELP/START confirmations.
func (n *Notifier) Reply(ctx context.Context, to, text string) error {
	return n.client.SendMessage(ctx, n.from, to, text)
}

// EnsureOptIns auto-opts-in configured numbers that have never been
// tracked, sending each a welcome message. Numbers that opted out stay
// opted out.
func (n *Notifier) EnsureOptIns(ctx context.Context, recipients []domain.Recipient) error {
	for _, r := range recipients {
		rec, err := n.repo.GetOptIn(ctx, r.Phone)
		if err != nil {
			return err
		}
		if rec != nil {
			if rec.Status == store.StatusOptedOut {
				n.log.Info("⚠️ configured number is opted out, respecting opt-out",
					zap.String("phone", r.Phone))
			}
			continue
		}
		if err := n.repo.SetOptIn(ctx, r.Phone, "initial_config", time.Now().UTC()); err != nil {
			return err
		}
		n.log.Info("📋 auto-opted-in configured number", zap.String("phone", r.Phone))
		if err := n.client.SendMessage(ctx, n.from, r.Phone, welcomeMessage); err != nil {
			n.log.Error("❌ welcome message failed",
				zap.String("to", r.Phone), zap.Error(err))
		}
	}
	return nil
}
