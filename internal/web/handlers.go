package web

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SeanReardon/let-food-into-civic/internal/domain"
	"github.com/SeanReardon/let-food-into-civic/internal/telnyx"
)

const (
	stopReply = "You have been unsubscribed from gate unlock notifications. " +
		"Reply START to resubscribe."
	startReply = "You have been subscribed to gate unlock notifications. " +
		"Reply STOP to unsubscribe."
	helpReply = "Let Food Into Civic: Automatic gate unlock notifications for deliveries. " +
		"Very low volume - you'll only get notified when someone uses the callbox. " +
		"No action needed - just kick back and enjoy the rare notification! " +
		"Reply STOP to unsubscribe."
	unknownReply = "Unknown command. Reply STOP to unsubscribe, HELP for assistance."
)

func (r *Router) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                   "healthy",
		"service":                  "let-food-into-civic",
		"notifications_configured": len(r.reg.All()) > 0,
		"telnyx_configured":        r.cfg.APIConfigured,
	})
}

// handleVoice answers the call box: record the unlock event, kick off one
// notification cycle in the background, and return the TeXML unlock
// sequence. Notification trouble never fails this response.
func (r *Router) handleVoice(c *gin.Context) {
	caller := firstFormValue(c, "From", "from")
	callID := firstFormValue(c, "CallSid", "call_sid")

	r.log.Info("📞 incoming call",
		zap.String("call_id", callID),
		zap.String("from", caller),
		zap.String("to", firstFormValue(c, "To", "to")))

	if err := r.repo.RecordUnlock(c.Request.Context(), caller, time.Now().UTC()); err != nil {
		r.log.Error("failed to record unlock event", zap.Error(err))
	}

	go r.coord.Dispatch(context.Background())

	texml := telnyx.UnlockTeXML(r.cfg.DTMFAudioURL, r.cfg.Iterations, r.cfg.PauseSeconds)
	c.Data(http.StatusOK, "application/xml", []byte(texml))
}

// handleSMS processes inbound STOP/HELP/START replies. Telnyx posts
// webhooks for all message events; everything but inbound
// message.received is acknowledged and ignored.
func (r *Router) handleSMS(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "skipped", "reason": "empty body"})
		return
	}

	msg, err := telnyx.ParseInboundMessage(body)
	if err != nil {
		r.log.Warn("unparseable sms webhook", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "skipped", "reason": "unparseable"})
		return
	}
	if !msg.Received() {
		c.JSON(http.StatusOK, gin.H{"status": "skipped", "reason": "not an inbound message"})
		return
	}
	if msg.From == r.cfg.OwnNumber {
		c.JSON(http.StatusOK, gin.H{"status": "skipped", "reason": "message from self"})
		return
	}

	command := strings.ToUpper(strings.TrimSpace(msg.Text))
	r.log.Info("📱 incoming sms",
		zap.String("from", msg.From), zap.String("command", command))

	ctx := c.Request.Context()
	now := time.Now().UTC()
	var reply string

	switch command {
	case "STOP":
		if err := r.repo.SetOptOut(ctx, msg.From, "sms_reply", now); err != nil {
			r.log.Error("opt-out failed", zap.Error(err))
		}
		reply = stopReply
	case "START", "YES", "OPTIN", "SUBSCRIBE":
		if err := r.repo.SetOptIn(ctx, msg.From, "sms_reply", now); err != nil {
			r.log.Error("opt-in failed", zap.Error(err))
		}
		reply = startReply
	case "HELP":
		reply = helpReply
	default:
		reply = unknownReply
	}

	if r.cfg.OwnNumber != "" {
		if err := r.replier.Reply(ctx, msg.From, reply); err != nil {
			r.log.Error("❌ failed to send command reply",
				zap.String("to", msg.From), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

// handleIndex shows the snooze dashboard to local-network callers and the
// public landing page to everyone else. ?view= overrides detection, but
// view=local still requires a local address.
func (r *Router) handleIndex(c *gin.Context) {
	local := isLocalRequest(c.Request)

	switch strings.ToLower(c.Query("view")) {
	case "local":
		if !local {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied - local network only"})
			return
		}
		r.renderSnoozeUI(c)
	case "public":
		r.render(c, "public.html", nil)
	default:
		if local {
			r.renderSnoozeUI(c)
		} else {
			r.render(c, "public.html", nil)
		}
	}
}

type snoozeCard struct {
	ID      string
	Name    string
	Phone   string
	Snoozed bool
}

func (r *Router) renderSnoozeUI(c *gin.Context) {
	state := r.coord.State()
	cards := make([]snoozeCard, 0, len(domain.HouseholdIDs))
	for _, rcpt := range r.reg.All() {
		if !rcpt.Household() {
			continue
		}
		cards = append(cards, snoozeCard{
			ID:      string(rcpt.ID),
			Name:    rcpt.Name,
			Phone:   domain.FormatPhone(rcpt.Phone),
			Snoozed: state.Snoozed(rcpt.ID),
		})
	}
	r.render(c, "snooze.html", gin.H{"Recipients": cards})
}

func (r *Router) handleStatus(c *gin.Context) {
	recent, err := r.repo.RecentUnlocks(c.Request.Context(), 10)
	if err != nil {
		r.log.Error("failed to load recent unlocks", zap.Error(err))
	}
	r.render(c, "status.html", gin.H{
		"UnlockDigit":      r.cfg.UnlockDigit,
		"TelnyxConfigured": r.cfg.APIConfigured,
		"NotifyCount":      len(r.reg.All()),
		"RecentUnlocks":    recent,
	})
}

func (r *Router) handleConsent(c *gin.Context) {
	r.render(c, "consent.html", nil)
}

type snoozeRequest struct {
	Recipient string `json:"recipient" form:"recipient"`
	Snoozed   *bool  `json:"snoozed" form:"snoozed"`
}

// handleSnoozeToggle is the Toggle API: set one recipient's skip-next
// flag and echo the full resulting state. Local network only; the
// response is success=false only when the atomic save itself fails.
func (r *Router) handleSnoozeToggle(c *gin.Context) {
	if !isLocalRequest(c.Request) {
		r.log.Warn("blocked snooze request from remote address",
			zap.String("ip", clientIP(c.Request)))
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied - local network only"})
		return
	}

	isJSON := strings.Contains(c.ContentType(), "application/json")

	var req snoozeRequest
	if isJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	} else {
		req.Recipient = c.PostForm("recipient")
		snoozed := strings.EqualFold(c.PostForm("snoozed"), "true")
		req.Snoozed = &snoozed
	}

	id, err := domain.ParseRecipientID(strings.ToLower(req.Recipient))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": `Invalid recipient. Must be "linda" or "sean"`})
		return
	}
	snoozed := req.Snoozed != nil && *req.Snoozed

	state, err := r.coord.Toggle(id, snoozed)
	if err != nil {
		r.log.Error("snooze toggle failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to persist snooze state"})
		return
	}

	if !isJSON {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"linda":   state.Snoozed(domain.RecipientLinda),
		"sean":    state.Snoozed(domain.RecipientSean),
	})
}

type testSMSRequest struct {
	To string `json:"to"`
}

// handleTestSMS sends a test message to verify configuration.
func (r *Router) handleTestSMS(c *gin.Context) {
	if !isLocalRequest(c.Request) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied - local network only"})
		return
	}
	if !r.cfg.APIConfigured || r.cfg.OwnNumber == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Telnyx not configured"})
		return
	}

	var req testSMSRequest
	_ = c.ShouldBindJSON(&req)
	to := req.To
	if to == "" {
		if all := r.reg.All(); len(all) > 0 {
			to = all[0].Phone
		}
	}
	if to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No phone number provided and no notify numbers configured"})
		return
	}

	const text = "🧪 Test message from let-food-into-civic! Your SMS notifications are working."
	if err := r.replier.Reply(c.Request.Context(), to, text); err != nil {
		r.log.Error("test sms failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "to": to})
}

func (r *Router) render(c *gin.Context, name string, data any) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := r.tmpl.ExecuteTemplate(c.Writer, name, data); err != nil {
		r.log.Error("template render failed", zap.String("template", name), zap.Error(err))
	}
}

// firstFormValue returns the first non-empty form/query value among keys.
// Telnyx is inconsistent about casing across webhook types.
func firstFormValue(c *gin.Context, keys ...string) string {
	for _, k := range keys {
		if v := c.Request.FormValue(k); v != "" {
			return v
		}
	}
	return "unknown"
}
