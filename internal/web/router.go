// Package web is the inbound HTTP surface: Telnyx webhooks, the
// local-network snooze dashboard, and the public pages.
package web

import (
	"context"
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SeanReardon/let-food-into-civic/internal/domain"
	"github.com/SeanReardon/let-food-into-civic/internal/snooze"
	"github.com/SeanReardon/let-food-into-civic/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Dispatcher triggers one unlock notification cycle.
type Dispatcher interface {
	Dispatch(ctx context.Context) []snooze.Result
	Toggle(id domain.RecipientID, snoozed bool) (domain.SnoozeState, error)
	State() domain.SnoozeState
}

// Replier sends one-off SMS replies (command confirmations, test messages).
type Replier interface {
	Reply(ctx context.Context, to, text string) error
}

// Config carries the handler-visible configuration.
type Config struct {
	UnlockDigit   string
	Iterations    int
	PauseSeconds  float64
	DTMFAudioURL  string
	OwnNumber     string // our Telnyx number, E.164; "" if unconfigured
	APIConfigured bool
}

// Router wires HTTP endpoints to the coordinator, stores and notifier.
type Router struct {
	log     *zap.Logger
	cfg     Config
	coord   Dispatcher
	reg     *domain.Registry
	repo    store.Repo
	replier Replier
	tmpl    *template.Template
}

// New builds the gin engine with all routes registered.
func New(log *zap.Logger, cfg Config, coord Dispatcher, reg *domain.Registry, repo store.Repo, replier Replier) (*gin.Engine, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Router{
		log:     log,
		cfg:     cfg,
		coord:   coord,
		reg:     reg,
		repo:    repo,
		replier: replier,
		tmpl:    tmpl,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", r.handleHealth)
	engine.GET("/webhook/voice", r.handleVoice)
	engine.POST("/webhook/voice", r.handleVoice)
	engine.GET("/webhook/sms", r.handleSMS)
	engine.POST("/webhook/sms", r.handleSMS)
	engine.GET("/", r.handleIndex)
	engine.GET("/status", r.handleStatus)
	engine.GET("/sms-consent", r.handleConsent)
	engine.POST("/admin/snooze", r.handleSnoozeToggle)
	engine.POST("/admin/test-sms", r.handleTestSMS)

	return engine, nil
}
