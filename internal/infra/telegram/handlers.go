package telegram

import (
	"context"

	"school_schedule_bot/internal/app"
	"school_schedule_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// HandlerSet wires the bot handlers to the application services. The admin
// flows are stateful, so all handler groups share one SessionStore and are
// registered together.
type HandlerSet struct {
	bot         *telebot.Bot
	cfg         *config.AppConfig
	schedule    *app.ScheduleService
	preferences *app.PreferenceService
	admin       *app.AdminService
	sessions    *SessionStore
	logger      *logrus.Entry
}

func NewHandlerSet(
	b *telebot.Bot,
	cfg *config.AppConfig,
	scheduleService *app.ScheduleService,
	preferenceService *app.PreferenceService,
	adminService *app.AdminService,
	baseLogger *logrus.Entry,
) *HandlerSet {
	return &HandlerSet{
		bot:         b,
		cfg:         cfg,
		schedule:    scheduleService,
		preferences: preferenceService,
		admin:       adminService,
		sessions:    NewSessionStore(),
		logger:      baseLogger,
	}
}

// Register attaches every command, callback and the text router to the bot.
func (h *HandlerSet) Register(ctx context.Context) {
	h.registerUserHandlers(ctx)
	h.registerAdminHandlers(ctx)
	h.registerTextRouter(ctx)
}
