// Package bot консоль врача в Telegram: привязка профиля, входящие заявки
// с кнопками подтверждения, сводка и картинка свободных слотов на неделю
package bot

import (
	"context"

	"github.com/Freeeeeet/appointment_service/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type Controller struct {
	bot          *bot.Bot
	doctors      *service.DoctorService
	dashboard    *service.DashboardService
	booking      *service.BookingService
	availability *service.AvailabilityService
	logger       *zap.Logger
}

func NewController(
	botInstance *bot.Bot,
	doctors *service.DoctorService,
	dashboard *service.DashboardService,
	booking *service.BookingService,
	availability *service.AvailabilityService,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		bot:          botInstance,
		doctors:      doctors,
		dashboard:    dashboard,
		booking:      booking,
		availability: availability,
		logger:       logger.Named("bot"),
	}
}

// RegisterHandlers регистрирует команды и обработчик inline-кнопок
func (c *Controller) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/link", bot.MatchTypePrefix, c.HandleLink)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/pending", bot.MatchTypeExact, c.HandlePending)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/dashboard", bot.MatchTypeExact, c.HandleDashboard)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/week", bot.MatchTypeExact, c.HandleWeek)

	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackPrefix, bot.MatchTypePrefix, c.HandleAppointmentAction)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *Controller) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "link", Description: "🔗 Привязать профиль врача"},
		{Command: "pending", Description: "📥 Заявки, ожидающие решения"},
		{Command: "dashboard", Description: "📊 Сводка по записям"},
		{Command: "week", Description: "🗓 Свободные слоты на неделю"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start блокируется до отмены ctx
func (c *Controller) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
