package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/appointment_service/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const helpText = "📚 Справка по командам:\n\n" +
	"/link <id профиля> - Привязать профиль врача к этому чату\n" +
	"/pending - Заявки, ожидающие решения\n" +
	"/dashboard - Сводка по записям\n" +
	"/week - Свободные слоты на неделю\n" +
	"/help - Показать эту справку"

// HandleStart обрабатывает команду /start
func (c *Controller) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := fmt.Sprintf("👋 Привет, %s!\n\n"+
		"Это консоль врача: здесь приходят новые заявки на приём.\n"+
		"Ваш Telegram ID: %d\n\n%s",
		update.Message.From.FirstName, update.Message.From.ID, helpText)

	if doctor, err := c.currentDoctor(ctx, update.Message.From.ID); err == nil {
		text += fmt.Sprintf("\n\n🔗 Привязан профиль: %s", doctor.FullName())
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
}

// HandleHelp обрабатывает команду /help
func (c *Controller) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   helpText,
	})
}

// HandleLink обрабатывает команду /link <doctorProfileId>
func (c *Controller) HandleLink(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	arg := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/link"))
	doctorID, err := uuid.Parse(arg)
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Укажите ID профиля врача: /link <id>",
		})
		return
	}

	doctor, err := c.doctors.LinkTelegram(ctx, doctorID, update.Message.From.ID)
	if err != nil {
		c.sendError(ctx, b, chatID, err)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("✅ Профиль %s привязан. Новые заявки смотрите командой /pending", doctor.FullName()),
	})
}

// HandlePending отправляет каждую ожидающую заявку отдельным сообщением с кнопками
func (c *Controller) HandlePending(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	doctor, err := c.currentDoctor(ctx, update.Message.From.ID)
	if err != nil {
		c.sendError(ctx, b, chatID, err)
		return
	}

	pending, err := c.dashboard.Pending(ctx, doctor.ID)
	if err != nil {
		c.sendError(ctx, b, chatID, err)
		return
	}

	if len(pending) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📭 Новых заявок нет",
		})
		return
	}

	for _, a := range pending {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        formatAppointment(a),
			ReplyMarkup: pendingKeyboard(a.ID),
		})
	}
}

// HandleDashboard обрабатывает команду /dashboard
func (c *Controller) HandleDashboard(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	doctor, err := c.currentDoctor(ctx, update.Message.From.ID)
	if err != nil {
		c.sendError(ctx, b, chatID, err)
		return
	}

	dashboard, err := c.dashboard.Dashboard(ctx, doctor.ID)
	if err != nil {
		c.sendError(ctx, b, chatID, err)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   formatDashboard(dashboard),
	})
}

// HandleWeek рисует свободные слоты на ближайшие дни
func (c *Controller) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	doctor, err := c.currentDoctor(ctx, update.Message.From.ID)
	if err != nil {
		c.sendError(ctx, b, chatID, err)
		return
	}

	availability, err := c.availability.Plan(ctx, service.PlanRequest{DoctorID: doctor.ID})
	if err != nil {
		c.sendError(ctx, b, chatID, err)
		return
	}

	img, err := GenerateAvailabilityImage(doctor.FullName(), availability.SlotDetails)
	if err != nil {
		c.logger.Error("Failed to render availability image", zap.Error(err))
		c.sendError(ctx, b, chatID, err)
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: "week.png", Data: bytes.NewReader(img)},
		Caption: "🗓 Свободные слоты на неделю",
	})
	if err != nil {
		c.logger.Error("Failed to send availability image", zap.Error(err))
	}
}
