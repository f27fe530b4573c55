package bot

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleAppointmentAction нажатие ✅/❌ под заявкой
func (c *Controller) HandleAppointmentAction(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	action, appointmentID, err := ParseActionCallback(callback.Data)
	if err != nil {
		AnswerCallback(ctx, b, callback.ID, ErrorMessage(err))
		return
	}

	doctor, err := c.currentDoctor(ctx, callback.From.ID)
	if err != nil {
		AnswerCallback(ctx, b, callback.ID, ErrorMessage(err))
		return
	}

	appointment, err := c.booking.Act(ctx, appointmentID, doctor.ID, action)
	if err != nil {
		if !isExpected(err) {
			c.logger.Error("Failed to act on appointment",
				zap.String("appointment_id", appointmentID.String()),
				zap.Error(err),
			)
		}
		AnswerCallback(ctx, b, callback.ID, ErrorMessage(err))
		return
	}

	AnswerCallback(ctx, b, callback.ID, statusTitle(appointment.Status))

	msg := callback.Message.Message
	if msg == nil {
		return
	}
	_, err = b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      fmt.Sprintf("%s\n\nРешение принято.", formatAppointment(appointment)),
	})
	if err != nil {
		c.logger.Warn("Failed to update appointment message", zap.Error(err))
	}
}
