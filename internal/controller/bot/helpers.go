package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/Freeeeeet/appointment_service/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const callbackPrefix = "appt:"

var errInvalidCallback = errors.New("invalid callback data format")

// AnswerCallback отвечает на callback query (без alert)
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// actionCallback данные кнопки решения по заявке.
// Например: "appt:APPROVED:6f1c...-..."
func actionCallback(action model.AppointmentStatus, appointmentID uuid.UUID) string {
	return callbackPrefix + string(action) + ":" + appointmentID.String()
}

// ParseActionCallback обратное к actionCallback
func ParseActionCallback(data string) (model.AppointmentStatus, uuid.UUID, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0]+":" != callbackPrefix {
		return "", uuid.Nil, errInvalidCallback
	}

	action, err := model.ParseAction(parts[1])
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: %v", errInvalidCallback, err)
	}
	id, err := uuid.Parse(parts[2])
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: %v", errInvalidCallback, err)
	}
	return action, id, nil
}

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return "❌ Профиль или запись не найдены. Привяжите профиль командой /link"
	case errors.Is(err, service.ErrUnauthorized):
		return "❌ Профиль ещё не подтверждён администратором"
	case errors.Is(err, service.ErrInvalidTransition):
		return "⚠️ По этой заявке уже принято решение"
	case errors.Is(err, service.ErrConflict):
		return "❌ Этот профиль уже привязан к другому аккаунту"
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, errInvalidCallback):
		return "❌ Неверный формат данных"
	default:
		return "❌ Произошла ошибка. Попробуйте позже."
	}
}

// sendError пишет пользователю понятное сообщение, внутренние ошибки уходят в лог
func (c *Controller) sendError(ctx context.Context, b *bot.Bot, chatID int64, err error) {
	if !isExpected(err) {
		c.logger.Error("Bot request failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   ErrorMessage(err),
	})
}

func isExpected(err error) bool {
	for _, target := range []error{
		service.ErrNotFound,
		service.ErrUnauthorized,
		service.ErrInvalidTransition,
		service.ErrConflict,
		service.ErrInvalidInput,
		errInvalidCallback,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// currentDoctor профиль, привязанный к Telegram-аккаунту отправителя
func (c *Controller) currentDoctor(ctx context.Context, telegramID int64) (*model.DoctorProfile, error) {
	return c.doctors.GetByTelegramID(ctx, telegramID)
}

// pendingKeyboard кнопки подтверждения и отклонения заявки
func pendingKeyboard(appointmentID uuid.UUID) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Подтвердить", CallbackData: actionCallback(model.AppointmentStatusApproved, appointmentID)},
				{Text: "❌ Отклонить", CallbackData: actionCallback(model.AppointmentStatusRejected, appointmentID)},
			},
		},
	}
}
