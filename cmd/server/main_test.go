package main

import (
	"testing"

	"github.com/Freeeeeet/appointment_service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewBotController_DisabledWithoutToken(t *testing.T) {
	controller, err := newBotController(&config.Config{}, zap.NewNop(), nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, controller)
}

func TestNewBotController_InvalidTokenFailsBeforeStart(t *testing.T) {
	// Токен с пробелами отклоняется без обращения к Telegram API
	controller, err := newBotController(&config.Config{TelegramToken: " invalid "}, zap.NewNop(), nil, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create telegram bot")
	assert.Nil(t, controller)
}
