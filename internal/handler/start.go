package handler

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const menuText = "🧭 *תפריט ראשי* – בחר פעולה:"

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	h.logger.Info("User started bot",
		zap.Int64("user_id", c.Sender().ID),
		zap.String("username", c.Sender().Username),
	)

	return c.Send(menuText, mainMenuMarkup(), tele.ModeMarkdown)
}

// handleMenu shows the main menu in place of the pressed message
func (h *Handler) handleMenu(c tele.Context) error {
	userID := c.Sender().ID

	if err := c.Edit(menuText, mainMenuMarkup(), tele.ModeMarkdown); err != nil {
		if handleErr := h.handleEditError(err, c, userID); handleErr == nil {
			return nil // Message was already modified, just acknowledged
		}
		return c.Send(menuText, mainMenuMarkup(), tele.ModeMarkdown)
	}
	return c.Respond()
}
