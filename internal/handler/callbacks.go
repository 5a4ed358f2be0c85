package handler

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// Already edited by an earlier press of the same button
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		_ = c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// callbackRoute maps plain callback data to its handler. Keyboards sent
// before buttons carried a unique prefix arrive here with bare data.
func (h *Handler) callbackRoute(data string) tele.HandlerFunc {
	switch data {
	case btnDaily.Unique:
		return h.handleDaily
	case btnRetry.Unique:
		return h.handleRetry
	case btnReview.Unique:
		return h.handleReview
	case btnStats.Unique:
		return h.handleStats
	case btnStop.Unique:
		return h.handleStop
	case btnMenu.Unique:
		return h.handleMenu
	case btnNext.Unique, "loading":
		return h.handleNext
	}
	return nil
}

// handleCallback handles callback queries not matched by a registered button
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	data := cleanCallbackData(callback.Data)
	key := callback.Unique
	if key == "" {
		key = data
	}

	if route := h.callbackRoute(key); route != nil {
		return route(c)
	}

	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)
	return c.Respond()
}
