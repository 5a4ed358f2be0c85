package middleware

import (
	"wordtrainer/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// DeniedMessage is sent to users outside the allow-list
const DeniedMessage = "⛔ אין לך גישה לבוט הזה."

// AuthMiddleware creates authentication middleware
func AuthMiddleware(authService *service.AuthService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()

			// Poll answers carry no chat to reply into, unknown voters are dropped
			if c.PollAnswer() != nil {
				if sender == nil || !authService.IsAuthorized(sender.ID) {
					return nil
				}
				return next(c)
			}

			if sender == nil {
				return nil
			}

			if !authService.IsAuthorized(sender.ID) {
				logger.Warn("Unauthorized access attempt",
					zap.Int64("user_id", sender.ID),
					zap.String("username", sender.Username),
				)
				if c.Callback() != nil {
					_ = c.Respond()
				}
				return c.Send(DeniedMessage)
			}

			// User is authorized, continue
			return next(c)
		}
	}
}
