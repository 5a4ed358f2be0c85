package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wordtrainer/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	msgGenericError = "⚠️ אירעה שגיאה. נסה שוב מאוחר יותר."
	msgNoContent    = "😅 לא הצלחתי להביא מילים חדשות להיום."
	msgNoMistakes   = "🎉 אין טעויות לחזור עליהן! כל הכבוד."
	msgNoLearned    = "עדיין לא למדת מילים."
	msgStopped      = "⏹️ הופסק התרגול. תוכל להתחיל מחדש דרך /start"
	msgCompleted    = "🎉 סיימת את כל המילים להיום! כל הכבוד 🔥"
	msgDailyBonus   = "🧠 צברת 20 נקודות על התרגול של היום!\n💾 ההתקדמות נשמרה."
	msgNextPrompt   = "⬇️ לחץ על \"המשך\" למילה הבאה:"
	msgMorning      = "☀️ בוקר טוב! הגיע הזמן לתרגול היומי."
)

// handleDaily starts today's training
func (h *Handler) handleDaily(c tele.Context) error {
	userID := c.Sender().ID
	_ = c.Respond()

	ctx, cancel := flowContext()
	defer cancel()

	if err := h.startDaily(ctx, userID); err != nil {
		return h.replyFlowError(c, userID, err)
	}
	return h.sendNext(ctx, userID)
}

// handleRetry starts a session over the user's mistakes
func (h *Handler) handleRetry(c tele.Context) error {
	userID := c.Sender().ID
	_ = c.Respond()

	ctx, cancel := flowContext()
	defer cancel()

	if _, err := h.sessions.BuildRetrySession(ctx, userID); err != nil {
		return h.replyFlowError(c, userID, err)
	}
	return h.sendNext(ctx, userID)
}

// handleReview starts a session over previously learned words
func (h *Handler) handleReview(c tele.Context) error {
	userID := c.Sender().ID
	_ = c.Respond()

	ctx, cancel := flowContext()
	defer cancel()

	if _, err := h.sessions.BuildReviewSession(ctx, userID); err != nil {
		return h.replyFlowError(c, userID, err)
	}
	return h.sendNext(ctx, userID)
}

// handleNext delivers the next word of the running session
func (h *Handler) handleNext(c tele.Context) error {
	userID := c.Sender().ID
	_ = c.Respond()

	ctx, cancel := flowContext()
	defer cancel()

	return h.sendNext(ctx, userID)
}

// handleStop switches off scheduled training
func (h *Handler) handleStop(c tele.Context) error {
	userID := c.Sender().ID
	_ = c.Respond()

	if err := h.sessions.StopSession(userID); err != nil {
		return h.replyFlowError(c, userID, err)
	}

	h.logger.Info("Training stopped", zap.Int64("user_id", userID))
	return c.Send(msgStopped, backMarkup())
}

// handleStats shows the user's progress
func (h *Handler) handleStats(c tele.Context) error {
	userID := c.Sender().ID

	stats, err := h.statsService.ComputeStats(userID)
	if err != nil {
		_ = c.Respond()
		return h.replyFlowError(c, userID, err)
	}

	text := renderStats(stats, time.Now())
	if c.Callback() != nil {
		if err := c.Edit(text, backMarkup(), tele.ModeMarkdown); err != nil {
			if handleErr := h.handleEditError(err, c, userID); handleErr == nil {
				return nil // Message was already modified, just acknowledged
			}
			return c.Send(text, backMarkup(), tele.ModeMarkdown)
		}
		return c.Respond()
	}
	return c.Send(text, backMarkup(), tele.ModeMarkdown)
}

// handlePollAnswer scores a quiz answer
func (h *Handler) handlePollAnswer(c tele.Context) error {
	answer := c.PollAnswer()
	if answer == nil || len(answer.Options) == 0 {
		return nil
	}

	res, err := h.sessions.ApplyQuizAnswer(answer.PollID, answer.Options[0])
	if err != nil {
		h.logger.Error("Failed to apply quiz answer",
			zap.String("poll_id", answer.PollID),
			zap.Error(err),
		)
		return nil
	}
	if !res.Applied {
		h.logger.Debug("Ignoring answer to unknown quiz", zap.String("poll_id", answer.PollID))
		return nil
	}

	h.logger.Info("Quiz answered",
		zap.Int64("user_id", res.UserID),
		zap.String("word", res.Word),
		zap.Bool("correct", res.Correct),
	)
	return nil
}

// SendScheduledDaily starts and opens the daily session for a user who has not trained today
func (h *Handler) SendScheduledDaily(ctx context.Context, userID int64) error {
	if err := h.startDaily(ctx, userID); err != nil {
		if errors.Is(err, service.ErrNoContent) {
			return err
		}
		return fmt.Errorf("start daily: %w", err)
	}

	if _, err := h.sender.Send(tele.ChatID(userID), msgMorning); err != nil {
		h.logger.Warn("Failed to send greeting", zap.Int64("user_id", userID), zap.Error(err))
	}
	return h.sendNext(ctx, userID)
}

func (h *Handler) startDaily(ctx context.Context, userID int64) error {
	words, err := h.sessions.StartDaily(ctx, userID)
	if err != nil {
		return err
	}

	h.logger.Info("Daily training started",
		zap.Int64("user_id", userID),
		zap.Int("words", len(words)),
	)
	return nil
}

// sendNext advances the session and renders what came out of it
func (h *Handler) sendNext(ctx context.Context, userID int64) error {
	to := tele.ChatID(userID)

	step, err := h.sessions.Advance(ctx, userID, h)
	if errors.Is(err, service.ErrNoActiveSession) {
		_, err = h.sender.Send(to, menuText, mainMenuMarkup(), tele.ModeMarkdown)
		return err
	}
	if err != nil {
		h.logger.Error("Failed to advance session",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		_, sendErr := h.sender.Send(to, msgGenericError, backMarkup())
		return sendErr
	}

	if step.Completed {
		return h.sendCompletion(userID, step)
	}

	_, err = h.sender.Send(to, msgNextPrompt, nextMarkup())
	return err
}

func (h *Handler) sendCompletion(userID int64, step service.Step) error {
	to := tele.ChatID(userID)

	if _, err := h.sender.Send(to, msgCompleted, backMarkup()); err != nil {
		return err
	}
	if h.sticker != "" {
		if _, err := h.sender.Send(to, &tele.Sticker{File: tele.File{FileID: h.sticker}}); err != nil {
			h.logger.Warn("Failed to send sticker", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	if step.Bonus() {
		if _, err := h.sender.Send(to, msgDailyBonus); err != nil {
			return err
		}
	}
	return nil
}

// replyFlowError turns a service error into a user facing message
func (h *Handler) replyFlowError(c tele.Context, userID int64, err error) error {
	switch {
	case errors.Is(err, service.ErrNoContent):
		return c.Send(msgNoContent, backMarkup())
	case errors.Is(err, service.ErrNothingToRetry):
		return c.Send(msgNoMistakes, backMarkup())
	case errors.Is(err, service.ErrNothingLearned):
		return c.Send(msgNoLearned, backMarkup())
	}

	h.logger.Error("Training flow failed",
		zap.Int64("user_id", userID),
		zap.Error(err),
	)
	return c.Send(msgGenericError, backMarkup())
}

func renderStats(s service.UserStats, now time.Time) string {
	return fmt.Sprintf(
		"📊 *התקדמות אישית:*\n"+
			"- 📅 ימים מתורגלים: %d\n"+
			"- ✅ תשובות נכונות: %d\n"+
			"- ❌ תשובות שגויות: %d\n"+
			"- 🎯 אחוז הצלחה: %s%%\n"+
			"- 📘 מילים שנלמדו: %d\n"+
			"- 🗓️ יום נוכחי: %s",
		s.TrainingDays,
		s.Correct,
		s.Incorrect,
		s.SuccessRate,
		s.WordsLearned,
		s.CurrentDay.DisplayString(now),
	)
}

var _ service.Deliverer = (*Handler)(nil)
