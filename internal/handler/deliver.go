package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wordtrainer/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escapeMarkdown neutralizes the characters legacy Markdown treats as entity delimiters
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// DeliverWord sends the word card followed by its pronunciation.
// Audio problems are logged and the card is still considered delivered.
func (h *Handler) DeliverWord(ctx context.Context, userID int64, entry domain.WordEntry) error {
	text := fmt.Sprintf("🟩 *%s* – %s\n📝 %s",
		escapeMarkdown(entry.Word),
		escapeMarkdown(entry.Translation),
		escapeMarkdown(entry.Example),
	)
	if _, err := h.sender.Send(tele.ChatID(userID), text, tele.ModeMarkdown); err != nil {
		return fmt.Errorf("send word: %w", err)
	}

	h.sendAudio(ctx, userID, entry.Word)
	return nil
}

func (h *Handler) sendAudio(ctx context.Context, userID int64, word string) {
	if h.audio == nil {
		return
	}

	path, err := h.audio.Synthesize(ctx, word)
	if err != nil {
		h.logger.Warn("Failed to synthesize audio",
			zap.Int64("user_id", userID),
			zap.String("word", word),
			zap.Error(err),
		)
		return
	}
	defer h.audio.Cleanup(path)

	audio := &tele.Audio{File: tele.FromDisk(path), FileName: word + ".mp3"}
	if _, err := h.sender.Send(tele.ChatID(userID), audio); err != nil {
		h.logger.Warn("Failed to send audio",
			zap.Int64("user_id", userID),
			zap.String("word", word),
			zap.Error(err),
		)
	}
}

// DeliverQuiz sends a quiz poll and returns the poll id Telegram assigned
func (h *Handler) DeliverQuiz(ctx context.Context, userID int64, q domain.Quiz) (string, error) {
	poll := &tele.Poll{
		Type:          tele.PollQuiz,
		Question:      fmt.Sprintf("❓ מהי המילה המתאימה ל: %s", q.Prompt),
		CorrectOption: q.CorrectIndex,
		Explanation:   fmt.Sprintf("✔️ התשובה הנכונה: %s", q.Word),
		Anonymous:     false,
	}
	poll.AddOptions(q.Options...)

	msg, err := h.sender.Send(tele.ChatID(userID), poll)
	if err != nil {
		return "", fmt.Errorf("send quiz: %w", err)
	}
	if msg == nil || msg.Poll == nil || msg.Poll.ID == "" {
		return "", errors.New("send quiz: response carries no poll")
	}
	return msg.Poll.ID, nil
}
