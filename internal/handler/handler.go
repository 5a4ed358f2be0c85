package handler

import (
	"context"
	"time"

	"wordtrainer/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// flowTimeout bounds one user action, including content fetches
const flowTimeout = 2 * time.Minute

// Sender is the part of the bot API the handler talks through
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// AudioProvider produces pronunciation files
type AudioProvider interface {
	Synthesize(ctx context.Context, word string) (string, error)
	Cleanup(path string)
}

// Handler manages all bot interactions
type Handler struct {
	bot          *tele.Bot
	sender       Sender
	authService  *service.AuthService
	sessions     *service.SessionService
	statsService *service.StatsService
	audio        AudioProvider
	sticker      string
	logger       *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	authService *service.AuthService,
	sessions *service.SessionService,
	statsService *service.StatsService,
	audio AudioProvider,
	sticker string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:          bot,
		sender:       bot,
		authService:  authService,
		sessions:     sessions,
		statsService: statsService,
		audio:        audio,
		sticker:      sticker,
		logger:       logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/menu", h.handleStart)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnDaily, h.handleDaily)
	h.bot.Handle(&btnRetry, h.handleRetry)
	h.bot.Handle(&btnReview, h.handleReview)
	h.bot.Handle(&btnStats, h.handleStats)
	h.bot.Handle(&btnStop, h.handleStop)
	h.bot.Handle(&btnMenu, h.handleMenu)
	h.bot.Handle(&btnNext, h.handleNext)

	// Generic callback handler for plain callback data
	h.bot.Handle(tele.OnCallback, h.handleCallback)

	// Quiz answers
	h.bot.Handle(tele.OnPollAnswer, h.handlePollAnswer)
}

func flowContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), flowTimeout)
}

// Inline keyboard buttons
var (
	btnDaily = tele.Btn{
		Unique: "daily_training",
		Text:   "▶️ תרגול יומי",
	}
	btnRetry = tele.Btn{
		Unique: "retry_training",
		Text:   "🔁 חזרה על טעויות",
	}
	btnReview = tele.Btn{
		Unique: "review_training",
		Text:   "📚 שינון מילים",
	}
	btnStats = tele.Btn{
		Unique: "show_stats",
		Text:   "📊 סטטיסטיקות",
	}
	btnStop = tele.Btn{
		Unique: "stop_training",
		Text:   "⏹️ הפסק תרגול",
	}
	btnMenu = tele.Btn{
		Unique: "show_menu",
		Text:   "🏠 חזור לתפריט",
	}
	btnNext = tele.Btn{
		Unique: "next_word",
		Text:   "➡️ המשך",
	}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnDaily, btnRetry),
		menu.Row(btnReview, btnStats),
		menu.Row(btnStop),
	)
	return menu
}

// backMarkup returns a keyboard with the single "back to menu" button
func backMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnMenu))
	return markup
}

// nextMarkup is attached to the prompt following every delivered word
func nextMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(btnNext),
		markup.Row(btnMenu),
	)
	return markup
}
