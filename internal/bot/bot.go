package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pricetag-studio/internal/config"
	"pricetag-studio/internal/pricing"
	"pricetag-studio/internal/render"
	"pricetag-studio/internal/storage"
	"pricetag-studio/pkg/redis"
)

type Bot struct {
	bot      *tgbotapi.BotAPI
	logger   *zap.Logger
	state    *StateStorage
	sessions *storage.SessionStorage
	themes   pricing.ThemeSet
	chrome   *render.ChromeRenderer
	cfg      *config.Config
	mu       sync.Mutex
	handlers map[string]func(context.Context, int64, string)
}

func New(
	redisClient *redis.Client,
	sessions *storage.SessionStorage,
	chrome *render.ChromeRenderer,
	logger *zap.Logger,
	cfg *config.Config,
) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	b := &Bot{
		bot:      botAPI,
		logger:   logger,
		state:    NewStateStorage(redisClient),
		sessions: sessions,
		themes:   pricing.DefaultThemes(),
		chrome:   chrome,
		cfg:      cfg,
	}

	b.registerHandlers()
	return b, nil
}

func (b *Bot) registerHandlers() {
	b.handlers = map[string]func(context.Context, int64, string){
		StepMainMenu:       b.handleMainMenu,
		StepItemName:       b.handleItemName,
		StepItemPrice:      b.handleItemPrice,
		StepEditItem:       b.handleEditItem,
		StepEditPrice:      b.handleEditPrice,
		StepDeleteItem:     b.handleDeleteItem,
		StepSettingsMenu:   b.handleSettingsMenu,
		StepThemeSelection: b.handleThemeSelection,
		StepDiscountAmount: b.handleDiscountAmount,
		StepDiscountLimit:  b.handleDiscountLimit,
		StepDiscountText:   b.handleDiscountText,
		StepCutLineColor:   b.handleCutLineColor,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			return nil

		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.mu.Lock()
			b.processMessage(ctx, update.Message)
			b.mu.Unlock()
		}
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if msg.Document != nil {
		b.handleDocument(ctx, chatID, msg.Document)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command())
		return
	}

	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}

	if handler, exists := b.handlers[state.Step]; exists {
		handler(ctx, chatID, msg.Text)
	} else {
		b.handleMainMenu(ctx, chatID, msg.Text)
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command string) {
	switch command {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		b.handleHelp(chatID)
	case "stats":
		b.handleStats(ctx, chatID)
	default:
		b.sendError(chatID, "Неизвестная команда. Используйте /start для начала работы.")
	}
}

// sessionID ties a chat to its persistent working session.
func sessionID(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

// session loads the chat's session, creating a fresh one for new chats.
func (b *Bot) session(ctx context.Context, chatID int64) *pricing.Session {
	session, err := b.sessions.Get(ctx, sessionID(chatID))
	if err == nil {
		return session
	}
	if err != storage.ErrSessionNotFound {
		b.logger.Warn("Failed to load session, starting fresh",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	return pricing.NewSession(sessionID(chatID))
}

func (b *Bot) saveSession(ctx context.Context, chatID int64, session *pricing.Session) bool {
	if err := b.sessions.Save(ctx, storage.KindBot, session); err != nil {
		b.logger.Error("Failed to save session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Не удалось сохранить изменения, попробуйте ещё раз")
		return false
	}
	return true
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("text", msg.Text),
			zap.Error(err))
	}
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, "❌ "+text))
}

func (b *Bot) isAdmin(chatID int64) bool {
	for _, id := range b.cfg.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}
