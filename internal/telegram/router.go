package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"datrix-bot/internal/telegram/cmds"
	"datrix-bot/internal/telegram/flows/subscribe"
	"datrix-bot/internal/telegram/messages"
)

type telegramClient interface {
	SendMessage(chatID int64, text string) error
	Request(chattable tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type adminChecker interface {
	IsAdmin(userID int64) bool
}

// Router dispatches Telegram updates: commands to their handlers, plan
// button presses and free text to the subscribe flow.
type Router struct {
	telegram     telegramClient
	adminChecker adminChecker
	logger       *slog.Logger

	subscribeFlow *subscribe.Flow

	membersCommand     *cmds.MembersCommand
	removeCommand      *cmds.RemoveCommand
	broadcastCommand   *cmds.BroadcastCommand
	checkExpiryCommand *cmds.CheckExpiryCommand
	simulateCommand    *cmds.SimulateCommand
}

func NewRouter(
	telegram telegramClient,
	adminChecker adminChecker,
	logger *slog.Logger,
	subscribeFlow *subscribe.Flow,
	membersCommand *cmds.MembersCommand,
	removeCommand *cmds.RemoveCommand,
	broadcastCommand *cmds.BroadcastCommand,
	checkExpiryCommand *cmds.CheckExpiryCommand,
	simulateCommand *cmds.SimulateCommand,
) *Router {
	return &Router{
		telegram:           telegram,
		adminChecker:       adminChecker,
		logger:             logger,
		subscribeFlow:      subscribeFlow,
		membersCommand:     membersCommand,
		removeCommand:      removeCommand,
		broadcastCommand:   broadcastCommand,
		checkExpiryCommand: checkExpiryCommand,
		simulateCommand:    simulateCommand,
	}
}

func (r *Router) Route(ctx context.Context, update *tgbotapi.Update) error {
	userID := extractUserID(update)
	chatID := extractChatID(update)
	if userID == 0 || chatID == 0 {
		return nil
	}

	if update.CallbackQuery != nil {
		// Acknowledge the button press so the client stops its spinner.
		callback := tgbotapi.NewCallback(update.CallbackQuery.ID, "")
		if _, err := r.telegram.Request(callback); err != nil {
			r.logger.Warn("answer callback failed", slog.String("error", err.Error()))
		}

		handled, err := r.subscribeFlow.HandleCallback(ctx, userID, chatID, update.CallbackQuery.Data)
		if err != nil {
			return err
		}
		if !handled {
			r.logger.Debug("unrecognized callback",
				slog.String("data", update.CallbackQuery.Data))
		}
		return nil
	}

	if update.Message == nil {
		return nil
	}

	// Commands do not cancel an in-flight subscribe request: a second
	// /subscribe is rejected by the flow, and the rest operate alongside.
	if update.Message.IsCommand() {
		return r.handleCommand(ctx, update, userID, chatID)
	}

	handled, err := r.subscribeFlow.HandleText(ctx, userID, chatID, extractUsername(update), update.Message.Text)
	if err != nil {
		return err
	}
	if !handled {
		return r.telegram.SendMessage(chatID, messages.Help)
	}
	return nil
}

func (r *Router) handleCommand(ctx context.Context, update *tgbotapi.Update, userID, chatID int64) error {
	switch update.Message.Command() {
	case "start":
		return r.telegram.SendMessage(chatID, messages.Welcome)
	case "help":
		return r.telegram.SendMessage(chatID, messages.Help)
	case "subscribe":
		return r.subscribeFlow.Start(ctx, userID, chatID)
	case "members":
		if !r.adminChecker.IsAdmin(userID) {
			return r.telegram.SendMessage(chatID, messages.Unauthorized)
		}
		return r.membersCommand.Execute(ctx, chatID)
	case "remove":
		if !r.adminChecker.IsAdmin(userID) {
			return r.telegram.SendMessage(chatID, messages.Unauthorized)
		}
		return r.removeCommand.Execute(ctx, chatID, update.Message.CommandArguments())
	case "broadcast":
		if !r.adminChecker.IsAdmin(userID) {
			return r.telegram.SendMessage(chatID, messages.Unauthorized)
		}
		return r.broadcastCommand.Execute(ctx, chatID, update.Message.CommandArguments())
	case "checkexpiry":
		if !r.adminChecker.IsAdmin(userID) {
			return r.telegram.SendMessage(chatID, messages.Unauthorized)
		}
		return r.checkExpiryCommand.Execute(ctx, chatID)
	case "simulate":
		if !r.adminChecker.IsAdmin(userID) {
			return r.telegram.SendMessage(chatID, messages.Unauthorized)
		}
		return r.simulateCommand.Execute(ctx, chatID, update.Message.CommandArguments(), extractUsername(update))
	default:
		return r.telegram.SendMessage(chatID, messages.Help)
	}
}

// SetupBotCommands publishes the public command menu. Admin commands are
// deliberately left out of the menu.
func (r *Router) SetupBotCommands() error {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "About this bot"},
		{Command: "subscribe", Description: "Subscribe to the channel"},
		{Command: "help", Description: "List commands"},
	}

	_, err := r.telegram.Request(tgbotapi.NewSetMyCommands(commands...))
	return err
}

func extractUserID(update *tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

func extractChatID(update *tgbotapi.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

func extractUsername(update *tgbotapi.Update) *string {
	var from *tgbotapi.User
	if update.Message != nil {
		from = update.Message.From
	} else if update.CallbackQuery != nil {
		from = update.CallbackQuery.From
	}
	if from == nil || from.UserName == "" {
		return nil
	}
	return lo.ToPtr(from.UserName)
}
