// Package subscribe drives the two-step subscription conversation: pick a
// plan from an inline keyboard, then submit an M-Pesa phone number.
package subscribe

import (
	"context"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"datrix-bot/internal/storage"
	"datrix-bot/internal/stories/plans"
	"datrix-bot/internal/telegram/messages"
	"datrix-bot/internal/telegram/pending"
)

const planCallbackPrefix = "plan:"

type Flow struct {
	pending   *pending.Store
	catalog   planCatalog
	payments  paymentInitiator
	directory phoneDirectory
	telegram  messenger
	logger    *slog.Logger
}

func New(
	pendingStore *pending.Store,
	catalog planCatalog,
	payments paymentInitiator,
	directory phoneDirectory,
	telegram messenger,
	logger *slog.Logger,
) *Flow {
	return &Flow{
		pending:   pendingStore,
		catalog:   catalog,
		payments:  payments,
		directory: directory,
		telegram:  telegram,
		logger:    logger,
	}
}

// Start opens a new subscribe request and shows the plan keyboard. A user
// with a request already in flight is told to finish it first; the
// existing request is left untouched.
func (f *Flow) Start(ctx context.Context, userID, chatID int64) error {
	if _, err := f.pending.Begin(userID, chatID); err != nil {
		return f.telegram.SendMessage(chatID, messages.AlreadyPending)
	}

	return f.telegram.SendKeyboard(chatID, messages.ChoosePlan, planKeyboard(f.catalog.List()))
}

// HandleCallback processes an inline keyboard press. Returns false when the
// callback data is not a plan selection.
func (f *Flow) HandleCallback(ctx context.Context, userID, chatID int64, data string) (bool, error) {
	if !strings.HasPrefix(data, planCallbackPrefix) {
		return false, nil
	}
	token := strings.TrimPrefix(data, planCallbackPrefix)

	req, ok := f.pending.Get(userID)
	if !ok || req.Step != pending.StepAwaitingPlan {
		// Stale button press from an expired or finished request.
		f.logger.Debug("plan callback without awaiting request",
			slog.Int64("user_id", userID),
			slog.String("token", token))
		return true, nil
	}

	plan, err := f.catalog.Resolve(token)
	if err != nil {
		f.logger.Warn("unknown plan token in callback",
			slog.Int64("user_id", userID),
			slog.String("token", token))
		return true, f.telegram.SendKeyboard(chatID, messages.ChoosePlan, planKeyboard(f.catalog.List()))
	}

	if _, err := f.pending.Advance(userID, func(r *pending.Request) {
		r.Plan = plan
		r.Step = pending.StepAwaitingPhone
	}); err != nil {
		return true, err
	}
	// Full window again for typing the phone number.
	if err := f.pending.Rearm(userID); err != nil {
		return true, err
	}

	return true, f.telegram.SendMessage(chatID, messages.AskPhone)
}

// HandleText processes a free-text message. Returns false when the user has
// no pending request, so the router can treat the text as idle chatter.
func (f *Flow) HandleText(ctx context.Context, userID, chatID int64, username *string, text string) (bool, error) {
	req, ok := f.pending.Get(userID)
	if !ok {
		return false, nil
	}
	if req.Step != pending.StepAwaitingPhone {
		// Still on the keyboard step; remind instead of guessing.
		return true, f.telegram.SendMessage(chatID, messages.ChoosePlan)
	}

	phone := SanitizePhone(text)
	if !IsValidSubscriberNumber(phone) {
		return true, f.telegram.SendMessage(chatID, messages.InvalidPhone)
	}

	// The request is finished the moment a valid phone arrives, whatever
	// the payment outcome. Complete first so the timeout notice can no
	// longer fire.
	req, err := f.pending.Complete(userID)
	if err != nil {
		return true, err
	}

	if err := f.directory.UpsertPhoneEntry(ctx, storage.PhoneEntry{
		Phone:    phone,
		ChatID:   chatID,
		Username: username,
	}); err != nil {
		f.logger.Error("phone directory upsert failed",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		// Without the directory entry the callback cannot be attributed,
		// so don't ask for money.
		return true, f.telegram.SendMessage(chatID, messages.PaymentRequestFailed)
	}

	if _, err := f.payments.Initiate(ctx, phone, req.Plan.AmountKES); err != nil {
		return true, f.telegram.SendMessage(chatID, messages.PaymentRequestFailed)
	}

	return true, f.telegram.SendMessage(chatID, messages.PaymentPromptSent)
}

func planKeyboard(list []*plans.Plan) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(list))
	for _, plan := range list {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				messages.PlanButton(plan.Name, plan.AmountKES),
				planCallbackPrefix+plan.Token,
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
