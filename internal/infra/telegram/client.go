package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Client wraps the bot API with rate limiting. Telegram allows roughly
// 30 messages per second bot-wide.
type Client struct {
	api     *tgbotapi.BotAPI
	logger  *slog.Logger
	limiter *rate.Limiter
	updates <-chan tgbotapi.Update
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewClient(token string, logger *slog.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Client{
		api:     bot,
		logger:  logger,
		limiter: rate.NewLimiter(30, 1),
	}, nil
}

// Start begins receiving updates via long polling.
func (c *Client) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	c.updates = c.api.GetUpdatesChan(u)

	c.logger.Info("Telegram bot started", slog.String("username", c.api.Self.UserName))
	return nil
}

func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.api.StopReceivingUpdates()
	c.logger.Info("Telegram bot stopped")
}

func (c *Client) GetUpdates() <-chan tgbotapi.Update {
	return c.updates
}

func (c *Client) SendMessage(chatID int64, text string) error {
	if err := c.limiter.Wait(c.ctx); err != nil {
		return fmt.Errorf("rate limiting: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.api.Send(msg); err != nil {
		c.logger.Error("send message failed",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()))
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

func (c *Client) SendKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	if err := c.limiter.Wait(c.ctx); err != nil {
		return fmt.Errorf("rate limiting: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard

	_, err := c.api.Send(msg)
	return err
}

// Send sends any chattable with rate limiting (botApi interface).
func (c *Client) Send(chattable tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := c.limiter.Wait(c.ctx); err != nil {
		return tgbotapi.Message{}, fmt.Errorf("rate limiting: %w", err)
	}

	message, err := c.api.Send(chattable)
	if err != nil {
		c.logger.Error("send failed", slog.Any("error", err))
		return tgbotapi.Message{}, fmt.Errorf("send: %w", err)
	}

	return message, nil
}

// Request performs a raw API request with rate limiting (botApi interface).
func (c *Client) Request(chattable tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if err := c.limiter.Wait(c.ctx); err != nil {
		return nil, fmt.Errorf("rate limiting: %w", err)
	}

	resp, err := c.api.Request(chattable)
	if err != nil {
		c.logger.Error("api request failed", slog.Any("error", err))
		return nil, fmt.Errorf("api request: %w", err)
	}

	return resp, nil
}

// CreateInviteLink creates a single-use invite link to the channel that
// expires after ttl.
func (c *Client) CreateInviteLink(channelID int64, ttl time.Duration) (string, error) {
	if err := c.limiter.Wait(c.ctx); err != nil {
		return "", fmt.Errorf("rate limiting: %w", err)
	}

	cfg := tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: channelID},
		ExpireDate: int(time.Now().Add(ttl).Unix()),
		// One redemption, then the link is dead.
		MemberLimit: 1,
	}

	resp, err := c.api.Request(cfg)
	if err != nil {
		return "", fmt.Errorf("create invite link: %w", err)
	}

	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("decode invite link: %w", err)
	}

	return link.InviteLink, nil
}

// MemberStatus returns the membership status ("member", "left", "kicked", ...)
// of a user in the channel.
func (c *Client) MemberStatus(channelID, userID int64) (string, error) {
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: channelID,
			UserID: userID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("get chat member: %w", err)
	}

	return member.Status, nil
}

// KickMember removes a user from the channel. Ban then immediately unban,
// so the user can rejoin later via a fresh invite.
func (c *Client) KickMember(channelID, userID int64) error {
	if err := c.limiter.Wait(c.ctx); err != nil {
		return fmt.Errorf("rate limiting: %w", err)
	}

	ban := tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: channelID, UserID: userID},
	}
	if _, err := c.api.Request(ban); err != nil {
		return fmt.Errorf("ban chat member: %w", err)
	}

	unban := tgbotapi.UnbanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: channelID, UserID: userID},
	}
	if _, err := c.api.Request(unban); err != nil {
		return fmt.Errorf("unban chat member: %w", err)
	}

	return nil
}

// GetBotAPI exposes the underlying BotAPI for the router.
func (c *Client) GetBotAPI() *tgbotapi.BotAPI {
	return c.api
}
