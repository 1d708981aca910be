// Package grants delivers channel access to paid-up subscribers via
// single-use invite links.
package grants

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"datrix-bot/internal/metrics"
	"datrix-bot/internal/telegram/messages"
)

type Service struct {
	telegram  telegramClient
	logger    *slog.Logger
	channelID int64
	inviteTTL time.Duration
}

func New(telegram telegramClient, logger *slog.Logger, channelID int64, inviteTTL time.Duration) *Service {
	return &Service{
		telegram:  telegram,
		logger:    logger,
		channelID: channelID,
		inviteTTL: inviteTTL,
	}
}

// Grant creates a fresh invite link and sends it to the chat, returning
// the link. It admits one member and expires after the configured TTL, so
// it cannot be shared or reused. If link creation fails the user is told
// to contact support; their payment is already recorded and must not be
// lost.
func (s *Service) Grant(ctx context.Context, chatID int64) (string, error) {
	link, err := s.telegram.CreateInviteLink(s.channelID, s.inviteTTL)
	if err != nil {
		s.logger.Error("create invite link failed",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()))

		if sendErr := s.telegram.SendMessage(chatID, messages.InviteFallback); sendErr != nil {
			s.logger.Error("send invite fallback failed",
				slog.Int64("chat_id", chatID),
				slog.String("error", sendErr.Error()))
		}
		return "", errors.Wrap(err, "create invite link")
	}

	if err := s.telegram.SendMessage(chatID, messages.Invite(link)); err != nil {
		return "", errors.Wrap(err, "send invite message")
	}

	metrics.InvitesIssued.Inc()
	s.logger.Info("invite issued", slog.Int64("chat_id", chatID))
	return link, nil
}
