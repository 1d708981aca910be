package telegram

import (
	"slices"

	"datrix-bot/internal/config"
)

// AdminChecker answers whether a user may run admin commands.
type AdminChecker struct {
	adminIDs []int64
}

func NewAdminChecker(cfg config.TelegramConfig) *AdminChecker {
	return &AdminChecker{adminIDs: cfg.AdminIDs}
}

func (a *AdminChecker) IsAdmin(userID int64) bool {
	return slices.Contains(a.adminIDs, userID)
}
