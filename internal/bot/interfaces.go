package bot

import (
	"context"

	"github.com/yuya-takeyama/lark-dept-bot/internal/dedup"
	"github.com/yuya-takeyama/lark-dept-bot/internal/directory"
)

// TokenSource issues tenant access tokens
type TokenSource interface {
	TenantAccessToken(ctx context.Context) (string, error)
}

// DirectoryFetcher returns the complete user directory or an error
type DirectoryFetcher interface {
	FetchAllUsers(ctx context.Context, token string) (directory.Snapshot, error)
}

// MessageSender posts a plain text message to a chat
type MessageSender interface {
	SendText(ctx context.Context, token, chatID, text string) error
}

// DuplicateChecker records deliveries and reports the ones already handled
type DuplicateChecker interface {
	IsDuplicate(ctx context.Context, s dedup.Subject) bool
}
