package mail

import (
	"context"
	"log/slog"
)

// LogMailer writes messages to the log instead of sending them. Used in
// development and tests where no relay is available. Codes and temporary
// passwords land in the log on purpose; never enable outside dev.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) SendOTPCode(ctx context.Context, to, name, code string) error {
	m.Logger.Info("otp code email (dev)", "to", to, "name", name, "code", code)
	return nil
}

func (m *LogMailer) SendTemporaryPassword(ctx context.Context, to, name, password string) error {
	m.Logger.Info("temporary password email (dev)", "to", to, "name", name, "password", password)
	return nil
}
