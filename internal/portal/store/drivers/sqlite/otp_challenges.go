package sqlite

import (
	"context"
	"time"

	"github.com/klu-crt/portal/internal/portal/domain"
)

type otpChallengesRepo struct {
	db dbtx
}

const otpColumns = `id, user_id, secret, counter, attempts, resend_at, expires_at, created_at`

func (r *otpChallengesRepo) CreateOTPChallenge(ctx context.Context, c domain.OTPChallenge) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO otp_challenges (id, user_id, secret, counter, attempts, resend_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Secret, c.Counter, c.Attempts, c.ResendAt, c.ExpiresAt,
	)
	return mapConstraint(err)
}

func (r *otpChallengesRepo) GetOTPChallenge(ctx context.Context, id string) (domain.OTPChallenge, error) {
	var c domain.OTPChallenge
	err := r.db.QueryRowContext(ctx,
		`SELECT `+otpColumns+` FROM otp_challenges WHERE id = ?`, id,
	).Scan(&c.ID, &c.UserID, &c.Secret, &c.Counter, &c.Attempts, &c.ResendAt, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		return domain.OTPChallenge{}, mapNotFound(err)
	}
	return c, nil
}

func (r *otpChallengesRepo) GetOTPChallengeByUserID(ctx context.Context, userID string) (domain.OTPChallenge, error) {
	var c domain.OTPChallenge
	err := r.db.QueryRowContext(ctx,
		`SELECT `+otpColumns+` FROM otp_challenges WHERE user_id = ?
		 ORDER BY id DESC LIMIT 1`, userID,
	).Scan(&c.ID, &c.UserID, &c.Secret, &c.Counter, &c.Attempts, &c.ResendAt, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		return domain.OTPChallenge{}, mapNotFound(err)
	}
	return c, nil
}

func (r *otpChallengesRepo) DeleteUserOTPChallenges(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM otp_challenges WHERE user_id = ?`, userID)
	return err
}

func (r *otpChallengesRepo) IncrementOTPAttempts(ctx context.Context, id string) (domain.OTPChallenge, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE otp_challenges SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return domain.OTPChallenge{}, err
	}
	if err := requireRowAffected(res); err != nil {
		return domain.OTPChallenge{}, err
	}
	return r.GetOTPChallenge(ctx, id)
}

func (r *otpChallengesRepo) BumpOTPCounter(ctx context.Context, id string, resendAt time.Time) (domain.OTPChallenge, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE otp_challenges SET counter = counter + 1, resend_at = ? WHERE id = ?`,
		resendAt, id)
	if err != nil {
		return domain.OTPChallenge{}, err
	}
	if err := requireRowAffected(res); err != nil {
		return domain.OTPChallenge{}, err
	}
	return r.GetOTPChallenge(ctx, id)
}

func (r *otpChallengesRepo) DeleteOTPChallenge(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM otp_challenges WHERE id = ?`, id)
	return err
}

func (r *otpChallengesRepo) DeleteExpiredOTPChallenges(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM otp_challenges WHERE expires_at < CURRENT_TIMESTAMP`)
	return err
}
