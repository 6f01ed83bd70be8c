package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/shadowdreamer/drawwat/internal/logging"
	"github.com/shadowdreamer/drawwat/internal/models"
)

// EmailSender delivers a single message. Implementations must be safe for
// concurrent use.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// ResendSender sends mail through the Resend API.
type ResendSender struct {
	client      *resend.Client
	fromAddress string
	fromName    string
}

func NewResendSender(apiKey, fromAddress, fromName string) *ResendSender {
	return &ResendSender{
		client:      resend.NewClient(apiKey),
		fromAddress: fromAddress,
		fromName:    fromName,
	}
}

func (s *ResendSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress),
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
		Text:    textBody,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("sending email via resend: %w", err)
	}
	return nil
}

// ConsoleSender logs mail instead of delivering it. Used in development.
type ConsoleSender struct{}

func (ConsoleSender) Send(_ context.Context, to, subject, _, textBody string) error {
	logging.Info("Email (console delivery)", map[string]interface{}{
		"to":      to,
		"subject": subject,
		"body":    textBody,
	})
	return nil
}

// NotificationService emails puzzle creators when their puzzle gets a new
// first-time solve. Failures are logged, never surfaced to the solver.
type NotificationService struct {
	db      DB
	sender  EmailSender
	baseURL string
}

func NewNotificationService(db DB, sender EmailSender, baseURL string) *NotificationService {
	return &NotificationService{db: db, sender: sender, baseURL: baseURL}
}

func (s *NotificationService) NotifySolved(ctx context.Context, puzzle *models.Puzzle, solver *models.User) {
	creator := &models.User{}
	err := s.db.QueryRow(ctx,
		"SELECT id, provider, provider_user_id, username, avatar_url, email, created_at FROM users WHERE id = $1",
		puzzle.UserID,
	).Scan(&creator.ID, &creator.Provider, &creator.ProviderUserID, &creator.Username,
		&creator.AvatarURL, &creator.Email, &creator.CreatedAt)
	if err != nil {
		logging.Warn("Failed to load creator for solve notification", map[string]interface{}{
			"puzzle_id": puzzle.ID.String(),
			"error":     err.Error(),
		})
		return
	}
	if creator.Email == nil || strings.TrimSpace(*creator.Email) == "" {
		return
	}

	subject, htmlBody, textBody := buildSolveEmail(puzzle, solver, s.baseURL)
	if err := s.sender.Send(ctx, *creator.Email, subject, htmlBody, textBody); err != nil {
		logging.Warn("Failed to send solve notification", map[string]interface{}{
			"puzzle_id": puzzle.ID.String(),
			"error":     err.Error(),
		})
	}
}

func buildSolveEmail(puzzle *models.Puzzle, solver *models.User, baseURL string) (string, string, string) {
	puzzleURL := fmt.Sprintf("%s/#puzzle/%s", baseURL, puzzle.ID)
	safePuzzleURL := html.EscapeString(puzzleURL)
	safeSolver := html.EscapeString(solver.Username)

	subject := fmt.Sprintf("%s solved your puzzle", solver.Username)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 640px; margin: 0 auto; padding: 24px;">
  <h1 style="color: #333; font-size: 24px;">Drawwat</h1>
  <p style="font-size: 18px;"><strong>%s</strong> just solved your puzzle.</p>
  <p>
    <a href="%s" style="display: inline-block; background: #0f6f62; color: white; padding: 10px 18px; text-decoration: none; border-radius: 6px; margin: 12px 0;">See the leaderboard</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
  <p style="color: #999; font-size: 12px;">Drawwat - drawwat.com</p>
</body>
</html>`,
		safeSolver,
		safePuzzleURL,
	)

	textBody := fmt.Sprintf(`%s just solved your puzzle.

See the leaderboard: %s

--
Drawwat
drawwat.com`,
		solver.Username,
		puzzleURL,
	)

	return subject, htmlBody, textBody
}
