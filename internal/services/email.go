package services

import (
	"context"
	"fmt"
	"log/slog"

	"tripsplit/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

func (s *emailService) send(ctx context.Context, templateName, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send %s email: %w", templateName, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", templateName, "to", to)
	return nil
}

func (s *emailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome message data is nil")
	}
	return s.send(ctx, "welcome", data.Email, data)
}

func (s *emailService) SendTripInvitation(ctx context.Context, data *domain.TripInvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("trip invitation data is nil")
	}
	return s.send(ctx, "trip_invitation", data.Email, data)
}

func (s *emailService) SendSettlementReminder(ctx context.Context, data *domain.SettlementReminderEmailData) error {
	if data == nil {
		return fmt.Errorf("settlement reminder data is nil")
	}
	if len(data.Lines) == 0 {
		return fmt.Errorf("settlement reminder for %s has no lines", data.Email)
	}
	return s.send(ctx, "settlement_reminder", data.Email, data)
}
