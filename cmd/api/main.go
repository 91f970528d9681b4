package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tripsplit/config"
	_ "tripsplit/docs"
	"tripsplit/internal/adapters/auth"
	"tripsplit/internal/adapters/email"
	delivery "tripsplit/internal/delivery/http"
	"tripsplit/internal/delivery/http/controllers"
	"tripsplit/internal/jobs"
	"tripsplit/internal/metrics"
	"tripsplit/internal/repository/postgres"
	"tripsplit/internal/services"
)

const shutdownTimeout = 15 * time.Second

// @title Tripsplit API
// @version 1.0
// @description Group trip planning: trips, invitations, shared expenses and settlement.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("database ready")

	tripRepo := postgres.NewTripRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	expenseRepo := postgres.NewExpenseRepository(db)
	userRepo := postgres.NewUserRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	statsRepo := postgres.NewStatsRepository(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mailer.Provider,
		FromAddress: cfg.Mailer.FromAddress,
		FromName:    cfg.Mailer.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mailer.AWSRegion,
			AccessKeyID:        cfg.Mailer.AWSAccessKeyID,
			SecretAccessKey:    cfg.Mailer.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Mailer.SESInsecureSkipVerify,
		},
		SMTP: email.SMTPConfig{
			Host:     cfg.Mailer.SMTPHost,
			Port:     cfg.Mailer.SMTPPort,
			Username: cfg.Mailer.SMTPUsername,
			Password: cfg.Mailer.SMTPPassword,
		},
	}, logger)
	if err != nil {
		return err
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}

	m := metrics.New()
	jwt := auth.NewJWT(cfg.JWTSecret)
	emailService := services.NewEmailService(mailer, renderer, logger)

	authService := services.NewAuthService(userRepo, auth.NewBcryptHasher(bcrypt.DefaultCost), jwt, emailService, logger, cfg.JWTExpiry, cfg.ContextTimeout)
	userService := services.NewUserService(userRepo, cfg.ContextTimeout)
	tripService := services.NewTripService(tripRepo, participantRepo, cfg.ContextTimeout)
	membershipService := services.NewMembershipService(tripRepo, participantRepo, invitationRepo, userRepo, notificationRepo,
		emailService, postgres.NewClock(db), logger, services.MembershipConfig{
			InvitationTTL:  cfg.InvitationTTL,
			AppBaseURL:     cfg.AppBaseURL,
			ContextTimeout: cfg.ContextTimeout,
		})
	expenseService := services.NewExpenseService(tripRepo, participantRepo, expenseRepo, cfg.ContextTimeout)
	statsService := services.NewStatsService(tripRepo, participantRepo, statsRepo, m, logger, cfg.ContextTimeout)
	notificationService := services.NewNotificationService(notificationRepo, cfg.ContextTimeout)
	reminderService := services.NewReminderService(expenseRepo, userRepo, emailService, m, logger, cfg.ContextTimeout)

	scheduler, err := jobs.NewScheduler(cfg.ReminderSchedule, reminderService, logger)
	if err != nil {
		return err
	}
	scheduler.Start()

	mux := delivery.NewRouter(delivery.Controllers{
		Auth:         controllers.NewAuthController(logger, authService),
		User:         controllers.NewUserController(logger, userService),
		Trip:         controllers.NewTripController(logger, tripService),
		Membership:   controllers.NewMembershipController(logger, membershipService),
		Expense:      controllers.NewExpenseController(logger, expenseService),
		Stats:        controllers.NewStatsController(logger, statsService),
		Notification: controllers.NewNotificationController(logger, notificationService),
	}, jwt, m, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           delivery.NewHandler(mux, m, cfg.AllowedOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("reminder job did not finish", "err", err)
	}
	return srv.Shutdown(shutdownCtx)
}
