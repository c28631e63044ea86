// cmd/intake-bot/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"application-intake/internal/common/aws"
	"application-intake/internal/common/config"
	"application-intake/internal/common/database"
	"application-intake/internal/common/discord"
	"application-intake/internal/common/logger"
	"application-intake/internal/common/observability"
	"application-intake/internal/models"

	car "application-intake/internal/workers/application/create-application-record"
	oaf "application-intake/internal/workers/application/open-application-form"
	rs "application-intake/internal/workers/application/reserve-submission"
	rd "application-intake/internal/workers/application/review-decision"
	sn "application-intake/internal/workers/application/send-notification"
	vad "application-intake/internal/workers/application/validate-application-data"
	ai "application-intake/internal/workers/commands/application-info"
	pr "application-intake/internal/workers/commands/post-recruitment"
	ua "application-intake/internal/workers/commands/unlink-application"
	as "application-intake/internal/workers/data-access/application-store"
	ri "application-intake/internal/workers/infrastructure/route-interaction"
	ra "application-intake/internal/workers/profile/resolve-avatar"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting intake bot...",
		zap.String("environment", cfg.App.Environment),
		zap.String("guardBackend", cfg.Guard.Backend),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	// --- Init Redis with retry, only when it backs the guard ---
	var redis *database.RedisClient
	if cfg.Guard.Backend == config.GuardBackendRedis {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Outcome audit sink ---
	var sink sn.OutcomeSink
	if cfg.Notifications.Outcomes.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.Outcomes.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		sink = aws.NewOutcomePublisher(snsClient, cfg.Notifications.Outcomes.TopicARN)
		zapLog.Info("Outcome publishing enabled", zap.String("topic", cfg.Notifications.Outcomes.TopicARN))
	}

	session, err := discord.NewSession(cfg.Discord.Token, log)
	if err != nil {
		zapLog.Fatal("discord session failed", zap.Error(err))
	}

	router, err := buildRouter(cfg, pg, redis, session, sink, obs, log)
	if err != nil {
		zapLog.Fatal("handler wiring failed", zap.Error(err))
	}

	session.OnInteraction(router.HandleInteraction)
	session.OnMessage(router.HandleMessage)
	session.OnReady(func(username string) {
		zapLog.Info("Logged in", zap.String("username", username))
	})

	err = retryWithBackoff(session.Open, 5, 2*time.Second, zapLog, "Discord gateway connection")
	if err != nil {
		zapLog.Fatal("discord gateway failed after retries", zap.Error(err))
	}

	// --- Health & Metrics Server ---
	checks := map[string]pinger{"postgres": pg}
	if redis != nil {
		checks["redis"] = redis
	}
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newHealthMux(checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, closing gateway...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := session.Close(); err != nil {
		zapLog.Error("Error closing Discord session", zap.Error(err))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}

	zapLog.Info("Intake bot stopped gracefully")
}

// buildRouter wires every handler to its dependencies.
func buildRouter(
	cfg *config.Config,
	pg *database.PostgresClient,
	redis *database.RedisClient,
	client discord.Client,
	sink sn.OutcomeSink,
	recorder observability.Recorder,
	log logger.Logger,
) (*ri.Router, error) {
	store := as.NewStore(as.LoadConfig(), pg.GetDB(), log)

	guard, err := buildGuard(cfg.Guard, store, redis)
	if err != nil {
		return nil, err
	}
	reserve := rs.NewHandler(&rs.Config{
		Backend:   cfg.Guard.Backend,
		KeyPrefix: cfg.Guard.KeyPrefix,
	}, guard, log)

	avatars := ra.NewHandler(&ra.Config{
		UsersBaseURL:      cfg.Profile.UsersBaseURL,
		ThumbnailsBaseURL: cfg.Profile.ThumbnailsBaseURL,
		AvatarSize:        cfg.Profile.AvatarSize,
		Timeout:           config.GetDuration(cfg.Profile.Timeout),
		RateLimitRPS:      cfg.Profile.RateLimitRPS,
		RateLimitBurst:    cfg.Profile.RateLimitBurst,
	}, log)

	dispatcher := sn.NewHandler(&sn.Config{
		ReviewChannelID: cfg.Discord.ReviewChannelID,
		OutcomesEnabled: cfg.Notifications.Outcomes.Enabled,
		Timeout:         config.GetDuration(cfg.Discord.SideEffectTimeout),
	}, client, sink, log)

	moderator, ok := discord.PermissionByName(cfg.Discord.ModeratorPermission)
	if !ok {
		return nil, fmt.Errorf("unknown moderator permission %q", cfg.Discord.ModeratorPermission)
	}

	submit := car.NewHandler(
		&car.Config{
			SubmittedMessage:  cfg.Notifications.SubmittedMessage,
			SideEffectTimeout: config.GetDuration(cfg.Discord.SideEffectTimeout),
			EnrichmentTimeout: config.GetDuration(cfg.Profile.EnrichmentTimeout),
		},
		vad.NewHandler(vad.LoadConfig(), log),
		store,
		reserve,
		avatars,
		dispatcher,
		client,
		recorder,
		log,
	)

	review := rd.NewHandler(&rd.Config{
		GuildID:           cfg.Discord.GuildID,
		ApprovedRoleID:    cfg.Discord.ApprovedRoleID,
		ApprovedMessage:   cfg.Notifications.ApprovedMessage,
		DeclineReason:     cfg.Notifications.DeclineReason,
		SideEffectTimeout: config.GetDuration(cfg.Discord.SideEffectTimeout),
	}, store, client, dispatcher, log)

	return ri.NewRouter(&ri.Config{
		InteractionTimeout: config.GetDuration(cfg.Discord.InteractionTimeout),
		AdminCommandPrefix: cfg.Discord.AdminCommandPrefix,
	}, ri.Handlers{
		FormOpen:       oaf.NewHandler(reserve, client, log),
		FormSubmission: submit,
		Review:         review,
		Commands: map[models.CommandName]ri.CommandHandler{
			models.CommandInfo: ai.NewHandler(store, avatars, client, log),
			models.CommandUnlink: ua.NewHandler(&ua.Config{
				ModeratorPermission: moderator,
				PermissionName:      cfg.Discord.ModeratorPermission,
			}, store, client, log),
		},
		AdminMessage: pr.NewHandler(&pr.Config{
			Title:        cfg.Recruitment.Title,
			Description:  cfg.Recruitment.Description,
			ThumbnailURL: cfg.Recruitment.ThumbnailURL,
		}, client, log),
	}, log), nil
}

func buildGuard(cfg config.GuardConfig, store *as.Store, redis *database.RedisClient) (rs.Guard, error) {
	switch cfg.Backend {
	case config.GuardBackendPostgres:
		return rs.NewStoreGuard(store), nil
	case config.GuardBackendRedis:
		if redis == nil {
			return nil, errors.New("redis guard requires a redis client")
		}
		return rs.NewRedisGuard(redis, cfg.KeyPrefix), nil
	case config.GuardBackendMemory:
		return rs.NewMemoryGuard(), nil
	default:
		return nil, fmt.Errorf("unknown guard backend %q", cfg.Backend)
	}
}
