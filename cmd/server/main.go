package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eventika/venue-api/internal/analytics"
	"github.com/eventika/venue-api/internal/auth"
	"github.com/eventika/venue-api/internal/booking"
	"github.com/eventika/venue-api/internal/config"
	"github.com/eventika/venue-api/internal/database"
	"github.com/eventika/venue-api/internal/dedup"
	"github.com/eventika/venue-api/internal/handlers"
	"github.com/eventika/venue-api/internal/ledger"
	"github.com/eventika/venue-api/internal/logging"
	"github.com/eventika/venue-api/internal/notifier"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to Database
	db := database.Connect(cfg, log)

	notifiers, closeNotifiers := buildNotifiers(cfg, log)
	defer closeNotifiers()

	keys := buildDedupStore(ctx, cfg, log)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db, log)
	bookedDates := ledger.New(db, authHandler.Policy(), log)
	bookingService := booking.NewService(notifiers, bookedDates, keys, cfg.IdempotencyTTL, log)
	analyticsClient := analytics.NewClient(cfg.AnalyticsEndpoint, cfg.AnalyticsWebsiteID, cfg.AnalyticsTimeout, log)

	if cfg.OwnerDiscordID == "" {
		log.Warn("OWNER_DISCORD_ID is not set; nobody can manage the calendar")
	}
	if !analyticsClient.Configured() {
		log.Info("analytics upstream not configured; dashboard will show empty stats")
	}

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:      authHandler,
		Calendar:  handlers.NewCalendarHandler(bookedDates, authHandler, log),
		Booking:   handlers.NewBookingHandler(bookingService, log),
		Analytics: handlers.NewAnalyticsHandler(analyticsClient, authHandler),
		APIKeys:   handlers.NewAPIKeyHandler(db, authHandler),
	})

	var handler http.Handler = r
	if cfg.EnableCORS {
		handler = handlers.CORS(origin(cfg.FrontendURL))(r)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}
}

// buildNotifiers enables every booking notification target that is
// configured. The returned func closes their connections.
func buildNotifiers(cfg *config.Config, log *logrus.Logger) (*notifier.Multi, func()) {
	multi := notifier.NewMulti(log)
	var closers []func() error

	if cfg.DiscordBotToken != "" && cfg.DiscordNotificationsChannelID != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.WithError(err).Warn("Discord notifier not initialized")
		} else {
			multi.Add("discord", notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID))
		}
	}

	if cfg.SMTPHost != "" && cfg.BookingMailTo != "" {
		multi.Add("mail", notifier.NewMailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.BookingMailTo))
	}

	if len(cfg.KafkaBrokers) > 0 {
		k := notifier.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaBookingTopic)
		multi.Add("kafka", k)
		closers = append(closers, k.Close)
	}

	if multi.Len() == 0 {
		log.Warn("no booking notification target configured; submissions will fail")
	}

	return multi, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.WithError(err).Warn("failed to close notifier")
			}
		}
	}
}

func buildDedupStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) dedup.Store {
	if cfg.RedisAddr == "" {
		return dedup.NewMemoryStore()
	}
	store := dedup.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		log.WithError(err).Warn("Redis unavailable, falling back to in-memory submission keys")
		store.Close()
		return dedup.NewMemoryStore()
	}
	return store
}

func origin(frontendURL string) string {
	u, err := url.Parse(frontendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "*"
	}
	return u.Scheme + "://" + u.Host
}
