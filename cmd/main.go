package main

import (
	"chat-hub/auth"
	"chat-hub/errors"
	"chat-hub/infrastructure/api"
	"chat-hub/infrastructure/postgres"
	"chat-hub/infrastructure/ws"
	"chat-hub/internal"
	"chat-hub/moderation"
	"chat-hub/observability"
	"chat-hub/repositories"
	"chat-hub/runtime"
	"chat-hub/runtime/workers"
	"chat-hub/services"
	"context"
	goerrors "errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

type stores struct {
	users         repositories.IUserRepository
	conversations repositories.IConversationRepository
	messages      repositories.IMessageRepository
	// badger is nil on the postgres driver
	badger *badger.DB
	close  func() error
}

// run wires every component and returns when the process must exit.
// Deferred cleanups run before main reports the error.
func run() error {
	// 1. Configuration & Logger
	var config Config
	if err := internal.LoadConfig(&config, ".env"); err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Conversation Store
	store, err := openStores(config, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing store...", "driver", config.StoreDriver)
		_ = store.close()
	}()

	// 3. Delivery Hub & Supervision
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	registry := runtime.NewRegistry()
	hub := runtime.NewHub(log, tokens, registry, sup, config.BufferSize, config.SinkTimeout)
	monitor := observability.NewMonitor(log, hub, config.MetricInterval)
	sup.Add(workers.NewChannelCapacityWorker(log, []workers.NamedChannel{hub.Queue()},
		config.MetricInterval, config.LowCapacityThreshold), monitor)

	// 4. Services
	membership := services.NewMembershipService(log, store.users, store.conversations)
	chat := services.NewChatService(log, membership, store.users, store.conversations, store.messages,
		monitor, runtime.NewSequencer(config.SequencerStripes))
	if words := config.Censored(); len(words) > 0 {
		moderator, err := moderation.NewModerator(words, config.Mask())
		if err != nil {
			return fmt.Errorf("moderator initialization failed: %w", err)
		}
		chat.WithCensor(moderator)
	}
	authService := services.NewAuthService(log, store.users, tokens)
	userService := services.NewUserService(store.users)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub.Start(ctx)
	defer hub.Stop()

	// 6. HTTP Server Setup
	configureGin(log, config.LogLevel)
	server := api.NewServer(log, authService, userService, membership, chat, tokens, api.Options{
		AllowedOrigins: config.Origins(),
		AuthRateLimit:  uint(max(config.AuthRateLimit, 0)),
		AuthRatePeriod: config.AuthRatePeriod,
	})
	gateway := ws.NewGateway(log, hub, chat, membership, ws.Options{
		SessionBufferSize:      config.ConnectionBufferSize,
		PingInterval:           config.PingInterval,
		JoinRequiresMembership: config.JoinRequiresMembership,
		OriginPatterns:         config.Origins(),
		InsecureSkipVerify:     config.WSInsecureSkipVerify,
	})
	router := server.Router(func(r *gin.Engine) {
		r.GET("/ws", gateway.Handle)
		if config.DebugEndpoint {
			internal.NewDebugServer(log, store.badger, map[string]internal.StatsProvider{
				"hub":     func() any { return hub.Stats() },
				"traffic": func() any { return monitor.Latest() },
			}).Register(r.Group("/debug"))
		}
	})

	address := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	httpServer := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          newStdLogger(log, "http", slog.LevelWarn),
	}

	// Use an error channel to capture ListenAndServe() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "store", config.StoreDriver, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !goerrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}

func openStores(config Config, log *slog.Logger) (stores, error) {
	switch config.StoreDriver {
	case driverBadger:
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return stores{}, fmt.Errorf("database opening failed: %w", err)
		}
		return stores{
			users:         repositories.NewUserRepository(db),
			conversations: repositories.NewConversationRepository(db),
			messages:      repositories.NewMessageRepository(db, log, config.LimitMessages),
			badger:        db,
			close:         db.Close,
		}, nil
	case driverPostgres:
		store, err := postgres.Open(config.PostgresDSN, log, config.LimitMessages)
		if err != nil {
			return stores{}, err
		}
		return stores{users: store, conversations: store, messages: store, close: store.Close}, nil
	default:
		return stores{}, fmt.Errorf("%w: %q", errors.ErrUnsupportedDatabase, config.StoreDriver)
	}
}

// configureGin routes gin's own output to the logger.
func configureGin(log *slog.Logger, level string) {
	if level != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = internal.NewLogWriter(log, "gin", slog.LevelDebug)
	gin.DefaultErrorWriter = internal.NewLogWriter(log, "gin", slog.LevelError)
}

func newStdLogger(l *slog.Logger, component string, level slog.Level) *log.Logger {
	return log.New(internal.NewLogWriter(l, component, level), "", 0)
}
