package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/Ilan9903/Juris-IA/api"
	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/article"
	articlePostgres "github.com/Ilan9903/Juris-IA/internal/article/postgres"
	"github.com/Ilan9903/Juris-IA/internal/assistant"
	"github.com/Ilan9903/Juris-IA/internal/auth"
	authPostgres "github.com/Ilan9903/Juris-IA/internal/auth/postgres"
	"github.com/Ilan9903/Juris-IA/internal/conversation"
	conversationPostgres "github.com/Ilan9903/Juris-IA/internal/conversation/postgres"
	"github.com/Ilan9903/Juris-IA/internal/core/events"
	"github.com/Ilan9903/Juris-IA/internal/dashboard"
	dashboardPostgres "github.com/Ilan9903/Juris-IA/internal/dashboard/postgres"
	"github.com/Ilan9903/Juris-IA/internal/document"
	"github.com/Ilan9903/Juris-IA/internal/prompttemplate"
	promptPostgres "github.com/Ilan9903/Juris-IA/internal/prompttemplate/postgres"
	"github.com/Ilan9903/Juris-IA/internal/ratelimit"
	"github.com/Ilan9903/Juris-IA/internal/storage"
	"github.com/Ilan9903/Juris-IA/internal/transport"
	"github.com/Ilan9903/Juris-IA/internal/transport/rest"
	"github.com/Ilan9903/Juris-IA/internal/user"
	userPostgres "github.com/Ilan9903/Juris-IA/internal/user/postgres"
	"github.com/Ilan9903/Juris-IA/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Redis  *redis.Client
	Media  *storage.Media
	Events *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "env", deps.Config.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.Events.Wait(ctx); err != nil {
			deps.Logger.Warn("Pending event handlers abandoned", "error", err)
		}
		deps.close()
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func (d *Dependencies) close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	llm := assistant.NewOpenAIClient(cfg.OpenAI, lg)

	authService := auth.NewService(
		authPostgres.NewRepository(deps.Gorm),
		auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.TokenDuration),
		cfg.Security.BCryptCost,
		lg,
	)
	session := auth.NewCookieSession(cfg.Security, cfg.IsProduction())
	promptService := prompttemplate.NewService(promptPostgres.NewPromptTemplateRepository(deps.Gorm), lg)

	var health redis.Cmdable
	var limiter *ratelimit.Middleware
	if deps.Redis != nil {
		health = deps.Redis
		fw, err := ratelimit.NewFixedWindowLimiter(deps.Redis, ratelimit.DefaultPrefix, cfg.Redis.RateLimit.Requests, cfg.Redis.RateLimit.Window)
		if err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		limiter = ratelimit.NewMiddleware(base, fw)
	} else {
		lg.Warn("redis not configured, login and signup are not rate limited")
	}

	rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Base:   base,
		Health: rest.NewHealthHandler(deps.DB.DB, health),
		Auth:   auth.NewHandler(base, authService, session),
		RBAC:   auth.NewRBACAuthorization(base),
		User: user.NewHandler(base,
			user.NewService(userPostgres.NewUserRepository(deps.Gorm), deps.Media, authService, deps.Events, lg),
			session, cfg.Uploads),
		Conversation: conversation.NewHandler(base,
			conversation.NewService(conversationPostgres.NewConversationRepository(deps.Gorm), llm, promptService, lg)),
		Document: document.NewHandler(base,
			document.NewService(document.Extractor{}, llm, cfg.OpenAI.MaxContextChars, lg), cfg.Uploads),
		Article: article.NewHandler(base,
			article.NewService(articlePostgres.NewArticleRepository(deps.Gorm), deps.Media, deps.Events, lg), cfg.Uploads),
		Prompt: prompttemplate.NewHandler(base, promptService),
		Dashboard: dashboard.NewHandler(base,
			dashboard.NewService(dashboardPostgres.NewDashboardRepository(deps.DB), lg)),
		RateLimit: limiter,
	}, cfg.Server.Origins())

	return nil
}

func initializeDependencies() (*Dependencies, error) {
	ctx := context.Background()

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(config.Env, config.Logging.Level, config.Logging.Format)
	lg := logger.LoggerWrapper()

	if _, err := api.Load(ctx); err != nil {
		return nil, err
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db, config)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	store, err := storage.NewMinioStore(ctx, config.Storage)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	media := storage.NewMedia(store, config.Storage, lg)

	bus := events.NewEventBus(lg)
	storage.RegisterCleanup(bus, media)

	rdb, err := initRedis(ctx, config.Redis)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	return &Dependencies{
		Config: config,
		DB:     db,
		Gorm:   gormDB,
		Redis:  rdb,
		Media:  media,
		Events: bus,
		Router: chi.NewRouter(),
		Logger: lg,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx connection pool with gorm.
func initGorm(db *sqlx.DB, cfg *internal.Config) (*gorm.DB, error) {
	level := gormLogger.Warn
	if cfg.Logging.Level == "debug" {
		level = gormLogger.Info
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(level),
		TranslateError: true,
	})
}

// initRedis returns nil when no address is configured.
func initRedis(ctx context.Context, cfg internal.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})
	pingCtx, cancel := internal.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
