package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	authcleanup "github.com/Soodgit/ai-code-documenter/internal/auth/cleanup"
	authhttp "github.com/Soodgit/ai-code-documenter/internal/auth/http"
	authrepo "github.com/Soodgit/ai-code-documenter/internal/auth/repository"
	authservice "github.com/Soodgit/ai-code-documenter/internal/auth/service"
	"github.com/Soodgit/ai-code-documenter/internal/common/clock"
	"github.com/Soodgit/ai-code-documenter/internal/common/config"
	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
	commoncrypto "github.com/Soodgit/ai-code-documenter/internal/common/crypto"
	"github.com/Soodgit/ai-code-documenter/internal/common/db"
	commonhttp "github.com/Soodgit/ai-code-documenter/internal/common/http"
	"github.com/Soodgit/ai-code-documenter/internal/common/jwtverify"
	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
	"github.com/Soodgit/ai-code-documenter/internal/common/resilience"
	srv "github.com/Soodgit/ai-code-documenter/internal/common/server"
	docshttp "github.com/Soodgit/ai-code-documenter/internal/docs/http"
	docsservice "github.com/Soodgit/ai-code-documenter/internal/docs/service"
	"github.com/Soodgit/ai-code-documenter/internal/migrations"
	snippethttp "github.com/Soodgit/ai-code-documenter/internal/snippet/http"
	snippetrepo "github.com/Soodgit/ai-code-documenter/internal/snippet/repository"
	snippetservice "github.com/Soodgit/ai-code-documenter/internal/snippet/service"
)

// App owns everything the API process needs: configuration, logger,
// database pool, optional Redis client and the composed HTTP handler.
type App struct {
	Config  config.ServerConfig
	Log     *logger.Logger
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Handler http.Handler

	cancelBackground context.CancelFunc
}

func NewApp() (*App, error) {
	log, err := logger.New(os.Getenv("LOG_DIR"), "api", os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := db.RunMigrations(ctx, log, cfg.DatabaseURL, migrations.FS); err != nil {
		cancel()
		return nil, err
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	if pool == nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize database pool")
	}

	rdb := newRedisClient(ctx, cfg, log)

	userRepo := authrepo.NewPgUserRepository(pool)
	snippetRepo := snippetrepo.NewPgSnippetRepository(pool)

	hasher := &commoncrypto.BcryptHasher{}
	idGenerator := commoncrypto.NewUUIDGenerator()
	clk := clock.NewRealClock()

	tokens := authservice.NewTokenIssuer(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		idGenerator,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
		clk,
	)

	authService := authservice.NewAuthService(
		userRepo,
		hasher,
		idGenerator,
		tokens,
		authservice.NewLogEmailSender(log),
		clk,
		log,
	)

	snippetService := snippetservice.NewSnippetService(snippetRepo, idGenerator, clk, log)
	docsService := newDocsService(cfg, rdb, log)

	go authcleanup.StartTokenCleanup(ctx, userRepo, log)

	authenticate := jwtverify.Middleware(cfg.AccessTokenSecret, log)
	cookies := authhttp.CookieConfig{
		Name:      constants.RefreshCookieName,
		CrossSite: cfg.IsProduction(),
	}

	mux := http.NewServeMux()
	mux.Handle("/auth/", authhttp.NewHandler(authService, log, cookies, authenticate))

	snippetHandler := snippethttp.NewHandler(snippetService, log, authenticate)
	mux.Handle("/api/snippets", snippetHandler)
	mux.Handle("/api/snippets/", snippetHandler)

	mux.Handle("/api/docs/", docshttp.NewHandler(docsService, cfg.AccessTokenSecret, log, authenticate))

	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())

	rateLimiter := commonhttp.NewStrictRateLimiter()
	baseHandler := commonhttp.BuildBaseHandler("api", log, mux)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/health" || path == "/metrics" {
			baseHandler.ServeHTTP(w, r)
			return
		}
		rateLimiter.MiddlewareForPath(path)(baseHandler).ServeHTTP(w, r)
	})

	return &App{
		Config:           cfg,
		Log:              log,
		Pool:             pool,
		Redis:            rdb,
		Handler:          handler,
		cancelBackground: cancel,
	}, nil
}

// Run blocks until the process receives a shutdown signal.
func (a *App) Run() {
	server := srv.NewServer(srv.DefaultServerConfig(a.Config.HTTPPort), a.Handler)

	hooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			a.Log.Infof("api service: stopping background workers")
			a.cancelBackground()
			return nil
		},
		func(ctx context.Context) error {
			if a.Redis != nil {
				return a.Redis.Close()
			}
			return nil
		},
		func(ctx context.Context) error {
			a.Pool.Close()
			return nil
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, a.Log, "api", hooks)
}

// newRedisClient connects the docs cache backend. An empty address keeps
// the cache disabled; a failed ping only logs, the app starts without it.
func newRedisClient(ctx context.Context, cfg config.ServerConfig, log *logger.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, docs cache disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warnf("redis ping failed, docs cache disabled: %v", err)
		if cerr := rdb.Close(); cerr != nil {
			log.Warnf("failed to close redis client: %v", cerr)
		}
		return nil
	}

	log.Infof("redis connected: %s", cfg.RedisAddr)
	return rdb
}

func newDocsService(cfg config.ServerConfig, rdb *redis.Client, log *logger.Logger) *docsservice.DocsService {
	cache := docsservice.NewCache(rdb, cfg.DocsCacheTTL, log)
	fallback := docsservice.NewFallbackGenerator()

	var provider docsservice.Generator
	if cfg.ProviderURL != "" {
		provider = docsservice.NewProviderClient(
			cfg.ProviderURL,
			cfg.ProviderAPIKey,
			cfg.ProviderModel,
			cfg.ProviderTimeout,
			log,
		)
	} else {
		log.Info("docs provider not configured, using fallback generator only")
	}

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  constants.DefaultCircuitBreakerThreshold,
		Timeout:    constants.DefaultCircuitBreakerTimeout,
		ResetAfter: constants.DefaultCircuitBreakerReset,
		Name:       "docs_provider",
		Logger:     log,
	})

	return docsservice.NewDocsService(cache, provider, fallback, breaker, log)
}
