package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"learnhub-quiz-service/internal/app"
	"learnhub-quiz-service/internal/config"
	"learnhub-quiz-service/internal/domain"
	"learnhub-quiz-service/internal/infra/identity"
	"learnhub-quiz-service/internal/infra/memory"
	pgstore "learnhub-quiz-service/internal/infra/postgres"
	redisstore "learnhub-quiz-service/internal/infra/redis"
	"learnhub-quiz-service/internal/infra/sqlite"
)

// contentBackend is what both the sample catalog and Postgres provide.
type contentBackend interface {
	app.ContentRepository
	app.AttemptRepository
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

type services struct {
	catalog  *app.CatalogService
	quizzes  *app.QuizService
	progress *app.ProgressService
	auth     *app.AuthService
	closers  []func()
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// buildServices picks a backend per concern: Postgres or the sample catalog for
// content, Redis or process memory for caches and sessions, and Redis, SQLite or
// memory for key-value progress data.
func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	svc := &services{}
	scoring := cfg.ScoringMode()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		svc.closers = append(svc.closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var content contentBackend = memory.NewContentStore(memory.SampleCatalog(), scoring)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.closers = append(svc.closers, pool.Close)
		content = pgstore.NewContentStore(pool, scoring)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, content, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(content, quizTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	var kv app.KeyValueStore
	switch {
	case redisClient != nil:
		kv = redisstore.NewKVStore(redisClient)
	case cfg.SQLite.Path != "":
		store, err := sqlite.NewKVStore(cfg.SQLite.Path)
		if err != nil {
			svc.Close()
			return nil, err
		}
		if n, err := store.PurgeExpired(ctx); err != nil {
			log.Warn().Err(err).Msg("purge expired kv rows")
		} else if n > 0 {
			log.Info().Int64("rows", n).Msg("purged expired kv rows")
		}
		svc.closers = append(svc.closers, func() { _ = store.Close() })
		kv = store
	default:
		kv = memory.NewKVStore()
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		log.Warn().Msg("auth.secret not configured, using an insecure development secret")
		secret = "learnhub-dev-secret"
	}
	provider := identity.NewLocalProvider(secret, config.TTLDuration(cfg.Auth.TokenTTL, time.Hour))

	svc.progress = app.NewProgressService(kv)
	svc.auth = app.NewAuthService(provider, kv, config.TTLDuration(cfg.Auth.AutoLogin, app.DefaultAutoLoginDuration))
	svc.closers = append(svc.closers, svc.auth.Close)
	svc.catalog = app.NewCatalogService(content, quizRepo)
	svc.quizzes = app.NewQuizService(sessions, quizRepo, content, svc.progress, app.QuizServiceOptions{
		Scoring:       scoring,
		TickEvery:     config.TTLDuration(cfg.Quiz.TickEvery, time.Second),
		ReportTimeout: config.TTLDuration(cfg.Quiz.ReportTimeout, 10*time.Second),
		IdleTimeout:   config.TTLDuration(cfg.Quiz.IdleTimeout, 30*time.Minute),
	})

	log.Info().
		Bool("postgres", cfg.Postgres.URL != "").
		Bool("redis", redisClient != nil).
		Str("scoring", string(scoring)).
		Msg("services ready")
	return svc, nil
}
