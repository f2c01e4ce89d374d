package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"learnhub-quiz-service/internal/app"
	"learnhub-quiz-service/internal/domain"
	"learnhub-quiz-service/internal/infra/memory"
	pgstore "learnhub-quiz-service/internal/infra/postgres"
	pgmigrations "learnhub-quiz-service/internal/infra/postgres/migrations"
	infraredis "learnhub-quiz-service/internal/infra/redis"
)

func TestQuizAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	content := pgstore.NewContentStore(pool, domain.ScoreByCount)
	if err := content.Seed(ctx, memory.SampleCatalog()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// seeding twice is an upsert
	if err := content.Seed(ctx, memory.SampleCatalog()); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	quizRepo := infraredis.NewQuizRepository(redisClient, content, 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	progress := app.NewProgressService(infraredis.NewKVStore(redisClient))
	service := app.NewQuizService(sessionStore, quizRepo, content, progress, app.QuizServiceOptions{})

	snap, err := service.StartQuiz(ctx, "u1", "1")
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if _, err := service.SubmitAnswer(ctx, "u1", snap.SessionID, domain.IndexAnswer(2)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	snap, err = service.SubmitAnswer(ctx, "u1", snap.SessionID, domain.IndexAnswer(0))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if snap.Result == nil || snap.Result.ScorePercent != 100 || !snap.Result.Passed {
		t.Fatalf("expected full marks, got %+v", snap.Result)
	}

	n, err := content.CountAttempts(ctx, "u1", "1")
	if err != nil || n != 1 {
		t.Fatalf("expected one stored attempt, got %d err=%v", n, err)
	}
	attempts, err := content.Attempts(ctx, "u1", "1")
	if err != nil || len(attempts) != 1 || attempts[0].Result.ScorePercent != 100 {
		t.Fatalf("unexpected attempts %+v err=%v", attempts, err)
	}
	if completion, ok, err := progress.QuizCompletion(ctx, "u1", "1"); err != nil || !ok || completion.Score != 100 {
		t.Fatalf("expected completion in redis, got %+v ok=%v err=%v", completion, ok, err)
	}
}

func TestContentStoreQueries(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	content := pgstore.NewContentStore(pool, domain.ScoreByCount)
	if err := content.Seed(ctx, memory.SampleCatalog()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	catalog := app.NewCatalogService(content, memory.NewQuizRepository(content, time.Minute))

	subjects, err := catalog.Subjects(ctx)
	if err != nil || len(subjects) != 6 {
		t.Fatalf("expected 6 subjects, got %d err=%v", len(subjects), err)
	}
	materials, err := catalog.Materials(ctx, "1")
	if err != nil || len(materials) != 2 || materials[0].ID != "1" {
		t.Fatalf("unexpected materials %+v err=%v", materials, err)
	}
	book, err := catalog.Book(ctx, "1")
	if err != nil || len(book.Chapters) != 2 {
		t.Fatalf("unexpected book %+v err=%v", book, err)
	}
	quiz, err := catalog.Quiz(ctx, "1")
	if err != nil || !quiz.Questions[0].CorrectAnswer.Equal(domain.IndexAnswer(2)) {
		t.Fatalf("quiz did not round-trip: %+v err=%v", quiz, err)
	}
	if _, err := catalog.Quiz(ctx, "404"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	found, err := catalog.Search(ctx, "GRAMMAR")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found.Subjects) != 1 || len(found.Materials) != 1 || len(found.Books) != 1 {
		t.Fatalf("unexpected search result %+v", found)
	}
	if found, _ := catalog.Search(ctx, "100%"); len(found.Books) != 0 {
		t.Fatalf("wildcards must be matched literally, got %+v", found.Books)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
