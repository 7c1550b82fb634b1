package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"cquiz-service/internal/app"
	"cquiz-service/internal/auth"
	"cquiz-service/internal/domain"
	"cquiz-service/internal/infra/memory"
	"cquiz-service/internal/infra/postgres"
	infraredis "cquiz-service/internal/infra/redis"
	"cquiz-service/internal/infra/storetest"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

func TestQuizAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	if _, err := postgres.Migrate(ctx, pgURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	group, err := postgres.Migrate(ctx, pgURL)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if !group.IsZero() {
		t.Fatalf("expected no pending migrations, got %s", group)
	}

	pool, err := postgres.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	users := postgres.NewUserStore(pool)
	results := postgres.NewResultStore(pool)
	snapshots := infraredis.NewSnapshotStore(redisClient, 5*time.Minute)

	authService := auth.NewService(users, "integration-secret", time.Hour, auth.WithHashCost(bcrypt.MinCost))
	who, err := authService.SignUp(ctx, "Ada@Example.com", "secret1", "Ada")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := authService.SignUp(ctx, "ada@example.com", "secret1", ""); auth.CodeOf(err) != auth.CodeEmailInUse {
		t.Fatalf("expected email in use, got %v", err)
	}
	if _, err := authService.SignIn(ctx, "ada@example.com", "secret1"); err != nil {
		t.Fatalf("signin: %v", err)
	}

	cfg := app.DefaultSessionConfig()
	cfg.TickInterval = 0
	newQuiz := func() *app.QuizService {
		return app.NewQuizService(
			app.NewBank(app.DefaultQuestions()),
			memory.NewSessionStore(),
			snapshots,
			results,
			app.WithSessionConfig(cfg),
			app.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		)
	}

	quiz := newQuiz()
	view := quiz.Start(ctx, who)
	first := view.Questions[0]
	if _, err := quiz.SelectAnswer(ctx, who, first.ID, first.Options[0]); err != nil {
		t.Fatalf("select: %v", err)
	}

	// A fresh process restores the attempt from redis.
	restarted := newQuiz()
	resumed, err := restarted.Resume(ctx, who)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Answers[first.ID] != first.Options[0] || resumed.Questions[0].ID != first.ID {
		t.Fatalf("resumed session differs: %+v", resumed.Answers)
	}

	result, err := restarted.Submit(ctx, who)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.ID == "" || result.TotalQuestions != domain.QuestionCount || len(result.Answers) != domain.QuestionCount {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := restarted.Resume(ctx, who); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected no session after submit, got %v", err)
	}

	svc := app.NewResultService(results, nil)
	mine, err := svc.ListMine(ctx, who)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != result.ID || mine[0].Answers[0].QuestionID != first.ID {
		t.Fatalf("unexpected listing %+v", mine)
	}
	stranger := domain.Identity{UID: "x", Email: "eve@example.com"}
	if _, err := svc.Get(ctx, stranger, false, result.ID); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected not found for stranger, got %v", err)
	}

	n, err := svc.DeleteAll(ctx)
	if err != nil || n != 1 {
		t.Fatalf("delete all: n=%d err=%v", n, err)
	}
}

func TestPostgresStoreContract(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	if _, err := postgres.Migrate(ctx, pgURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := postgres.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	truncate := func(t *testing.T) {
		t.Helper()
		if _, err := pool.Exec(ctx, `TRUNCATE quiz_results, users`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
	}
	storetest.ResultStore(t, func(t *testing.T) app.ResultStore {
		truncate(t)
		return postgres.NewResultStore(pool)
	})
	storetest.UserStore(t, func(t *testing.T) auth.UserStore {
		truncate(t)
		return postgres.NewUserStore(pool)
	})
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
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
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
