// Package testutils provides IntegrationSuite, a testcontainers-backed
// Postgres+Weaviate+NSQ harness for internal/store/postgres and
// internal/adapter/weaviate integration tests, grounded on the teacher's
// internal/testutils.IntegrationSuite: same three-container shape (run
// migrations against a real Postgres, stand up a real Weaviate, stand up a
// real nsqd), narrowed to this module's config.Config fields.
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"github.com/cryptoganster/content-pipeline/internal/config"
)

// IntegrationSuite owns the lifecycle of one Postgres, one Weaviate, and
// one nsqd container for the duration of a test. Callers that only need a
// subset (e.g. a postgres-only repo test) still pay for all three today;
// splitting into per-backend suites is a candidate follow-up once the
// postgres and weaviate test files outgrow sharing one suite.
type IntegrationSuite struct {
	T        *testing.T
	DB       *sql.DB
	Weaviate *weaviate.Client
	NSQ      *nsq.Producer

	pgContainer       *postgres.PostgresContainer
	weaviateContainer testcontainers.Container
	nsqContainer      testcontainers.Container

	// SkipMigrations lets a test stand up a bare database to exercise
	// Bootstrap's own migration step instead of this suite's.
	SkipMigrations bool
}

func NewIntegrationSuite(t *testing.T) *IntegrationSuite {
	return &IntegrationSuite{T: t}
}

func (s *IntegrationSuite) Setup() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("content_pipeline_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(s.T, err)
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(s.T, err)

	s.DB, err = sql.Open("postgres", connStr)
	require.NoError(s.T, err)

	_, b, _, _ := runtime.Caller(0)
	basepath := filepath.Dir(b)
	migrationPath := fmt.Sprintf("file://%s/../../migrations", basepath)

	if !s.SkipMigrations {
		m, err := migrate.New(migrationPath, connStr)
		require.NoError(s.T, err)
		require.NoError(s.T, m.Up())
	}

	weaviateReq := testcontainers.ContainerRequest{
		Image:        "semitechnologies/weaviate:latest",
		ExposedPorts: []string{"8080/tcp", "50051/tcp"},
		Env: map[string]string{
			"AUTHENTICATION_ANONYMOUS_ACCESS_ENABLED": "true",
			"DEFAULT_VECTORIZER_MODULE":               "none",
			"PERSISTENCE_DATA_PATH":                   "/var/lib/weaviate",
		},
		WaitingFor: wait.ForHTTP("/v1/meta").WithPort("8080/tcp").WithStartupTimeout(60 * time.Second),
	}
	weaviateC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: weaviateReq,
		Started:          true,
	})
	require.NoError(s.T, err)
	s.weaviateContainer = weaviateC

	wHost, err := weaviateC.Host(ctx)
	require.NoError(s.T, err)
	wPort, err := weaviateC.MappedPort(ctx, "8080")
	require.NoError(s.T, err)

	s.Weaviate, err = weaviate.NewClient(weaviate.Config{
		Host:   fmt.Sprintf("%s:%s", wHost, wPort.Port()),
		Scheme: "http",
	})
	require.NoError(s.T, err)

	nsqReq := testcontainers.ContainerRequest{
		Image:        "nsqio/nsq:v1.3.0",
		ExposedPorts: []string{"4150/tcp", "4151/tcp"},
		Cmd:          []string{"/nsqd", "--broadcast-address=localhost", "--max-msg-size=10485760"},
		WaitingFor:   wait.ForLog("TCP: listening on").WithStartupTimeout(60 * time.Second),
	}
	nsqC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: nsqReq,
		Started:          true,
	})
	require.NoError(s.T, err)
	s.nsqContainer = nsqC

	nsqCfg := nsq.NewConfig()
	s.NSQ, err = nsq.NewProducer(s.nsqAddress(), nsqCfg)
	require.NoError(s.T, err)
}

func (s *IntegrationSuite) Teardown() {
	ctx := context.Background()
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(ctx); err != nil {
			slog.Warn("testutils: terminate postgres container", "error", err)
		}
	}
	if s.weaviateContainer != nil {
		if err := s.weaviateContainer.Terminate(ctx); err != nil {
			slog.Warn("testutils: terminate weaviate container", "error", err)
		}
	}
	if s.nsqContainer != nil {
		if err := s.nsqContainer.Terminate(ctx); err != nil {
			slog.Warn("testutils: terminate nsq container", "error", err)
		}
	}
}

// GetAppConfig returns a Config pointed at this suite's three containers,
// suitable for passing straight into app.New/app.NewRepos.
func (s *IntegrationSuite) GetAppConfig() *config.Config {
	ctx := context.Background()

	host, _ := s.pgContainer.Host(ctx)
	port, _ := s.pgContainer.MappedPort(ctx, "5432")

	wHost, _ := s.weaviateContainer.Host(ctx)
	wPort, _ := s.weaviateContainer.MappedPort(ctx, "8080")

	return &config.Config{
		StoreBackend:   "postgres",
		DBHost:         host,
		DBPort:         port.Int(),
		DBUser:         "test",
		DBPass:         "test",
		DBName:         "content_pipeline_test",
		WeaviateHost:   fmt.Sprintf("%s:%s", wHost, wPort.Port()),
		WeaviateScheme: "http",
		NSQDHost:       s.nsqAddress(),
	}
}

func (s *IntegrationSuite) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func (s *IntegrationSuite) nsqAddress() string {
	ctx := context.Background()
	host, _ := s.nsqContainer.Host(ctx)
	port, _ := s.nsqContainer.MappedPort(ctx, "4150")
	return fmt.Sprintf("%s:%s", host, port.Port())
}

// ConsumeOne blocks for up to five seconds for a single message on topic,
// failing the test on timeout. Used to assert nsqtransport actually
// forwarded a published event.
func (s *IntegrationSuite) ConsumeOne(topic string) *nsq.Message {
	var msg *nsq.Message
	var wg sync.WaitGroup
	wg.Add(1)

	consumer, err := nsq.NewConsumer(topic, "test-ch-"+topic, nsq.NewConfig())
	require.NoError(s.T, err)

	consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
		msg = m
		wg.Done()
		return nil
	}))

	require.NoError(s.T, consumer.ConnectToNSQD(s.nsqAddress()))
	defer consumer.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
	}()

	select {
	case <-done:
		return msg
	case <-time.After(5 * time.Second):
		s.T.Fatalf("testutils: timeout waiting for message on topic %s", topic)
		return nil
	}
}
