package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	wstore "github.com/cryptoganster/content-pipeline/internal/adapter/weaviate"
	"github.com/cryptoganster/content-pipeline/internal/bus"
	"github.com/cryptoganster/content-pipeline/internal/bus/nsqtransport"
	"github.com/cryptoganster/content-pipeline/internal/config"
	"github.com/cryptoganster/content-pipeline/internal/store"
	"github.com/cryptoganster/content-pipeline/internal/store/memory"
	pgstore "github.com/cryptoganster/content-pipeline/internal/store/postgres"
)

// Infra is the concrete infrastructure Bootstrap connects to, separate
// from Dependencies so a caller can swap a subset (tests substitute
// memory.* repos and a nil VectorStore without touching the DB/NSQ code).
type Infra struct {
	DB          *sql.DB
	VectorStore *wstore.Sink // nil when StoreBackend is not "postgres"
	Transport   bus.Transport
}

// Bootstrap connects to every piece of real infrastructure the config
// names: Postgres (ping-retry, then migrate), Weaviate (client + schema
// ensure-with-retry), and, if enabled, an NSQ producer wrapped as the
// event bus's forwarding Transport. Grounded on the teacher's Bootstrap:
// same retry-loop-then-migrate-then-schema-ensure shape, narrowed to this
// module's dependency set.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Infra, error) {
	retryDelay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second

	if cfg.StoreBackend != "postgres" {
		return &Infra{}, nil
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open db: %w", err)
	}

	var pingErr error
	for i := 0; i < cfg.BootstrapRetryAttempts; i++ {
		if pingErr = db.Ping(); pingErr == nil {
			break
		}
		slog.Warn("bootstrap: db ping failed, retrying", "attempt", i+1, "error", pingErr)
		time.Sleep(retryDelay)
	}
	if pingErr != nil {
		return nil, fmt.Errorf("bootstrap: ping db: %w", pingErr)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: migration instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return nil, fmt.Errorf("bootstrap: migration up: %w", err)
	}

	var vecStore *wstore.Sink
	wCfg := weaviate.Config{Host: cfg.WeaviateHost, Scheme: cfg.WeaviateScheme}
	wClient, err := weaviate.NewClient(wCfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: weaviate client: %w", err)
	}
	vecStore = wstore.NewSink(wClient)
	if err := EnsureSchemaWithRetry(ctx, vecStore, cfg.BootstrapRetryAttempts, retryDelay); err != nil {
		return nil, fmt.Errorf("bootstrap: weaviate schema: %w", err)
	}

	var transport bus.Transport
	if cfg.EnableEventTransport {
		nsqCfg := nsq.NewConfig()
		producer, err := nsq.NewProducer(cfg.NSQDHost, nsqCfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: nsq producer: %w", err)
		}
		transport = nsqtransport.New(nsqtransport.Adapt(producer), "content_pipeline.event")
	}

	return &Infra{DB: db, VectorStore: vecStore, Transport: transport}, nil
}

// SchemaStore is the subset of *wstore.Sink EnsureSchemaWithRetry calls,
// narrowed so tests can substitute a fake without a live Weaviate cluster.
type SchemaStore interface {
	EnsureSchema(ctx context.Context) error
}

// EnsureSchemaWithRetry retries store.EnsureSchema against a cluster that
// may still be starting up.
func EnsureSchemaWithRetry(ctx context.Context, store SchemaStore, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = store.EnsureSchema(ctx); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}

// Repos is the repository set for a given backend: Postgres-backed in
// production, in-memory for STORE_BACKEND=memory dev/demo runs.
type Repos struct {
	Jobs        store.JobRepository
	Sources     store.SourceRepository
	Content     store.ContentRepository
	Refinements store.RefinementRepository
	Tallies     store.ChunkTallyRepository
}

// NewRepos builds the repository set named by cfg.StoreBackend.
func NewRepos(cfg *config.Config, db *sql.DB) Repos {
	if cfg.StoreBackend == "memory" {
		return Repos{
			Jobs:        memory.NewJobRepo(),
			Sources:     memory.NewSourceRepo(),
			Content:     memory.NewContentRepo(),
			Refinements: memory.NewRefinementRepo(),
			Tallies:     memory.NewChunkTallyRepo(),
		}
	}
	return Repos{
		Jobs:        pgstore.NewJobRepo(db),
		Sources:     pgstore.NewSourceRepo(db),
		Content:     pgstore.NewContentRepo(db),
		Refinements: pgstore.NewRefinementRepo(db),
		Tallies:     pgstore.NewChunkTallyRepo(db),
	}
}
