package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres implements interfaces.Repository backed by PostgreSQL
type Postgres struct {
	db *sql.DB
}

var _ interfaces.Repository = &Postgres{}

type config struct {
	migrate bool
}

type Option func(*config)

// WithoutMigration skips applying pending migrations on open
func WithoutMigration() Option {
	return func(c *config) {
		c.migrate = false
	}
}

// New opens a connection pool for dsn and applies pending migrations
func New(ctx context.Context, dsn string, opts ...Option) (*Postgres, error) {
	cfg := &config{migrate: true}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping database")
	}

	if cfg.migrate {
		if err := Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an existing connection pool
func NewWithDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate applies every pending embedded migration. It returns nil when
// the schema is already current.
func Migrate(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return goerr.Wrap(err, "failed to create migration source")
	}

	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return goerr.Wrap(err, "failed to create migration db driver")
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return goerr.Wrap(err, "failed to create migrator")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	return nil
}

func (p *Postgres) Risk() interfaces.RiskRepository {
	return &riskRepository{db: p.db}
}

func (p *Postgres) Mitigation() interfaces.MitigationRepository {
	return &mitigationRepository{db: p.db}
}

func (p *Postgres) Category() interfaces.CategoryRepository {
	return &categoryRepository{db: p.db}
}

func (p *Postgres) Framework() interfaces.FrameworkRepository {
	return &frameworkRepository{db: p.db}
}

func (p *Postgres) Control() interfaces.ControlRepository {
	return &controlRepository{db: p.db}
}

func (p *Postgres) Audit() interfaces.AuditRepository {
	return &auditRepository{db: p.db}
}

func (p *Postgres) User() interfaces.UserRepository {
	return &userRepository{db: p.db}
}

func (p *Postgres) Close(ctx context.Context) error {
	return p.db.Close()
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// wrapWriteErr maps constraint violations to the repository sentinels
func wrapWriteErr(err error, msg string, values ...goerr.Option) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		values = append(values, goerr.V("constraint", pqErr.Constraint))
		switch pqErr.Code {
		case uniqueViolation:
			return goerr.Wrap(interfaces.ErrConflict, msg, values...)
		case foreignKeyViolation:
			return goerr.Wrap(interfaces.ErrNotFound, msg, values...)
		}
	}
	return goerr.Wrap(err, msg, values...)
}

// expectAffected returns ErrNotFound when a write touched no row
func expectAffected(res sql.Result, msg string, values ...goerr.Option) error {
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return goerr.Wrap(interfaces.ErrNotFound, msg, values...)
	}
	return nil
}

func nullString[T ~string](v *T) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*v), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
