package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridetracker/config"
	"ridetracker/pkg/logger"
	"ridetracker/storage"
)

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
	log  logger.ILogger
}

func New(ctx context.Context, cfg config.Config, log logger.ILogger) (*Store, error) {
	url := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.PostgresHost,
		cfg.PostgresPort,
		cfg.PostgresDB,
	)

	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		log.Error("error while parsing Postgres config", logger.Error(err))
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error("failed to connect Postgres", logger.Error(err))
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Error("failed to ping Postgres", logger.Error(err))
		return nil, err
	}

	if err := runMigrations(url, cfg.MigrationsPath, log); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("Postgres connected", logger.String("db", cfg.PostgresDB))

	return &Store{
		pool: pool,
		log:  log,
	}, nil
}

func runMigrations(url, dir string, log logger.ILogger) error {
	mPath := dir
	if !filepath.IsAbs(mPath) {
		cwd, _ := os.Getwd()
		mPath = filepath.Join(cwd, dir)
	}

	m, err := migrate.New("file://"+mPath, url)
	if err != nil {
		log.Error("migration init error", logger.String("path", mPath), logger.Error(err))
		return err
	}
	defer m.Close()

	if err = m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no migrations to apply")
			return nil
		}
		log.Error("migration up error", logger.Error(err))
		return err
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) User() storage.IUserStorage       { return NewUserRepo(s.pool, s.log) }
func (s *Store) Ride() storage.IRideStorage       { return NewRideRepo(s.pool, s.log) }
func (s *Store) Expense() storage.IExpenseStorage { return NewExpenseRepo(s.pool, s.log) }
func (s *Store) Session() storage.ISessionStorage { return NewSessionRepo(s.pool, s.log) }
func (s *Store) Token() storage.ITokenStorage     { return NewTokenRepo(s.pool, s.log) }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
