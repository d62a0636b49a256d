// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tomtom215/cinedex/internal/config"
)

const (
	// DefaultPostgresImage is the Postgres Docker image used for integration tests.
	DefaultPostgresImage = "postgres:16-alpine"

	// DefaultPostgresPort is the standard Postgres port inside the container.
	DefaultPostgresPort = "5432"

	// Test database credentials. These never leave the test container.
	testDBUser     = "cinedex"
	testDBPassword = "cinedex-test"
	testDBName     = "catalog"
)

// catalogSchema is the film catalog DDL applied to every fresh container.
// It mirrors the production content schema: three entity tables plus the
// two link tables joining persons and genres to filmworks.
const catalogSchema = `
CREATE SCHEMA IF NOT EXISTS content;

CREATE TABLE content.genre (
    id uuid PRIMARY KEY,
    name text NOT NULL,
    description text,
    created timestamp with time zone NOT NULL DEFAULT now(),
    modified timestamp with time zone NOT NULL DEFAULT now()
);

CREATE TABLE content.person (
    id uuid PRIMARY KEY,
    full_name text NOT NULL,
    created timestamp with time zone NOT NULL DEFAULT now(),
    modified timestamp with time zone NOT NULL DEFAULT now()
);

CREATE TABLE content.filmwork (
    id uuid PRIMARY KEY,
    title text NOT NULL,
    description text,
    creation_date date,
    rating double precision,
    type text NOT NULL,
    created timestamp with time zone NOT NULL DEFAULT now(),
    modified timestamp with time zone NOT NULL DEFAULT now()
);

CREATE TABLE content.filmworks_genres (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    filmwork_id uuid NOT NULL REFERENCES content.filmwork (id) ON DELETE CASCADE,
    genre_id uuid NOT NULL REFERENCES content.genre (id) ON DELETE CASCADE,
    created timestamp with time zone NOT NULL DEFAULT now(),
    UNIQUE (filmwork_id, genre_id)
);

CREATE TABLE content.filmworks_persons (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    filmwork_id uuid NOT NULL REFERENCES content.filmwork (id) ON DELETE CASCADE,
    person_id uuid NOT NULL REFERENCES content.person (id) ON DELETE CASCADE,
    role text NOT NULL,
    created timestamp with time zone NOT NULL DEFAULT now(),
    UNIQUE (filmwork_id, person_id, role)
);

CREATE INDEX idx_genre_modified ON content.genre (modified, id);
CREATE INDEX idx_person_modified ON content.person (modified, id);
CREATE INDEX idx_filmwork_modified ON content.filmwork (modified, id);
CREATE INDEX idx_fw_genres_genre ON content.filmworks_genres (genre_id);
CREATE INDEX idx_fw_persons_person ON content.filmworks_persons (person_id);
`

// PostgresContainer represents a running Postgres container with the film
// catalog schema created.
type PostgresContainer struct {
	testcontainers.Container
	Host string
	Port int
}

// PostgresOption configures the Postgres container.
type PostgresOption func(*postgresConfig)

type postgresConfig struct {
	image        string
	startTimeout time.Duration
}

// WithPostgresImage sets a custom Postgres Docker image.
func WithPostgresImage(image string) PostgresOption {
	return func(c *postgresConfig) {
		c.image = image
	}
}

// WithPostgresStartTimeout sets the timeout for waiting for Postgres to start.
func WithPostgresStartTimeout(timeout time.Duration) PostgresOption {
	return func(c *postgresConfig) {
		c.startTimeout = timeout
	}
}

// NewPostgresContainer creates and starts a Postgres container and applies
// the catalog schema. The caller owns the container and must Terminate it.
func NewPostgresContainer(ctx context.Context, opts ...PostgresOption) (*PostgresContainer, error) {
	cfg := &postgresConfig{
		image:        DefaultPostgresImage,
		startTimeout: 60 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultPostgresPort + "/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     testDBUser,
			"POSTGRES_PASSWORD": testDBPassword,
			"POSTGRES_DB":       testDBName,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(DefaultPostgresPort+"/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, DefaultPostgresPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	pg := &PostgresContainer{
		Container: container,
		Host:      host,
		Port:      mapped.Int(),
	}

	if err := pg.applySchema(ctx); err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}

	return pg, nil
}

// Config returns a PostgresConfig pointing at the container, suitable for
// database.New.
func (c *PostgresContainer) Config() config.PostgresConfig {
	return config.PostgresConfig{
		Host:           c.Host,
		Port:           c.Port,
		User:           testDBUser,
		Password:       testDBPassword,
		DBName:         testDBName,
		SSLMode:        "disable",
		MaxConns:       4,
		ConnectTimeout: 10 * time.Second,
	}
}

// DSN returns a keyword/value connection string for direct pgx access.
func (c *PostgresContainer) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, testDBUser, testDBPassword, testDBName)
}

// Exec runs a single SQL statement against the container. Intended for
// seeding fixture rows from tests.
func (c *PostgresContainer) Exec(ctx context.Context, sql string, args ...any) error {
	conn, err := pgx.Connect(ctx, c.DSN())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// applySchema creates the content schema inside the fresh container.
func (c *PostgresContainer) applySchema(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, c.DSN())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, catalogSchema); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}
	return nil
}

// Terminate stops and removes the Postgres container.
func (c *PostgresContainer) Terminate(ctx context.Context) error {
	return c.Container.Terminate(ctx)
}
