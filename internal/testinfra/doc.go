// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to manage Docker containers for integration tests,
// providing realistic testing environments that closely match production.
//
// # Postgres Container
//
// The PostgresContainer provides a real Postgres instance with the film catalog
// schema pre-created:
//
//	func TestCatalogQueries(t *testing.T) {
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer pg.Terminate(ctx)
//
//	    db, err := database.New(ctx, pg.Config())
//	    // Test against a real catalog database
//	}
//
// # Search Index Stub
//
// MockElasticServer is an in-process HTTP stub that speaks just enough of the
// bulk-index protocol to exercise the loader end to end without a real cluster.
// It captures every request body for verification and supports failure injection.
//
// # CI Considerations
//
// Container tests require Docker and network access. In CI:
//   - Self-hosted runners have Docker pre-installed
//   - Container images are cached between runs
//   - Tests are skipped gracefully if Docker is unavailable
//
// First run may need to download container images. Subsequent runs use cached images.
package testinfra
