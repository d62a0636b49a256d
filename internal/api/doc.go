// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

/*
Package api provides the operational HTTP surface of the pipeline, served
only in interval mode. Single-shot runs have nothing to probe and skip it.

Three endpoints on a Chi router:

	GET /healthz   liveness: the process is up
	GET /readyz    readiness: catalog database and search index both reachable
	GET /metrics   Prometheus exposition

Readiness pings both externals on every call and answers 503 while either
is down, so an orchestrator stops routing probes to a pipeline that cannot
make progress. There is no authentication: the surface exposes no catalog
data and is expected to listen on an internal interface.

Every request carries an X-Request-ID (honored from the client or
generated) that is attached to the logging context for correlation.
*/
package api
