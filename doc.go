// Package gtfsvalidator checks GTFS schedule feeds for conformance with the
// GTFS reference and reports what it finds as notices.
//
// A run loads every table of a feed (a directory or a zip archive) in
// parallel, parses each CSV row against the table's schema, then runs a set
// of cross-table rules over the loaded feed. Everything found along the way
// is collected as notices, which are filtered, re-classified by severity
// overrides and aggregated per code into a JSON report.
//
// # Architecture
//
// The validator is split into small layers, each a package under pkg/:
//
//	pkg/schema      - Table and field schemas for the GTFS files
//	pkg/parse       - Field parsers for every GTFS field type
//	pkg/columnar    - Column-oriented row storage, one store per table
//	pkg/table       - CSV loading of one table into a container
//	pkg/input       - Directory, zip and in-memory feed sources
//	pkg/feed        - Parallel loading of all tables of a feed
//	pkg/notice      - Notices, the run-scoped container and the report
//	pkg/validator   - Rule kinds, the rule registry and the scheduler
//	pkg/rules       - Foreign keys and the cross-table rules
//	pkg/config      - Unified configuration management
//	pkg/logger      - Structured logging
//	pkg/metrics     - Prometheus collectors and memory snapshots
//	pkg/observability - Tracing
//
// internal/pipeline ties the layers together into a single run.
//
// # Quick Start
//
//	cfg := config.NewValidationConfig()
//	cfg.Threads = 4
//	cfg.CountryCode = "FR"
//
//	p, err := pipeline.New(cfg, logger.Get())
//	if err != nil {
//	    return err
//	}
//	result, err := p.RunPath(ctx, "feed.zip")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Report.Summary.Errors)
//
// Or from the command line:
//
//	gtfs-validator validate feed.zip --threads 4 --output report.json
//
// # Determinism
//
// The report does not depend on the number of threads: notices are sorted
// by code, severity and context before they are aggregated.
//
// # Configuration
//
// Configuration is read from an optional YAML file, then from GTFS_*
// environment variables, then from command-line flags. Environment
// variables are also substituted into the file with ${VAR_NAME} syntax.
package gtfsvalidator
