// =============================================================================
// OC Consolidator - Main Entry Point
// =============================================================================
//
// USAGE:
//   consolidator import    - Consolidate two spreadsheets and upsert the orders
//   consolidator preview   - Consolidate without submitting
//   consolidator serve     - Run the HTTP API
//   consolidator migrate   - Manage the local order store schema
//   consolidator validate  - Check configuration and embedded migrations
//   consolidator version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - api/       : HTTP routes, controllers and middleware (chi)
//   - internal/  : Import pipeline and order stores
//   - pkg/       : Shared infrastructure (logging, errors, database, metrics)
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/oc-consolidator/cmd"
)

func main() {
	cmd.Execute()
}
