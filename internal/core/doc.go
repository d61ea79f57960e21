// Package core provides the business logic for catalog CSV imports and exports.
//
// The package holds all domain logic independent of any transport. Web
// handlers, CLI tools and tests use it the same way.
//
// # Architecture
//
//   - Kinds: products, variants and the inventory matrix, registered in a
//     static table with an importer and an exporter each (see [Get], [All]).
//   - Importers: pure functions from CSV text and a catalog [Snapshot] to an
//     [ImportResult]. They never write to the store.
//   - Exporters: write CSV that the matching importer reads back.
//   - Service: binds a catalog.Store, a [SessionStore] and an
//     [ImportLimiter] into the operations the HTTP API exposes.
//
// # Import Flow
//
//  1. [Service.PreviewImport] takes a slot from the limiter, reads the upload
//     with BOM stripping and UTF-8 repair, snapshots the catalog and runs the
//     importer.
//  2. The result is kept in an [ImportSession] until it expires.
//  3. The user accepts conflicts with [Service.ToggleConflict].
//  4. [Service.ProceedImport] passes only when no row was skipped with an
//     error and, if there are conflicts, at least one is accepted.
//
// Every data row is either processed or skipped with exactly one
// [ImportError]. Processed rows may carry warnings or take part in a
// product_options [ImportConflict].
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Each
// category has its own code prefix:
//
//   - IMP001-IMP005: import kind, gate and capacity errors
//   - FILE001-FILE003: upload size and presence
//   - SES001-SES003: sessions, cancellation and timeouts
//   - CAT001-CAT003: catalog not found, duplicates and invalid input
//   - DB001-DB003: database driver errors
//
// Row-level problems are not Go errors; they are reported in the result.
package core
