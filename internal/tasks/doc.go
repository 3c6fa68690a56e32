// Package tasks runs bulk operations against the watchlists with real-time progress reporting.
//
// # Core Operations
//
//  1. [Exporter.Export] : snapshot both watchlists
//     - Fetches movies and series concurrently
//     - Partitions each list into buckets
//     - Renders with the formatter package and optionally writes a file
//
//  2. [Importer.Import] : create items from parsed CSV rows
//     - Resolves genre names against the server's genre list
//     - Validates each row as a form draft before sending anything
//     - Creates items through a rate-limited worker pool
//     - Collects per-row failures; nothing is retried
//
// # Progress Reporting
//
// Both operations accept an optional channel of [ProgressUpdate].
// Updates use select with default to prevent blocking.
package tasks
