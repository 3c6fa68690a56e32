// Package models defines the domain entities of the watchlog media tracker.
//
// The package contains three categories of types:
//
// 1. Server-owned records, decoded from the media API:
//   - [Genre] : read-only reference data
//   - [Item] : a movie or a series (a "watchable item")
//   - [Status] : the bucket an item lives in
//
// 2. Client-side transient state:
//   - [Draft] : the form buffer behind a create/edit modal
//   - [ValidationResult] : the outcome of [Validate]
//
// 3. Wire bodies:
//   - [Payload] : the create/update request body
//
// Status transitions are strictly ordered TO_WATCH → IN_PROGRESS → COMPLETED and move one step at a time ([Status.Next], [Status.Prev]).
// [PartitionByStatus] groups a list into [Buckets]; it is recomputed on demand and never cached.
package models
