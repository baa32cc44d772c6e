// Package ingestion loads NDJSON code system bundles into concept storage.
//
// A bundle is a stream of JSON records, one per line: a CodeSystem
// descriptor first (url, version, name, title), then one concept per line
// (code, display, optional designations). Several systems can share a
// stream; each new descriptor switches the target system.
//
// The Loader batches writes, indexes every display as a designation so
// full-text search covers it, and refreshes denormalized concept counts once
// per load. Malformed records are skipped with a warning rather than
// aborting the stream.
package ingestion
