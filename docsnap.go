// Package docsnap materializes a documentation corpus published through a
// static-site search index into a locally queryable snapshot. It speaks the
// index's binary publishing format (gzip-compressed, content-addressed
// fragments), fetches every page with bounded concurrency, and replaces the
// on-disk snapshot atomically so concurrent readers never observe a partial
// file.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or concern (e.g., sqlite/, http/, ingest/).
package docsnap
