// Package notes turns git notes into release artifacts.
//
// This package implements:
//   - Ranged collection of notes from configured notes refs (Collector)
//   - Per-section deduplication of note messages (Aggregate)
//   - Changelog rendering with nested bullets and optional commit refs (AggregatedNotes.Render)
//   - Archival strategies that compute the git commands finalizing notes for a tag (Archiver)
//
// Repository access goes through the Repository interface; internal/git provides the
// go-git implementation. Nothing in this package logs, retries or executes commands.
package notes
