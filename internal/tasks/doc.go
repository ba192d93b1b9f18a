// Package tasks runs long catalog operations with progress reporting.
//
// # Bulk export
//
// [ExportEngine.BulkExport] writes several movie listings at once: the weekly trending list,
// genre listings and search results. A single producer fetches each listing from the movie
// service, paced by a rate limiter, and hands it to a pool of workers that write the files in
// the requested format (json, csv, markdown, txt). Failed listings are recorded in the result
// without stopping the others, and an export_manifest.json summarizing every listing is
// written at the end.
//
// # Progress Reporting
//
// Progress is sent over an optional channel as [ProgressUpdate] values. Sends never block; an
// update is dropped when the channel is full.
package tasks
