// Package client is a resilient reader for the vitrine listing API.
//
// A Client is constructed once and shared. It tracks whether the service
// is reachable, retries failed reads with exponential backoff, caches
// responses for a short time, and substitutes a built-in sample catalog
// when the service cannot be reached. Every read returns data; the
// Result says whether that data is live, cached or fallback.
//
// Concurrency: all methods are safe for concurrent use. Concurrent reads
// of the same URL share one network call, and concurrent health probes
// share one probe.
package client
