// Package fetch implements bounded-concurrency batch resolution of item IDs.
//
// The Hacker News API has no batch endpoint: every item costs one request.
// This package turns an ordered ID slice into an equally ordered outcome
// slice while capping the number of in-flight resolve calls, so a page of
// IDs can be filled in parallel without overwhelming the upstream.
//
// Example usage:
//
//	fetcher, err := fetch.NewFetcher(hnClient, fetch.DefaultConfig())
//	outcomes, err := fetcher.FetchAll(ctx, ids)
//
// The fetcher:
//   - Gates resolve calls with a fixed-size semaphore (default 10)
//   - Applies a per-item timeout, counting overruns as transient failures
//   - Isolates failures: one bad ID yields one failed outcome, nothing more
//   - Writes each outcome into its input-position slot, so output order
//     always matches input order regardless of completion order
//   - Returns only once every ID is terminal; cancellation aborts the whole
//     batch with an error instead of returning partial results
package fetch
