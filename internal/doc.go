// Package internal contains private implementation details of the checksum
// crawler. These packages are not intended for external use.
//
// The internal packages are organized as follows:
//   - source: item sources (bucket listing and manifest replay)
//   - distributor: demand-pull hand-off of work items to workers
//   - worker: fetch-and-hash workers
//   - aggregator: merges results into statistics and the error ledger
//   - pipeline: wires the above into one run
//   - store, operations, s3api: object store backends
//   - hasher, manifest, pool: digests, manifest files and read buffers
//   - config, report, progress, metrics: CLI-facing concerns
//   - validation: input validation logic
package internal
