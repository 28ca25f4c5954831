// Package list handles paginated S3 object listing.
//
// Each call fetches exactly one page, so callers control how many keys are
// held in memory at once.
package list
