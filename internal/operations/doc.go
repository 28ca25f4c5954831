// Package operations contains the low-level AWS SDK interactions the S3
// store is built from: paginated listing and object download.
//
// Each operation is isolated into its own subpackage for better organization
// and testability.
package operations
