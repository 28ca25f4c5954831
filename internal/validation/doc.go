// Package validation checks user input before any request is sent: bucket
// names, key prefixes and custom endpoints.
package validation
