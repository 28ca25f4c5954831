// Package download opens S3 objects for streaming.
//
// Bodies are returned unread; the caller consumes and closes them, so no
// object is ever buffered whole in memory.
package download
