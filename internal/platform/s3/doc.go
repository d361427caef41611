// Package s3 provides a small S3 client used to store registry snapshots.
//
// It works against AWS S3 and S3-compatible object stores such as Hetzner
// Object Storage; a custom endpoint switches to path-style addressing.
package s3
