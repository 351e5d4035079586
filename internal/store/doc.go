// Package store persists generated invoices.
//
// FileStore writes into a local directory; MinioStore writes into an
// S3-compatible bucket. Both overwrite on Save, so the most recent
// document under a name always wins.
package store
