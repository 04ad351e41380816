// Package store loads and saves factor models by name.
//
// A ModelStore combines a blobstore.BlobStore with a codec. Loading detects
// the format from the data, so a store reads every format it knows no matter
// which codec it writes. Failures are reported as *StoreReadError or
// *StoreWriteError; a StoreReadError tells IO problems (missing blob, no
// permission, network) apart from format problems (foreign, corrupt or
// newer data).
package store
