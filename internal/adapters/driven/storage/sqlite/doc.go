// Package sqlite stores documents and chunks in a single SQLite file using
// the pure-Go modernc.org/sqlite driver.
//
// Embeddings are little-endian float32 BLOBs and metadata is JSON text.
// Chunks reference their document with ON DELETE CASCADE. The schema
// version lives in PRAGMA user_version and migrations/NNN_*.up.sql files
// are applied in order on open.
package sqlite
