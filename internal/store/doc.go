// Package store provides SQLite-backed storage for the product catalog.
//
// The store holds two tables:
//   - products: marketplace offers, keyed by an autoincrement id and unique
//     on shopee_id
//   - categories: the id → name taxonomy, joined into listings
//
// # Read path
//
// Every read acquires one *sql.Conn from the pool and releases it with
// defer on both success and error paths. A listing's page query and count
// query run on the same connection. Product queries are compiled by
// querysql, so filters reach SQLite only as bound parameters.
//
// Connection-level failures (closed database, SQLITE_CANTOPEN, IOERR,
// BUSY, LOCKED, NOTADB, CORRUPT, PERM) are wrapped with ErrUnavailable.
//
// # Database Configuration
//
// Pragmas are set per connection through the DSN:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout: wait for locks (default 5 seconds)
//   - foreign_keys=ON
//
// The driver is registered as "sqlite3_vitrine" with a casefold(text) SQL
// function backing case-insensitive search.
package store
