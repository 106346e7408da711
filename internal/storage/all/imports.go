// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories and DDL bootstrappers with the
// storage package.
//
// In other words, importing this package makes the following storage kinds
// available at runtime:
//
//   - "postgres" (actdata/internal/storage/postgres)
//   - "mysql"    (actdata/internal/storage/mysql)
//   - "mssql"    (actdata/internal/storage/mssql)
//   - "sqlite"   (actdata/internal/storage/sqlite)
//
// Typical usage (in cmd/lossload/main.go or a similar wiring layer):
//
//	import _ "actdata/internal/storage/all" // enable all built-in backends
//
// This pattern keeps backend-specific wiring in a single, small package and
// allows the rest of the application to depend only on the storage
// abstraction rather than individual backends.
//
// Note: if you want a binary that supports only a subset of backends, you can
// define alternative wiring packages that import only the required backends
// instead of this package.
package all

import (
	_ "actdata/internal/storage/mssql"
	_ "actdata/internal/storage/mysql"
	_ "actdata/internal/storage/postgres"
	_ "actdata/internal/storage/sqlite"
)
