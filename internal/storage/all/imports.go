// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each backend, which register their
// factories with the storage package:
//
//   - "postgres" (filingload/internal/storage/postgres)
//   - "mssql"    (filingload/internal/storage/mssql)
//   - "mysql"    (filingload/internal/storage/mysql)
//   - "sqlite"   (filingload/internal/storage/sqlite)
//
// Typical usage (in cmd/filingload):
//
//	import _ "filingload/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: cfg.Storage.Kind, DSN: cfg.DSN()})
package all

import (
	_ "filingload/internal/storage/mssql"
	_ "filingload/internal/storage/mysql"
	_ "filingload/internal/storage/postgres"
	_ "filingload/internal/storage/sqlite"
)
