// Package migration applies versioned SQL files to a SQLite database.
//
// Migration files are read from an fs.FS (usually an embedded directory) and
// follow the naming convention {version}_{description}.sql, for example
// "001_create_classes.sql". Each file runs in its own transaction together
// with its row in the schema_migrations table, which records the version,
// the time it was applied and a BLAKE2b checksum of the file. A file whose
// content changes after it was applied is reported as ErrChecksumMismatch.
//
//	manager := migration.NewManager(migration.NewFileScanner(files), migration.NewSQLiteExecutor(db), "migrations", logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
