// Package store reads and writes the SQLite database embedded in Z21
// archives.
//
// The database is never touched inside the archive: the caller extracts it to
// a scratch file first, and store operates on that working copy. A single
// Schema value, introspected once when the database is opened, tells every
// query which optional columns and tables this particular archive actually
// has; reads and writes adapt to schema drift between app versions instead of
// assuming a fixed shape.
//
// # Reading
//
//	db, err := store.Open(scratchPath)
//	if err != nil { ... }
//	defer db.Close()
//	archive, err := db.ReadArchive(ctx)
//
// # Writing
//
// WriteArchive resolves each locomotive to its persisted row (identity token,
// then address, then name), updates resolved rows column-by-column, diffs the
// function rows against the in-memory set, and appends unresolved locomotives
// as new vehicles at the end of the persisted ordering. It never deletes a
// vehicle row on its own; DeleteLocomotive is the explicit removal operation.
//
// Missing tables and columns degrade to zero values and skipped writes; only
// genuine I/O and SQL failures surface as errors.
package store
