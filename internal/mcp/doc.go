// Package mcp implements the MCP tool surface over the archive engine.
//
// The server holds at most one open archive per session, mirroring how an
// archive is owned by one editing client at a time. Tools cover the editing
// workflow: open an archive, list and inspect locomotives, edit fields and
// functions in memory, save back to disk, delete persisted vehicles, export
// single-locomotive sub-archives, and scan a directory of archives.
//
// Edits only touch the in-memory model; nothing reaches disk until
// save_archive (or delete_locomotive / export_locomotive, which are
// explicit disk operations).
package mcp
