// Package container handles the ZIP side of Z21 archives.
//
// A Z21 archive is a ZIP file carrying exactly one data member (a .sqlite
// database or a legacy .xml document) plus any number of auxiliary members,
// typically locomotive images. Inspect classifies a file on disk; Rebuild
// produces a new archive in which only the data member's content changed and
// every other member is copied in its original compressed form.
//
// Rebuilds targeting the source path are written to a temporary file first
// and renamed into place, so a failure mid-rebuild never leaves the original
// archive half-written.
package container
