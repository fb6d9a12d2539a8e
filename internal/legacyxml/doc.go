// Package legacyxml reads the XML document older Z21 archives embed instead
// of a SQLite database.
//
// The format predates the database schema and is read leniently: absent or
// non-numeric elements fall back to zero values, and a document that fails
// to parse at all is preserved as a single opaque block rather than raised
// as an error. Writing the XML format is not supported.
package legacyxml
