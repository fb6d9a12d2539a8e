// Package archive exposes the persistence engine's entry points: open an
// archive into the in-memory model, write a mutated model back, delete a
// persisted locomotive, and export a single locomotive as a .z21loco
// sub-archive.
//
// The engine composes the container, store and legacyxml packages. Every
// call is self-contained: the embedded database is extracted to a scratch
// file, worked on, and the scratch file removed on all exit paths. Writes
// rebuild the whole container off to the side and swap it into place, so the
// original archive is never observable in a half-written state.
package archive
