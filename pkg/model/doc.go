// Package model provides the shared data model for Z21 locomotive archives.
//
// The types here are plain values: they carry no persistence behavior beyond
// their own invariants. The persistence engine under internal/ constructs an
// Archive on every read and consumes one on every write; between those two
// calls the caller owns the whole object graph.
//
// # Core Types
//
// Locomotive represents one model locomotive with its programmable functions:
//
//	loco := model.NewLocomotive()
//	loco.Address = 3
//	loco.Name = "BR 218"
//	loco.SetFunction(&model.FunctionInfo{Number: 0, ImageName: "light", Active: true})
//
// FunctionInfo describes a single programmable function (0-127). Function
// numbers are unique within one locomotive but need not be contiguous.
//
// Archive is the root container and mirrors the on-disk unit of persistence
// (a .z21 or .z21loco file).
package model
