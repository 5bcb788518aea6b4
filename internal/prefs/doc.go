// Package prefs defines the parameter record shared between the host driver
// and the N-body integration kernel.
//
// The record is a fixed 16-byte block:
//
//	offset  0  float32  timestep
//	offset  4  float32  damping
//	offset  8  float32  softeningSqr
//	offset 12  uint32   particles
//
// [Prefs] has exactly this layout in memory and [Prefs.MarshalBinary] produces
// exactly these bytes in [ByteOrder], so the same value can be copied into a
// device buffer, written to disk, or handed to a cgo kernel without any
// negotiation between producer and consumer.
//
// The record never validates itself. Callers that construct it from user input
// run [Prefs.Validate], which reports every offending field as an
// [ErrInvalidParameter].
package prefs
