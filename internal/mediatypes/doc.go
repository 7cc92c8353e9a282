// Package mediatypes provides shared type definitions and utilities for media
// item handling across the photogrid engine.
//
// This package exists as a dependency-free foundation that can be imported by
// other packages without creating import cycles. It contains primitive types,
// constants, and pure utility functions with no external dependencies beyond
// the standard library.
//
// # Media Kinds
//
// The package defines a Kind enum for categorizing media items:
//
//	mediatypes.KindImage // Supported image formats (jpg, png, gif, etc.)
//	mediatypes.KindVideo // Supported video formats (mp4, mkv, avi, etc.)
//	mediatypes.KindOther // Unrecognized or unsupported files
//
// Use KindForExt to determine the kind of a file based on its extension:
//
//	kind := mediatypes.KindForExt(".jpg") // KindImage
//
// # Items
//
// Item is the immutable per-refresh description of one collection entry.
// Identity is the logical path, never the struct value: a refresh after a
// rename yields a new Item for the same path, and all caches in the engine
// are keyed by path for exactly this reason.
package mediatypes
