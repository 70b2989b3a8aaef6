// Package model implements the instrument data model.
//
// # Registry Hierarchy
//
// An instrument's remote-control surface is a tree of mnemonic namespace
// segments terminating in leaves:
//
//	Instrument (k2400)
//	├── SOUR
//	│   ├── FUNC
//	│   │   └── MODE        Attribute (enum SourceFunction)
//	│   └── VOLT
//	│       └── LEV         Attribute (float, -210..210 V)
//	├── ARM
//	│   └── DIR             Attribute (enum Bypass)
//	└── FETC                Command (reader ExtractFloats)
//
// A Node is either a Command (invokable, optionally returning a decoded
// result) or an Attribute (readable and, unless declared otherwise,
// writable). The compiled Registry maps fully-qualified mnemonics to Nodes
// and is immutable: it is built once by the schema compiler and thereafter
// safe for unsynchronized concurrent reads from any number of sessions.
//
// # Type Descriptors
//
// Attribute and command values are described by Descriptors: Scalar (int,
// float, bool, string), Enum (symbol↔ordinal mapping) and ListParameter
// (bounded sequence of a scalar or enum element type). Descriptors are
// identity-bearing objects, not value types: when a declaration references a
// named type a second time, the TypeRegistry hands back the original
// instance rather than a structurally-equal copy, so every node sharing a
// type observes the same descriptor object.
//
// Each Descriptor knows how to encode a typed value to its wire text and
// decode wire text back, following the instrument's conventions: booleans as
// ON/OFF, floats as %.6g, strings double-quoted, enums as their mnemonic
// symbol, lists joined with their declared delimiter.
package model
