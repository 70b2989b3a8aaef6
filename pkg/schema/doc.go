// Package schema compiles YAML instrument declarations into the immutable
// node registry.
//
// A declaration is a nested YAML document: plain mappings (or sequences of
// single-key mappings) are namespace segments; tagged mappings are leaves.
// The supported tags mirror the serialization the declarations originate
// from:
//
//	SOUR:
//	  VOLT:
//	    LEV: !Attribute
//	      name: voltage_level
//	      dtype: float
//	      unit: V
//	      range: [-210, 210]
//	ARM:
//	  DIR: !Attribute
//	    name: arm_bypass
//	    dtype: !ENUM &bypass
//	      name: Bypass
//	      values: {ACC: 0, SOUR: 1}
//	TRIG:
//	  DIR: !Attribute
//	    name: trigger_bypass
//	    dtype: *bypass
//	FETC: !Command
//	  name: fetch
//	  dtype_out: float
//	  reader: ExtractFloats
//
// Shared types may be back-referenced either with a YAML alias (*bypass
// above) or with a name-only !ENUM / !ListParameter mapping; both resolve
// through the TypeRegistry to the originally registered descriptor object,
// preserving identity rather than producing a copy.
//
// Compilation is total: it either yields a complete registry or fails with
// a SchemaError carrying the fully-qualified path of the offending leaf.
// A partial registry is never exposed.
package schema
