// Package config resolves and serializes JSHint option configurations.
//
// # Overview
//
// Two layers are merged: a default layer (built in, or a file given with
// --default-config) and an optional user layer. Merging is shallow: a key
// present in the user layer replaces the default's value whole, nested
// mappings included.
//
// After merging, a sequence-valued predef is collapsed into one
// comma-joined string, and the paths/exclude_paths keys are removed and
// handed to file selection.
//
// # Documents
//
// Layers are YAML or JSON documents whose top level is a mapping. Key order
// is preserved and becomes the order of the serialized options. A user
// layer ending in .star is a Starlark script; its public, non-callable
// globals become keys, sorted by name:
//
//	_strict = env("CI") != None
//	strict = _strict
//	predef = defaults["predef"] + ["angular"]
//
// # Serialization
//
// Values form a closed variant (null, bool, number, string, sequence,
// mapping). Serialize renders a mapping as the single argument token the
// engine expects:
//
//	bitwise=true&indent=2&predef="$,angular"&globals=({"define": false})
//
// # Schemas
//
// SchemaRegistry checks a resolved mapping against CUE definitions. The
// built-in "options" schema types the well-known options and accepts
// unknown keys.
package config
