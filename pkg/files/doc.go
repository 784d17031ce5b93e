// Package files expands include and exclude glob patterns into the list of
// files handed to the engine.
//
// Patterns use doublestar syntax, so "**" matches any number of directories:
//
//	public/javascripts/**/*.js
//
// Results are deduplicated by canonical path (first occurrence wins),
// excluded paths are removed, and empty or non-regular files are dropped.
// The order of the include patterns is preserved.
package files
