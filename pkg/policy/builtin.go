package policy

// GetBuiltinPolicies returns all built-in policies.
func GetBuiltinPolicies() []Policy {
	return []Policy{
		noEvilPolicy(),
		emptyFileListPolicy(),
		predefIdentifiersPolicy(),
	}
}

// noEvilPolicy flags configurations that allow eval.
func noEvilPolicy() Policy {
	return Policy{
		Name:        "no-evil",
		Description: "Warns when the evil option allows eval and friends",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"options", "security"},
		Rego: `package jshint.policies.evil

import rego.v1

deny contains violation if {
	input.config.evil == true
	violation := {
		"message": "evil=true suppresses warnings about eval",
		"severity": "warning",
		"key": "evil",
	}
}
`,
	}
}

// emptyFileListPolicy flags runs that select no files.
func emptyFileListPolicy() Policy {
	return Policy{
		Name:        "empty-file-list",
		Description: "Warns when paths and exclude_paths select no files",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"files"},
		Rego: `package jshint.policies.files

import rego.v1

deny contains violation if {
	count(input.files) == 0
	violation := {
		"message": "no files selected, check paths and exclude_paths",
		"severity": "warning",
		"key": "paths",
	}
}
`,
	}
}

// predefIdentifiersPolicy flags predef entries the engine will not read as
// identifiers. Names are comma-joined without escaping, so a name with a
// comma or surrounding space splits into something else.
func predefIdentifiersPolicy() Policy {
	return Policy{
		Name:        "predef-identifiers",
		Description: "Warns about empty or malformed predef identifiers",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"options", "predef"},
		Rego: `package jshint.policies.predef

import rego.v1

names := split(input.config.predef, ",") if {
	is_string(input.config.predef)
}

deny contains violation if {
	some name in names
	trim_space(name) == ""
	violation := {
		"message": "predef contains an empty identifier",
		"severity": "warning",
		"key": "predef",
	}
}

deny contains violation if {
	some name in names
	trim_space(name) != ""
	not regex.match("^[A-Za-z_$][A-Za-z0-9_$]*$", name)
	violation := {
		"message": sprintf("predef entry %q is not an identifier", [name]),
		"severity": "warning",
		"key": "predef",
	}
}
`,
	}
}
