// Package policy provides Open Policy Agent (OPA) checks over a lint run.
//
// Before the engine is invoked, the resolved configuration and the selected
// file list are evaluated against Rego policies. Each policy exposes a
// deny set; its elements are violations.
//
// # Input
//
//	{
//	    "config":  {"bitwise": true, "predef": "$,angular", ...},
//	    "files":   ["public/javascripts/app.js", ...],
//	    "context": {"timestamp": "...", "operation": "lint", "config_path": "..."}
//	}
//
// # Built-in Policies
//
//  1. no-evil - evil=true suppresses eval warnings
//  2. empty-file-list - the selection matched nothing
//  3. predef-identifiers - empty or malformed predef names
//
// All built-ins report warnings only.
//
// # Custom Policies
//
// Custom policies are .rego or .json files loaded from a directory:
//
//	# Teams must opt in to strict mode.
//	# severity: error
//	package custom.policies.strict
//
//	import rego.v1
//
//	deny contains violation if {
//	    not input.config.strict
//	    violation := {"message": "strict mode is required", "key": "strict"}
//	}
//
// # Severity Levels
//
//   - info, warning: reported, the run continues
//   - error, critical: the run stops before the engine starts
//
// A violation's own "severity" field overrides the policy default.
package policy
