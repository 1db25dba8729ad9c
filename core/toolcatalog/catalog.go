// Package toolcatalog holds the fixed table of tool names the argument
// repair pipeline recognizes when synthesizing a missing file-path field
// (see core's repair pipeline, stage "synthesize missing required fields").
// The table is read-only and built once at init; it is not a general tool
// registry and does not describe parameters, descriptions, or execution.
package toolcatalog

// PathField identifies which argument key a tool expects its target file
// path under.
type PathField string

const (
	// FieldFilePath is the conventional key most file-writing tools use.
	FieldFilePath PathField = "file_path"
	// FieldPath is used by editors that call the argument "path" instead.
	FieldPath PathField = "path"
)

// entries maps a tool name to the argument key that should receive an
// inferred file path when the upstream arguments carry content but omit a
// path. Every entry here corresponds to one of the five tool names the
// source this pipeline was distilled from hard-codes; this table only
// changes their representation, not the rule itself.
var entries = map[string]PathField{
	"Write":                       FieldFilePath,
	"write_file":                  FieldFilePath,
	"create_file":                 FieldFilePath,
	"str_replace_based_edit_tool": FieldPath,
	"str_replace_editor":          FieldFilePath,
}

// PathFieldFor returns the argument key that toolName expects its file path
// under, and whether toolName is a recognized file-writing tool at all. A
// tool not present here never has a path synthesized for it.
func PathFieldFor(toolName string) (PathField, bool) {
	field, ok := entries[toolName]
	return field, ok
}
