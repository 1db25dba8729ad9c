package core

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/aiproxy/sseproxy/core/toolcatalog"
)

// strayEscapedQuotePattern matches an escaped quote that precedes a JSON
// structural character or whitespace and was not itself escaped — a common
// upstream artifact where a closing string quote was over-escaped.
var strayEscapedQuotePattern = regexp.MustCompile(`([^\\])\\"([}\],\s])`)

// doubleUnicodePattern matches a literal backslash-u escape sequence that
// survived as plain characters inside an already-decoded string, the
// signature of a second JSON-encoding pass upstream.
var doubleUnicodePattern = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)

// commandTrailingQuotesPattern matches a backslash followed by two or more
// trailing quote characters at the very end of a command string. In
// practice the simpler endswith(`""`) check below always fires first on
// any string this pattern would also match; it is retained only because
// the pipeline it was adapted from keeps it as a secondary check.
var commandTrailingQuotesPattern = regexp.MustCompile(`\\""+$`)

// pathFieldNames are the object keys eligible for Windows-path over-escape
// repair.
var pathFieldNames = map[string]bool{
	"file_path": true,
	"path":      true,
	"directory": true,
	"folder":    true,
}

// repairArguments runs the fixed repair pipeline (§4.4) over the raw
// accumulated argument string for a tool call named toolName, given the
// user message filename inference falls back to. It never returns an error:
// every failure mode degrades to "{}" so the caller can still emit a
// complete tool-call frame.
func repairArguments(toolName, raw, userMessage string) (string, []string) {
	var warnings []string

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "{" || trimmed == `{"` {
		return "{}", warnings
	}

	preprocessed := preprocessArguments(raw)

	repaired, err := jsonrepair.JSONRepair(preprocessed)
	if err != nil {
		warnings = append(warnings, "jsonrepair failed: "+err.Error())
		return "{}", warnings
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
		warnings = append(warnings, "json parse failed after repair: "+err.Error())
		return "{}", warnings
	}

	// No escape substitution (\" \n \t) runs after this parse: the decoder has
	// already produced the intended string values, and rewriting them again
	// would corrupt them.

	synthesizeMissingFields(toolName, obj, userMessage, &warnings)
	postProcessValue(obj)

	out, err := serializeArguments(obj)
	if err != nil {
		warnings = append(warnings, "serialize failed: "+err.Error())
		return "{}", warnings
	}
	return out, warnings
}

// preprocessArguments applies the fixes a generic repair library mishandles,
// ahead of handing the string to it.
func preprocessArguments(raw string) string {
	s := raw
	if !strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		s = "{" + s
	}
	s = strayEscapedQuotePattern.ReplaceAllString(s, `$1"$2`)
	return s
}

// synthesizeMissingFields fills in a file path argument inferred from prior
// conversation when a file-writing tool's arguments carry content but no
// path, per §4.4 stage 5.
func synthesizeMissingFields(toolName string, obj map[string]any, userMessage string, warnings *[]string) {
	field, ok := toolcatalog.PathFieldFor(toolName)
	if !ok {
		return
	}
	if _, hasContent := obj["content"]; !hasContent {
		return
	}

	key := string(field)
	switch toolName {
	case "str_replace_based_edit_tool", "str_replace_editor":
		if _, hasFilePath := obj["file_path"]; hasFilePath {
			return
		}
		if _, hasPath := obj["path"]; hasPath {
			return
		}
	default:
		if _, exists := obj[key]; exists {
			return
		}
	}

	name := inferFilename(userMessage)
	if name == "" {
		name = "output.html"
		*warnings = append(*warnings, "filename inference empty, defaulting to output.html")
	}
	obj[key] = name
}

// postProcessValue walks v recursively, applying double-Unicode repair to
// every string, and the path/command repairs to strings under their
// respective field names, per §4.4 stage 6.
func postProcessValue(v any) {
	switch val := v.(type) {
	case map[string]any:
		for key, child := range val {
			switch s := child.(type) {
			case string:
				s = repairDoubleUnicode(s)
				if pathFieldNames[key] {
					s = repairWindowsPath(s)
				}
				if key == "command" {
					s = repairCommandQuotes(s)
				}
				val[key] = s
			default:
				postProcessValue(child)
			}
		}
	case []any:
		for i, child := range val {
			if s, ok := child.(string); ok {
				val[i] = repairDoubleUnicode(s)
			} else {
				postProcessValue(child)
			}
		}
	}
}

func repairDoubleUnicode(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	return doubleUnicodePattern.ReplaceAllStringFunc(s, func(match string) string {
		hex := match[2:]
		code, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return match
		}
		return string(rune(code))
	})
}

func repairWindowsPath(s string) string {
	if !strings.HasPrefix(s, "C:") || !strings.Contains(s, `\`) {
		return s
	}
	parts := strings.Split(s, `\`)
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, `\`)
}

func repairCommandQuotes(s string) string {
	if strings.HasSuffix(s, `""`) {
		return s[:len(s)-1]
	}
	if commandTrailingQuotesPattern.MatchString(s) {
		return commandTrailingQuotesPattern.ReplaceAllString(s, `\"`)
	}
	return s
}

// serializeArguments encodes obj with non-ASCII codepoints preserved
// literally rather than escaped as \uXXXX.
func serializeArguments(obj map[string]any) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(obj); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
