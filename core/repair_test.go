package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRepairArguments_TruncatedArguments(t *testing.T) {
	out, warnings := repairArguments("fetch_url", `{"url":"https://x.com\"}`, "")
	require.Empty(t, warnings)

	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &obj))
	require.Equal(t, "https://x.com", obj["url"])
}

func TestRepairArguments_EmptyGuard(t *testing.T) {
	for _, raw := range []string{"", "{", `{"`} {
		out, warnings := repairArguments("Write", raw, "create a.html")
		require.Equal(t, "{}", out)
		require.Empty(t, warnings)
	}
}

func TestRepairArguments_SynthesizesMissingFilePath(t *testing.T) {
	out, warnings := repairArguments("Write", `{"content":"<h1>Hi</h1>"}`, "create a.html with <h1>Hi</h1>")
	require.Empty(t, warnings)

	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &obj))
	require.Equal(t, "a.html", obj["file_path"])
}

func TestRepairArguments_SynthesisFallsBackToOutputHTML(t *testing.T) {
	out, warnings := repairArguments("Write", `{"content":"hi"}`, "no filename hints here")
	require.Len(t, warnings, 1)

	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &obj))
	require.Equal(t, "output.html", obj["file_path"])
}

func TestRepairArguments_StrReplaceBasedEditToolUsesPathField(t *testing.T) {
	out, _ := repairArguments("str_replace_based_edit_tool", `{"content":"x"}`, "create notes.md please")

	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &obj))
	require.Equal(t, "notes.md", obj["path"])
	require.NotContains(t, obj, "file_path")
}

func TestRepairArguments_StrReplaceEditorSkipsSynthesisWhenPathPresent(t *testing.T) {
	out, warnings := repairArguments("str_replace_editor", `{"content":"x","path":"notes.md"}`, "create a.html")
	require.Empty(t, warnings)

	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &obj))
	require.Equal(t, "notes.md", obj["path"])
	require.NotContains(t, obj, "file_path")
}

func TestRepairArguments_StrReplaceEditorSynthesizesFilePath(t *testing.T) {
	out, warnings := repairArguments("str_replace_editor", `{"content":"x"}`, "create notes.md please")
	require.Empty(t, warnings)

	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &obj))
	require.Equal(t, "notes.md", obj["file_path"])
}

func TestRepairArguments_FixedPointOnReparse(t *testing.T) {
	out, _ := repairArguments("Write", `{"content":"hello","file_path":"a.html"}`, "")

	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &obj))
	reserialized, err := serializeArguments(obj)
	require.NoError(t, err)
	require.JSONEq(t, out, reserialized)
}

// The post-process helpers below operate on already-parsed string values, so
// they are exercised directly rather than through a JSON round-trip, which
// would obscure which characters are literal versus JSON escapes.

func TestRepairDoubleUnicode(t *testing.T) {
	// A literal two-character "\u" sequence surviving inside an already
	// decoded string is the signature of a second encoding pass upstream.
	in := `\u7528\u6237`
	require.Equal(t, "用户", repairDoubleUnicode(in))
}

func TestRepairDoubleUnicode_Idempotent(t *testing.T) {
	once := repairDoubleUnicode(`\u7528\u6237`)
	twice := repairDoubleUnicode(once)
	require.Equal(t, once, twice)
}

func TestRepairWindowsPath_OverEscaped(t *testing.T) {
	in := `C:\\Users\\Me\\a.txt`
	require.Equal(t, `C:\Users\Me\a.txt`, repairWindowsPath(in))
}

func TestRepairWindowsPath_SingleSeparatorUnchanged(t *testing.T) {
	in := `C:\Users\Me\a.txt`
	require.Equal(t, in, repairWindowsPath(in))
}

func TestRepairWindowsPath_NonWindowsUnchanged(t *testing.T) {
	in := "/home/me/a.txt"
	require.Equal(t, in, repairWindowsPath(in))
}

func TestRepairCommandQuotes_DoubleTrailingQuote(t *testing.T) {
	require.Equal(t, `echo hi"`, repairCommandQuotes(`echo hi""`))
}

func TestRepairCommandQuotes_Unchanged(t *testing.T) {
	require.Equal(t, "echo hi", repairCommandQuotes("echo hi"))
}
