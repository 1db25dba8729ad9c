package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aiproxy/sseproxy/internal/utils"
)

// systemFingerprint is attached to every emitted frame. It identifies this
// translation layer, not the upstream model.
const systemFingerprint = "fp_zai_001"

// toolCallDelta is the tool_calls entry inside a delta object. Fields are
// omitted from the JSON when zero so that id/name appear only on the
// tool-start frame, per the id-once invariant.
type toolCallDelta struct {
	Index    int                `json:"index"`
	ID       string             `json:"id,omitempty"`
	Type     string             `json:"type,omitempty"`
	Function *toolCallFunction  `json:"function,omitempty"`
}

type toolCallFunction struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments"`
}

type delta struct {
	Role      string          `json:"role,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	ToolCalls []toolCallDelta `json:"tool_calls,omitempty"`
}

// rawJSONNull is the literal JSON null, used for the tool-start frame's
// explicit "content": null (as opposed to tool-args/tool-finish frames,
// which omit the content key entirely).
var rawJSONNull = json.RawMessage("null")

// rawJSONString encodes s as a JSON string with non-ASCII codepoints
// preserved literally, for embedding as a json.RawMessage delta field.
func rawJSONString(s string) json.RawMessage {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	// Encode on a string cannot fail.
	_ = encoder.Encode(s)
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n"))
}

type choice struct {
	Index        int     `json:"index"`
	Delta        delta   `json:"delta"`
	LogProbs     any     `json:"logprobs"`
	FinishReason *string `json:"finish_reason"`
}

type chunkFrame struct {
	ID                string           `json:"id"`
	Object            string           `json:"object"`
	Created           int64            `json:"created"`
	Model             string           `json:"model"`
	SystemFingerprint string           `json:"system_fingerprint"`
	Choices           []choice         `json:"choices"`
	Usage             map[string]int64 `json:"usage,omitempty"`
}

// frameBuilder constructs frames for a single session, carrying the fields
// that must be stable across every frame it emits (id, created, model).
type frameBuilder struct {
	id      string
	created int64
	model   string
}

func newFrameBuilder(model string, createdUnix int64) frameBuilder {
	return frameBuilder{
		id:      "chatcmpl-" + strconv.FormatInt(createdUnix, 10),
		created: createdUnix,
		model:   model,
	}
}

func (b frameBuilder) base() chunkFrame {
	return chunkFrame{
		ID:                b.id,
		Object:            "chat.completion.chunk",
		Created:           b.created,
		Model:             b.model,
		SystemFingerprint: systemFingerprint,
	}
}

func (b frameBuilder) content(text string, withRole bool) chunkFrame {
	frame := b.base()
	d := delta{Content: rawJSONString(text)}
	if withRole {
		d.Role = "assistant"
	}
	frame.Choices = []choice{{Delta: d, FinishReason: nil}}
	return frame
}

func (b frameBuilder) toolStart(index int, id, name string, withRole bool) chunkFrame {
	frame := b.base()
	d := delta{
		Content: rawJSONNull,
		ToolCalls: []toolCallDelta{{
			Index:    index,
			ID:       id,
			Type:     "function",
			Function: &toolCallFunction{Name: name, Arguments: ""},
		}},
	}
	if withRole {
		d.Role = "assistant"
	}
	frame.Choices = []choice{{Delta: d, FinishReason: nil}}
	return frame
}

func (b frameBuilder) toolArgs(index int, arguments string) chunkFrame {
	frame := b.base()
	d := delta{
		ToolCalls: []toolCallDelta{{
			Index:    index,
			Function: &toolCallFunction{Arguments: arguments},
		}},
	}
	frame.Choices = []choice{{Delta: d, FinishReason: nil}}
	return frame
}

func (b frameBuilder) toolFinish(usage map[string]int64) chunkFrame {
	frame := b.base()
	frame.Choices = []choice{{Delta: delta{}, FinishReason: utils.Ptr("tool_calls")}}
	frame.Usage = usage
	return frame
}

func (b frameBuilder) stopFinish(usage map[string]int64) chunkFrame {
	frame := b.base()
	frame.Choices = []choice{{Delta: delta{}, FinishReason: utils.Ptr("stop")}}
	frame.Usage = usage
	return frame
}

// doneLine is the literal terminator line closing every emitted stream.
const doneLine = "data: [DONE]\n\n"

// marshalFrame serializes f as an SSE data line, preserving non-ASCII
// codepoints literally rather than escaping them as \uXXXX.
func marshalFrame(f chunkFrame) (string, error) {
	var buf strings.Builder
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(f); err != nil {
		return "", err
	}
	// json.Encoder.Encode appends a trailing newline; strip it so we control
	// the SSE frame's own line endings.
	payload := strings.TrimSuffix(buf.String(), "\n")
	return "data: " + payload + "\n\n", nil
}
