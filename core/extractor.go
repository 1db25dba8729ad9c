package core

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/aiproxy/sseproxy/providers/observability"
)

const (
	glmBlockOpenTag  = "<glm_block "
	glmBlockCloseTag = "</glm_block>"
)

// glmBlockMetadata is the subset of an embedded tool-invocation payload the
// extractor needs.
type glmBlockMetadata struct {
	ID        string
	Name      string
	Arguments string
}

type glmBlockEnvelope struct {
	Data struct {
		Metadata struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		} `json:"metadata"`
	} `json:"data"`
}

// parseGlmBlockMetadata decodes the JSON payload between a glm_block tag's
// closing '>' and its closing tag, returning ErrMalformedBlock when the tool
// name is absent. A missing id is not treated as malformed: one is
// synthesized so the tool-start frame still carries a non-empty id.
func parseGlmBlockMetadata(blockJSON string) (glmBlockMetadata, error) {
	var env glmBlockEnvelope
	if err := json.Unmarshal([]byte(blockJSON), &env); err != nil {
		return glmBlockMetadata{}, err
	}
	if env.Data.Metadata.Name == "" {
		return glmBlockMetadata{}, ErrMalformedBlock
	}
	id := env.Data.Metadata.ID
	if id == "" {
		id = "call_" + uuid.NewString()
	}
	return glmBlockMetadata{
		ID:        id,
		Name:      env.Data.Metadata.Name,
		Arguments: env.Data.Metadata.Arguments,
	}, nil
}

// handleToolCallContent processes one tool_call-phase edit_content payload
// per §4.2: it either extends the active tool's argument accumulator with a
// continuation fragment, or splits out one or more newly opened glm_block
// segments, finalizing whatever tool was active before starting the next.
func (s *Session) handleToolCallContent(ctx context.Context, payload string) []string {
	if !strings.Contains(payload, glmBlockOpenTag) {
		if s.tool != nil {
			if p := strings.Index(payload, `", "result"`); p > 0 {
				s.tool.accumulatedArgs += payload[:p]
			} else {
				s.tool.accumulatedArgs += payload
			}
		}
		return nil
	}

	var frames []string

	if s.tool != nil {
		if r := strings.Index(payload, `"result"`); r > 0 {
			if end := r - 3; end > 0 && end <= len(payload) {
				s.tool.accumulatedArgs += payload[:end]
			}
		}
	}

	segments := strings.Split(payload, glmBlockOpenTag)
	for _, seg := range segments[1:] {
		if !strings.Contains(seg, glmBlockCloseTag) {
			continue
		}

		if s.tool != nil {
			frames = append(frames, s.finalizeActiveTool(ctx)...)
		}

		gt := strings.Index(seg, ">")
		end := strings.LastIndex(seg, glmBlockCloseTag)
		if gt < 0 || end < 0 || end <= gt {
			s.logError(ctx, "malformed glm_block: missing delimiters",
				observability.String("segment", observability.TruncateString(seg, 1024)))
			continue
		}

		meta, err := parseGlmBlockMetadata(seg[gt+1 : end])
		if err != nil {
			s.logError(ctx, "malformed glm_block metadata",
				observability.Error(err),
				observability.String("payload", observability.TruncateString(seg[gt+1:end], 1024)))
			continue
		}

		args := meta.Arguments
		if args == "" {
			args = "{}"
		}
		index := s.nextToolIndex
		s.nextToolIndex++
		s.tool = &activeTool{id: meta.ID, name: meta.Name, accumulatedArgs: args, index: index}

		withRole := !s.roleEmitted
		if s.emit(ctx, &frames, s.builder.toolStart(index, meta.ID, meta.Name, withRole)) && withRole {
			s.roleEmitted = true
		}
	}

	return frames
}

// finalizeActiveTool runs the argument repair pipeline over the active
// tool's accumulated arguments and emits its tool-args and tool-finish
// frames, clearing the active tool. No-op when no tool is active.
func (s *Session) finalizeActiveTool(ctx context.Context) []string {
	if s.tool == nil {
		return nil
	}
	tool := s.tool
	s.tool = nil

	repaired, warnings := repairArguments(tool.name, tool.accumulatedArgs, s.userMessage)
	// "{}" together with warnings means a pipeline stage failed and "{}" was
	// substituted; the filename-fallback warning always leaves a populated
	// object, so it is the only one logged as a warning.
	failed := repaired == "{}" && len(warnings) > 0
	for _, w := range warnings {
		if failed {
			s.logError(ctx, w, observability.String("tool", tool.name), observability.String("tool_id", tool.id))
			continue
		}
		s.logWarn(ctx, w, observability.String("tool", tool.name), observability.String("tool_id", tool.id))
	}

	var frames []string
	s.emit(ctx, &frames, s.builder.toolArgs(tool.index, repaired))
	s.emit(ctx, &frames, s.builder.toolFinish(s.usage))
	return frames
}
