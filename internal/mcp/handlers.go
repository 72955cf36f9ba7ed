package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cnbyhn/vantiel/internal/errors"
	"github.com/cnbyhn/vantiel/internal/ops"
	"github.com/cnbyhn/vantiel/internal/save"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	engine *ops.Engine
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(engine *ops.Engine) *Handlers {
	return &Handlers{engine: engine}
}

// Request types for each tool

// NewGameRequest represents the arguments for new_game.
type NewGameRequest struct {
	ProfileText string `json:"profile_text,omitempty"`
}

// TurnRequest represents the arguments for turn.
type TurnRequest struct {
	SceneRef    string                     `json:"scene_ref"`
	Dialogue    []save.Line                `json:"dialogue"`
	SceneTags   []string                   `json:"scene_tags,omitempty"`
	Choices     []string                   `json:"choices,omitempty"`
	ChoiceTaken *int                       `json:"choice_taken,omitempty"`
	Mode        string                     `json:"mode,omitempty"`
	Extra       map[string]json.RawMessage `json:"extra,omitempty"`
}

// ApplyProfileRequest represents the arguments for apply_profile.
type ApplyProfileRequest struct {
	Text        string `json:"text,omitempty"`
	Name        string `json:"name,omitempty"`
	Class       string `json:"class,omitempty"`
	City        string `json:"city,omitempty"`
	Attacker    string `json:"attacker,omitempty"`
	AppaPresent *bool  `json:"appa_present,omitempty"`
}

// ImportSaveRequest represents the arguments for import_save.
type ImportSaveRequest struct {
	Path string `json:"path"`
}

// JournalTailRequest represents the arguments for journal_tail.
type JournalTailRequest struct {
	Limit int `json:"limit,omitempty"`
}

// HandleNewGame handles the new_game tool call.
func (h *Handlers) HandleNewGame(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NewGameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.engine.NewGame(ctx, ops.NewGameInput{ProfileText: input.ProfileText})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTurn handles the turn tool call.
func (h *Handlers) HandleTurn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TurnRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.SceneRef == "" {
		return errorResult(errors.NewInvalidRequest("scene_ref is required")), nil
	}
	if len(input.Dialogue) == 0 {
		return errorResult(errors.NewInvalidRequest("dialogue is required")), nil
	}

	current, err := h.engine.CurrentSave(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := h.engine.PersistTurn(ctx, current, ops.PersistTurnInput{
		SceneRef:    input.SceneRef,
		Dialogue:    input.Dialogue,
		SceneTags:   input.SceneTags,
		Choices:     input.Choices,
		ChoiceTaken: input.ChoiceTaken,
		Mode:        save.Mode(input.Mode),
		Extra:       input.Extra,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleApplyProfile handles the apply_profile tool call.
func (h *Handlers) HandleApplyProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ApplyProfileRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.engine.ApplyProfile(ctx, ops.ApplyProfileInput{
		Text:        input.Text,
		Name:        input.Name,
		Class:       input.Class,
		City:        input.City,
		Attacker:    input.Attacker,
		AppaPresent: input.AppaPresent,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImportSave handles the import_save tool call.
func (h *Handlers) HandleImportSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.engine.ImportSave(ctx, ops.ImportSaveInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleShowSave handles the show_save tool call.
func (h *Handlers) HandleShowSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.engine.ShowSave(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleJournalTail handles the journal_tail tool call.
func (h *Handlers) HandleJournalTail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[JournalTailRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.engine.JournalTail(ctx, ops.JournalTailInput{Limit: input.Limit})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRebuildIndex handles the rebuild_index tool call.
func (h *Handlers) HandleRebuildIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.engine.RebuildIndex(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult builds an error payload from a classified engine error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if gameErr, ok := err.(*errors.GameError); ok {
		errorObj := map[string]any{
			"code":    gameErr.Code,
			"message": gameErr.Message,
			"status":  gameErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths
		if gameErr.Code != errors.ErrInternal && gameErr.Details != nil {
			errorObj["details"] = gameErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult serializes data as a JSON tool result.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
