// Package mcp exposes the engine as MCP tools over stdio for the GM host.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cnbyhn/vantiel/internal/config"
	"github.com/cnbyhn/vantiel/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"vantiel_new_game": {
		def:     newGameToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleNewGame },
	},
	"vantiel_turn": {
		def:     turnToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTurn },
	},
	"vantiel_apply_profile": {
		def:     applyProfileToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleApplyProfile },
	},
	"vantiel_import_save": {
		def:     importSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImportSave },
	},
	"vantiel_show_save": {
		def:     showSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleShowSave },
	},
	"vantiel_journal_tail": {
		def:     journalTailToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleJournalTail },
	},
	"vantiel_rebuild_index": {
		def:     rebuildIndexToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRebuildIndex },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with Vantiel tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(engine *ops.Engine, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"vantiel",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(engine)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(engine *ops.Engine, cfg *config.Config, version string) error {
	s := NewServer(engine, cfg, version)
	return server.ServeStdio(s)
}
