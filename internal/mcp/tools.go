package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var lineItemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"speaker": map[string]any{"type": "string"},
		"text":    map[string]any{"type": "string"},
	},
	"required": []string{"speaker", "text"},
}

var newGameToolDef = mcp.NewTool("vantiel_new_game",
	mcp.WithDescription("Start a fresh save. Applies any profile details found in profile_text; returns the onboarding prompt when the profile is incomplete, else the prologue scene."),
	mcp.WithString("profile_text",
		mcp.Description("The player's opening message; profile fields are extracted from it"),
	),
)

var turnToolDef = mcp.NewTool("vantiel_turn",
	mcp.WithDescription("Persist one turn: save bookkeeping, durable save write with snapshot, journal append, and on-disk confirmation. Returns the status footer; fails hard when persistence cannot be confirmed."),
	mcp.WithString("scene_ref",
		mcp.Required(),
		mcp.Description("Scene identifier for this turn"),
	),
	mcp.WithArray("dialogue",
		mcp.Required(),
		mcp.Description("Ordered speaker/text lines for the turn"),
		mcp.Items(lineItemSchema),
	),
	mcp.WithArray("scene_tags",
		mcp.Description("Tags for this scene; unseen ones accumulate into turn_tags"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithArray("choices",
		mcp.Description("Choices offered this turn"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithNumber("choice_taken",
		mcp.Description("Index of the choice the player took, if any"),
	),
	mcp.WithString("mode",
		mcp.Description("GM (default) advances the turn counter; IC does not"),
		mcp.Enum("GM", "IC"),
	),
	mcp.WithObject("extra",
		mcp.Description("Extra journal fields, merged into the entry by overwrite"),
	),
)

var applyProfileToolDef = mcp.NewTool("vantiel_apply_profile",
	mcp.WithDescription("Apply profile fields from the player's answer to the current save. Starts the prologue once all required fields are present; otherwise reports what is still missing."),
	mcp.WithString("text",
		mcp.Description("Free-form answer; fields are extracted from it"),
	),
	mcp.WithString("name", mcp.Description("Player name, overrides the extracted value")),
	mcp.WithString("class", mcp.Description("Player class, overrides the extracted value")),
	mcp.WithString("city", mcp.Description("Origin city, overrides the extracted value")),
	mcp.WithString("attacker", mcp.Description("Cause of death, overrides the extracted value")),
	mcp.WithBoolean("appa_present", mcp.Description("Whether the dog came along")),
)

var importSaveToolDef = mcp.NewTool("vantiel_import_save",
	mcp.WithDescription("Merge an uploaded save file into the current one by turn ordering and persist the result."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path of the uploaded save file"),
	),
)

var showSaveToolDef = mcp.NewTool("vantiel_show_save",
	mcp.WithDescription("Return the current save document with digest and profile status."),
)

var journalTailToolDef = mcp.NewTool("vantiel_journal_tail",
	mcp.WithDescription("Return the newest journal entries, read straight from the NDJSON log."),
	mcp.WithNumber("limit",
		mcp.Description("Number of entries, default 10"),
	),
)

var rebuildIndexToolDef = mcp.NewTool("vantiel_rebuild_index",
	mcp.WithDescription("Rebuild the derived journal index from the NDJSON journal."),
)
