package web

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/cnbyhn/vantiel/internal/config"
	"github.com/cnbyhn/vantiel/internal/ops"
)

// Handlers contains HTTP route handlers for the viewer.
type Handlers struct {
	engine   *ops.Engine
	cfg      *config.Config
	renderer *Renderer
}

// HandleSave handles GET /save — current save summary.
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.ShowSave(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	extraKeys := make([]string, 0, len(result.Save.Extra))
	for k := range result.Save.Extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)

	h.renderer.renderPage(w, r, "save", SavePageData{
		PageData: PageData{
			Title:   "Save",
			Version: h.renderer.version,
			Nav:     "save",
		},
		Save:           result,
		MissingProfile: strings.Join(result.MissingProfile, ", "),
		ExtraKeys:      extraKeys,
	})
}

// HandleJournal handles GET /journal — indexed entry listing with filters.
func (h *Handlers) HandleJournal(w http.ResponseWriter, r *http.Request) {
	turnParam := r.URL.Query().Get("turn")
	turn := -1
	if turnParam != "" {
		if n, err := strconv.Atoi(turnParam); err == nil && n >= 0 {
			turn = n
		}
	}

	input := ops.ListJournalInput{
		Turn:  turn,
		Tag:   r.URL.Query().Get("tag"),
		Limit: parseIntParam(r, "limit", 50),
	}

	result, err := h.engine.ListJournal(r.Context(), input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "journal", JournalPageData{
		PageData: PageData{
			Title:   "Journal",
			Version: h.renderer.version,
			Nav:     "journal",
		},
		Entries: result.Entries,
		Count:   result.Count,
		Turn:    turnParam,
		Tag:     input.Tag,
		Limit:   input.Limit,
	})
}

// HandleEntry handles GET /journal/{id} — one entry in full.
func (h *Handlers) HandleEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	entry, err := h.engine.GetJournalEntry(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	choiceTaken := "-"
	if entry.ChoiceTaken != nil {
		if *entry.ChoiceTaken >= 0 && *entry.ChoiceTaken < len(entry.Choices) {
			choiceTaken = entry.Choices[*entry.ChoiceTaken]
		} else {
			choiceTaken = strconv.Itoa(*entry.ChoiceTaken)
		}
	}

	h.renderer.renderPage(w, r, "entry", EntryPageData{
		PageData: PageData{
			Title:   entry.SceneRef,
			Version: h.renderer.version,
			Nav:     "journal",
		},
		Entry:       entry,
		NotesHTML:   renderMarkdown(entry.Notes),
		RawJSON:     prettyJSON(entry.Raw),
		ChoiceTaken: choiceTaken,
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// prettyJSON re-indents a raw JSON document for display.
func prettyJSON(raw []byte) string {
	var buf strings.Builder
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return string(raw)
	}
	return buf.String()
}
