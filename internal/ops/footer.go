package ops

import (
	"path/filepath"
	"strings"
)

// NotWrittenMarker appears in the footer when either artifact could not be
// confirmed on disk. Callers treat its presence as "do not show this turn".
const NotWrittenMarker = "**Save/Journal not written**"

// ComposeFooter renders the download footer for the current artifacts. When
// FILES_BASE_URL is unset the paths are shown as local hints instead of
// links. If either artifact is missing or empty the footer carries the
// not-written marker.
func (e *Engine) ComposeFooter() string {
	saveOK := e.saves.VerifyWritten() == nil
	journalOK := e.journal.VerifyWritten() == nil

	var lines []string
	if url := e.artifactURL(e.cfg.SavePath); url != "" {
		lines = append(lines, "[Download Save]("+url+")")
	} else {
		lines = append(lines, "Download: sandbox:"+e.cfg.SavePath+"  <!-- not public; set FILES_BASE_URL -->")
	}
	if url := e.artifactURL(e.cfg.JournalPath); url != "" {
		lines = append(lines, "[Download Journal]("+url+")")
	} else {
		lines = append(lines, "Download Journal: sandbox:"+e.cfg.JournalPath+"  <!-- not public; set FILES_BASE_URL -->")
	}
	if !(saveOK && journalOK) {
		lines = append(lines, NotWrittenMarker)
	}
	return "\n\n" + strings.Join(lines, "\n")
}

// artifactURL joins the configured base URL with the artifact's path
// relative to the base dir, or its file name when it lives elsewhere.
func (e *Engine) artifactURL(path string) string {
	base := strings.TrimRight(e.cfg.FilesBaseURL, "/")
	if base == "" {
		return ""
	}
	rel, err := filepath.Rel(e.cfg.BaseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	return base + "/" + filepath.ToSlash(rel)
}
