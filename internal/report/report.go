// Package report builds and writes the final analysis document, in either
// JSON or SQLite form depending on the requested output path.
package report

import (
	"strings"
	"time"

	"github.com/mavenizer/mavenizer/internal/model"
)

// RepoRef names one remote repository consulted during the run.
type RepoRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// AnalysisInfo summarizes the run's configuration.
type AnalysisInfo struct {
	OnlineCheckEnabled bool      `json:"onlineCheckEnabled"`
	RemoteRepositories []RepoRef `json:"remoteRepositories"`
}

// Document is the full report, marshaled as-is for the JSON sink and
// flattened into rows for the SQLite sink.
type Document struct {
	AnalysisInfo AnalysisInfo      `json:"analysisInfo"`
	JarResults   []model.JarReport `json:"jarResults"`
}

// ResolvePath expands the "{datetime}" placeholder in a --report-file
// template with the current time, formatted yyyy-MM-dd-HH-mm-ss.
func ResolvePath(template string, now time.Time) string {
	return strings.ReplaceAll(template, "{datetime}", now.Format("2006-01-02-15-04-05"))
}

// Write dispatches to the JSON or SQLite sink based on path's extension.
func Write(path string, doc Document) error {
	if strings.HasSuffix(path, ".db") || strings.HasSuffix(path, ".sqlite") {
		return writeSQLite(path, doc)
	}
	return writeJSON(path, doc)
}
