package report

import (
	"database/sql"

	_ "modernc.org/sqlite"
	"golang.org/x/xerrors"

	"github.com/mavenizer/mavenizer/internal/model"
)

// writeSQLite writes a run's results into a small SQLite database instead
// of JSON: a "run_info" table (one row per write) and a "repositories"
// table for the analysis info, and a "jar_results" table for the per-jar
// rows. Repositories are unique by URL and jar results by sha256, with
// "ON CONFLICT DO NOTHING", so re-running against the same file skips
// already-recorded repositories and jar hashes instead of erroring.
func writeSQLite(path string, doc Document) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return xerrors.Errorf("open sqlite db: %w", err)
	}
	defer db.Close()

	if err := initSchema(db); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO run_info(online_check_enabled) VALUES (?)`, doc.AnalysisInfo.OnlineCheckEnabled); err != nil {
		return xerrors.Errorf("insert run_info: %w", err)
	}
	for _, repo := range doc.AnalysisInfo.RemoteRepositories {
		if _, err := tx.Exec(`INSERT INTO repositories(name, url) VALUES (?, ?) ON CONFLICT(url) DO NOTHING`, repo.Name, repo.URL); err != nil {
			return xerrors.Errorf("insert repository: %w", err)
		}
	}
	for _, jr := range doc.JarResults {
		if err := insertJarResult(tx, jr); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func initSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS run_info(id INTEGER PRIMARY KEY, online_check_enabled BOOLEAN)`,
		`CREATE TABLE IF NOT EXISTS repositories(id INTEGER PRIMARY KEY, name TEXT, url TEXT)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS repositories_url_idx ON repositories(url)`,
		`CREATE TABLE IF NOT EXISTS jar_results(
			id INTEGER PRIMARY KEY,
			jar_name TEXT,
			sha256 TEXT,
			match_type TEXT,
			group_id TEXT,
			artifact_id TEXT,
			version TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS jar_results_sha256_idx ON jar_results(sha256)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return xerrors.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func insertJarResult(tx *sql.Tx, jr model.JarReport) error {
	var matchType any
	if jr.MatchType != nil {
		matchType = jr.MatchType.String()
	}
	_, err := tx.Exec(`
		INSERT INTO jar_results(jar_name, sha256, match_type, group_id, artifact_id, version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(sha256) DO NOTHING`,
		jr.JarName, jr.SHA256, matchType, jr.UID.GroupID, jr.UID.ArtifactID, jr.UID.Version)
	if err != nil {
		return xerrors.Errorf("insert jar_result: %w", err)
	}
	return nil
}
