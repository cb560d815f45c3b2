package repocheck

import (
	"encoding/xml"
	"os"
	"path/filepath"
)

// DefaultCentralRepo is always appended after any settings-derived
// repositories, as a fallback.
const DefaultCentralRepo = "https://repo1.maven.org/maven2/"

type mavenSettings struct {
	Profiles []mavenProfile `xml:"profiles>profile"`
}

type mavenProfile struct {
	Activation   mavenActivation `xml:"activation"`
	Repositories []mavenRepo     `xml:"repositories>repository"`
}

type mavenActivation struct {
	ActiveByDefault bool `xml:"activeByDefault"`
}

type mavenRepo struct {
	ID  string `xml:"id"`
	URL string `xml:"url"`
}

// discoverRepositories reads repository URLs from ~/.m2/settings.xml,
// following only active-by-default profiles, matching the subset of
// Maven's settings schema needed to reproduce the "effective settings"
// repository list without shelling out to a host mvn binary. A missing or
// unreadable settings file is not an error: it just means no custom
// repositories are configured.
func discoverRepositories() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	path := filepath.Join(home, ".m2", "settings.xml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var settings mavenSettings
	if err := xml.Unmarshal(data, &settings); err != nil {
		return nil
	}

	var repos []string
	for _, profile := range settings.Profiles {
		if !profile.Activation.ActiveByDefault {
			continue
		}
		for _, repo := range profile.Repositories {
			if repo.URL != "" {
				repos = append(repos, repo.URL)
			}
		}
	}
	return repos
}
