// Package uid defines the Maven coordinate triple and the validity rules
// final output must satisfy.
package uid

import "regexp"

// Component tags one field of a Maven coordinate.
type Component int

const (
	GroupID Component = iota
	ArtifactID
	Version
)

func (c Component) String() string {
	switch c {
	case GroupID:
		return "groupId"
	case ArtifactID:
		return "artifactId"
	case Version:
		return "version"
	default:
		return "unknown"
	}
}

// Components lists the three components in canonical (groupId, artifactId,
// version) order, the order the interactive prompt and the selector's
// cartesian product both iterate in.
var Components = [3]Component{GroupID, ArtifactID, Version}

var patterns = map[Component]*regexp.Regexp{
	GroupID:    regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-.]*$`),
	ArtifactID: regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-.]*$`),
	Version:    regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`),
}

// Pattern returns the validation regex for a component.
func Pattern(c Component) *regexp.Regexp {
	return patterns[c]
}

// Valid reports whether value is an acceptable string for component c.
func Valid(c Component, value string) bool {
	if value == "" {
		return false
	}
	return patterns[c].MatchString(value)
}

// UID is a Maven coordinate triple. Any field may be empty; callers that
// require it present (e.g. online resolution needs GroupID+ArtifactID)
// check explicitly.
type UID struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
}

// Get returns the value for a given component, for code that needs to
// iterate over components generically.
func (u UID) Get(c Component) string {
	switch c {
	case GroupID:
		return u.GroupID
	case ArtifactID:
		return u.ArtifactID
	case Version:
		return u.Version
	default:
		return ""
	}
}

// WithVersion returns a copy of u with Version replaced.
func (u UID) WithVersion(v string) UID {
	u.Version = v
	return u
}

// HasGroupAndArtifact reports whether both groupId and artifactId are set,
// the minimum needed to attempt online resolution.
func (u UID) HasGroupAndArtifact() bool {
	return u.GroupID != "" && u.ArtifactID != ""
}

// Complete reports whether all three components are present and each
// matches its regex - the invariant required for a UID to appear in a
// final JarReport.
func (u UID) Complete() bool {
	return Valid(GroupID, u.GroupID) && Valid(ArtifactID, u.ArtifactID) && Valid(Version, u.Version)
}

func (u UID) String() string {
	return u.GroupID + ":" + u.ArtifactID + ":" + u.Version
}
