package analyzer

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/mavenizer/mavenizer/internal/analyzer/pomresolve"
	"github.com/mavenizer/mavenizer/internal/uid"
)

// ParentResolver resolves the nearest ancestor groupId/version for a pom's
// <parent> chain. Implemented by pomresolve.Resolver; an interface here so
// tests can substitute a fake without network access.
type ParentResolver interface {
	ResolveParentChain(parent pomresolve.Coordinates) (pomresolve.Coordinates, error)
}

// PomAnalyzer extracts coordinates from an embedded pom.xml or
// pom.properties. This is the highest-confidence analyzer: a project
// declaring its own coordinates is about as strong as offline evidence
// gets.
type PomAnalyzer struct {
	resolver ParentResolver // may be nil, in which case parent inheritance is skipped
}

func NewPomAnalyzer(resolver ParentResolver) *PomAnalyzer {
	return &PomAnalyzer{resolver: resolver}
}

func (a *PomAnalyzer) Name() string { return "Pom" }

func (a *PomAnalyzer) Analyze(collect Collector, in Input) {
	for _, pom := range in.Poms {
		switch pom.Name {
		case "pom.xml":
			a.analyzePomXML(collect, pom.Data)
		case "pom.properties":
			a.analyzePomProperties(collect, pom.Data)
		}
	}
}

func (a *PomAnalyzer) analyzePomXML(collect Collector, data []byte) {
	project, err := parsePomXML(data)
	if err != nil {
		return
	}

	groupID, artifactID, version := project.GroupID, project.ArtifactID, project.Version

	if (groupID == "" || isPlaceholder(groupID) || version == "" || isPlaceholder(version)) &&
		project.Parent != nil && a.resolver != nil {
		inherited, err := a.resolver.ResolveParentChain(pomresolve.Coordinates{
			GroupID:    project.Parent.GroupID,
			ArtifactID: project.Parent.ArtifactID,
			Version:    project.Parent.Version,
		})
		if err == nil {
			if groupID == "" || isPlaceholder(groupID) {
				groupID = inherited.GroupID
			}
			if version == "" || isPlaceholder(version) {
				version = inherited.Version
			}
		}
	}

	if uid.Valid(uid.GroupID, groupID) {
		collect(uid.GroupID, groupID, 4, "pom.xml groupId")
	}
	if uid.Valid(uid.ArtifactID, artifactID) {
		collect(uid.ArtifactID, artifactID, 4, "pom.xml artifactId")
	}
	if uid.Valid(uid.Version, version) {
		collect(uid.Version, version, 4, "pom.xml version")
	}
}

func (a *PomAnalyzer) analyzePomProperties(collect Collector, data []byte) {
	props := parseJavaProperties(data)
	if v := props["groupId"]; uid.Valid(uid.GroupID, v) {
		collect(uid.GroupID, v, 4, "pom.properties groupId")
	}
	if v := props["artifactId"]; uid.Valid(uid.ArtifactID, v) {
		collect(uid.ArtifactID, v, 4, "pom.properties artifactId")
	}
	if v := props["version"]; uid.Valid(uid.Version, v) {
		collect(uid.Version, v, 4, "pom.properties version")
	}
}

// parseJavaProperties scans a minimal key=value properties file. A pom
// properties file is always exactly three lines of ASCII key=value pairs
// plus a comment line; a full java.util.Properties reimplementation
// (escapes, unicode, ':' separators, multi-line continuations) is not
// worth a dependency for that.
func parseJavaProperties(data []byte) map[string]string {
	result := map[string]string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		if idx := strings.IndexByte(line, '='); idx >= 0 {
			key := strings.TrimSpace(line[:idx])
			value := strings.TrimSpace(line[idx+1:])
			result[key] = value
		}
	}
	return result
}
