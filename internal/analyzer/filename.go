package analyzer

import (
	"regexp"
	"strings"

	"github.com/mavenizer/mavenizer/internal/uid"
)

// JarFilenameAnalyzer strips the ".jar" suffix and splits on the first
// version-looking boundary, e.g. "commons-lang3-3.12.0.jar" splits into
// artifactId "commons-lang3" and version "3.12.0".
type JarFilenameAnalyzer struct {
	versionBoundary *regexp.Regexp
}

func NewJarFilenameAnalyzer() *JarFilenameAnalyzer {
	return &JarFilenameAnalyzer{
		// A '-' or '.' separator immediately followed by something that
		// looks like the start of a version: a digit. Greedy on the tail so
		// "foo-1.2-3.4" keeps "1.2-3.4" as the whole version, not just "3.4".
		versionBoundary: regexp.MustCompile(`^(.+?)[-.](\d[A-Za-z0-9_.\-]*)$`),
	}
}

func (a *JarFilenameAnalyzer) Name() string { return "Jar-Filename" }

func (a *JarFilenameAnalyzer) Analyze(collect Collector, in Input) {
	stem := strings.TrimSuffix(in.JarName, ".jar")
	stem = strings.TrimSuffix(stem, ".JAR")
	if stem == "" {
		return
	}

	if m := a.versionBoundary.FindStringSubmatch(stem); m != nil {
		artifact, version := m[1], m[2]
		if uid.Valid(uid.Version, version) {
			collect(uid.Version, version, 2, "jar filename version suffix")
			collect(uid.ArtifactID, artifact, 2, "jar filename prefix before version suffix")
			return
		}
	}

	// No version-like suffix detected: treat the whole stem as a weak
	// artifactId guess.
	collect(uid.ArtifactID, stem, 1, "jar filename stem, no version boundary found")
}
