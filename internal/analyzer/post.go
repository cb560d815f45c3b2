package analyzer

import (
	"github.com/mavenizer/mavenizer/internal/uid"
)

// postPromoteThreshold is the minimum number of independent sources a
// groupId and artifactId candidate must each carry before a version
// candidate derived from a weaker analyzer gets a confidence boost.
const postPromoteThreshold = 2

// PostAnalyzer runs after every other analyzer has contributed to the
// bucket and may cross-promote candidates using the aggregate picture. It
// only ever adds a source to an existing candidate, never invents a new
// value, so it stays deterministic and side-effect free on its input.
type PostAnalyzer struct{}

func NewPostAnalyzer() *PostAnalyzer { return &PostAnalyzer{} }

func (a *PostAnalyzer) Name() string { return "Post" }

func (a *PostAnalyzer) Analyze(collect Collector, in Input) {
	if in.Bucket == nil {
		return
	}

	groups := in.Bucket[uid.GroupID]
	artifacts := in.Bucket[uid.ArtifactID]
	versions := in.Bucket[uid.Version]
	if len(groups) == 0 || len(artifacts) == 0 || len(versions) == 0 {
		return
	}
	if len(groups[0].Sources) < postPromoteThreshold || len(artifacts[0].Sources) < postPromoteThreshold {
		return
	}

	// groupId and artifactId are both well corroborated, so a version
	// candidate that otherwise stands alone (a single weak analyzer such
	// as jar filename or class timestamp) is more likely correct than its
	// lone score suggests.
	top := versions[0]
	if len(top.Sources) != 1 {
		return
	}
	if isWeakVersionSource(top.Sources[0].Analyzer) {
		collect(uid.Version, top.Value, 1, "corroborated by well-supported groupId/artifactId")
	}
}

func isWeakVersionSource(analyzerName string) bool {
	switch analyzerName {
	case (&JarFilenameAnalyzer{}).Name(), (&ClassTimestampAnalyzer{}).Name():
		return true
	default:
		return false
	}
}
