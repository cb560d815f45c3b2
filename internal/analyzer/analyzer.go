// Package analyzer implements the offline evidence engine: independent,
// pure analyzers that each inspect one facet of a jar and emit scored
// UID-component candidates. Score meaning is uniform across analyzers:
// 1 = weak hint, 2 = plausible, 3 = strong, 4 = near-certain.
package analyzer

import (
	"github.com/mavenizer/mavenizer/internal/jarread"
	"github.com/mavenizer/mavenizer/internal/model"
	"github.com/mavenizer/mavenizer/internal/uid"
)

// Collector receives one candidate emission. Analyzers never see each
// other's output through this - the aggregator merges collected tuples
// after every analyzer has run.
type Collector func(component uid.Component, value string, score int, detail string)

// Input bundles every view an analyzer might need. Analyzers read only the
// fields relevant to their kind.
type Input struct {
	JarName  string
	Manifest []byte // raw MANIFEST.MF bytes, nil if absent
	Poms     []jarread.PomFile
	Classes  []jarread.ClassEntry
	Bucket   model.AnalysisBucket // only populated for the post-analyzer
}

// Analyzer is the single interface all five (plus the optional
// post-analyzer) implement.
type Analyzer interface {
	Name() string
	Analyze(collect Collector, in Input)
}

// Default returns the standard analyzer set in the order the pipeline
// invokes them: class-derived analyzers first (they're independent of
// manifest/pom parsing outcomes), then pom, then manifest, then filename,
// with the post-analyzer running last since it depends on the aggregate.
func Default(resolver ParentResolver) []Analyzer {
	return []Analyzer{
		NewClassFilepathAnalyzer(),
		NewClassTimestampAnalyzer(),
		NewPomAnalyzer(resolver),
		NewManifestAnalyzer(),
		NewJarFilenameAnalyzer(),
	}
}

// PostAnalyzers returns analyzers that must run after all others because
// they read the aggregated bucket.
func PostAnalyzers() []Analyzer {
	return []Analyzer{NewPostAnalyzer()}
}
