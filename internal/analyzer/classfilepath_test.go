package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mavenizer/mavenizer/internal/jarread"
	"github.com/mavenizer/mavenizer/internal/uid"
)

type emission struct {
	component uid.Component
	value     string
	score     int
	detail    string
}

func collectEmissions(a Analyzer, in Input) []emission {
	var out []emission
	a.Analyze(func(c uid.Component, v string, s int, d string) {
		out = append(out, emission{c, v, s, d})
	}, in)
	return out
}

func classAt(pathStr string) jarread.ClassEntry {
	return jarread.ClassEntry{Path: pathStr}
}

func TestClassFilepathAnalyzerFindsSharedPrefix(t *testing.T) {
	in := Input{Classes: []jarread.ClassEntry{
		classAt("com/example/widgets/Widget.class"),
		classAt("com/example/widgets/Gadget.class"),
		classAt("com/example/widgets/internal/Helper.class"),
	}}
	out := collectEmissions(NewClassFilepathAnalyzer(), in)

	var group, artifact *emission
	for i := range out {
		switch out[i].component {
		case uid.GroupID:
			group = &out[i]
		case uid.ArtifactID:
			artifact = &out[i]
		}
	}
	if assert.NotNil(t, group) {
		assert.Equal(t, "com.example.widgets", group.value)
		assert.Equal(t, 3, group.score)
	}
	if assert.NotNil(t, artifact) {
		assert.Equal(t, "internal", artifact.value)
	}
}

func TestClassFilepathAnalyzerFullCoverageScoresStrong(t *testing.T) {
	in := Input{Classes: []jarread.ClassEntry{
		classAt("com/Widget.class"),
		classAt("com/Gadget.class"),
	}}
	out := collectEmissions(NewClassFilepathAnalyzer(), in)
	found := false
	for _, e := range out {
		if e.component == uid.GroupID {
			found = true
			assert.Equal(t, "com", e.value)
			assert.Equal(t, 3, e.score)
		}
	}
	assert.True(t, found)
}

func TestClassFilepathAnalyzerDivergingTopLevelPackagesScoresWeak(t *testing.T) {
	in := Input{Classes: []jarread.ClassEntry{
		classAt("com/example/Widget.class"),
		classAt("org/other/Gadget.class"),
	}}
	out := collectEmissions(NewClassFilepathAnalyzer(), in)

	var group *emission
	for i := range out {
		if out[i].component == uid.GroupID {
			group = &out[i]
		}
	}
	if assert.NotNil(t, group) {
		assert.Equal(t, "com.example", group.value)
		assert.Equal(t, 1, group.score)
	}
}

func TestClassFilepathAnalyzerMinorityPackageScoresPlausible(t *testing.T) {
	in := Input{Classes: []jarread.ClassEntry{
		classAt("com/example/Widget.class"),
		classAt("com/example/Gadget.class"),
		classAt("org/shaded/Vendored.class"),
	}}
	out := collectEmissions(NewClassFilepathAnalyzer(), in)

	var group *emission
	for i := range out {
		if out[i].component == uid.GroupID {
			group = &out[i]
		}
	}
	if assert.NotNil(t, group) {
		assert.Equal(t, "com.example", group.value)
		assert.Equal(t, 2, group.score)
	}
}

func TestClassFilepathAnalyzerIgnoresInvalidPackageSegments(t *testing.T) {
	in := Input{Classes: []jarread.ClassEntry{
		classAt("1invalid/Widget.class"),
	}}
	out := collectEmissions(NewClassFilepathAnalyzer(), in)
	assert.Empty(t, out)
}

func TestClassFilepathAnalyzerNoClasses(t *testing.T) {
	out := collectEmissions(NewClassFilepathAnalyzer(), Input{})
	assert.Empty(t, out)
}

func TestClassFilepathAnalyzerRootClassesOnlyEmitNothing(t *testing.T) {
	in := Input{Classes: []jarread.ClassEntry{classAt("Widget.class")}}
	out := collectEmissions(NewClassFilepathAnalyzer(), in)
	assert.Empty(t, out)
}

func TestModalNextSegmentBreaksCountTiesLexicographically(t *testing.T) {
	lists := [][]string{
		{"com", "zeta"},
		{"com", "alpha"},
	}
	got := modalNextSegment(lists, []string{"com"})
	assert.Equal(t, "alpha", got)
}

func TestModalNextSegmentPicksStrictMajority(t *testing.T) {
	lists := [][]string{
		{"com", "widgets"},
		{"com", "widgets"},
		{"com", "gadgets"},
	}
	got := modalNextSegment(lists, []string{"com"})
	assert.Equal(t, "widgets", got)
}

