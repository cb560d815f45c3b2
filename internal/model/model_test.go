package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mavenizer/mavenizer/internal/uid"
)

func TestValueCandidateAddSource(t *testing.T) {
	c := NewValueCandidate("com.example")
	c.AddSource(ValueSource{Analyzer: "Manifest", Score: 3})
	c.AddSource(ValueSource{Analyzer: "Pom", Score: 5})
	assert.Equal(t, 8, c.ScoreSum)
	assert.Len(t, c.Sources, 2)
}

func TestValueCandidateSortSourcesIsStable(t *testing.T) {
	c := NewValueCandidate("com.example")
	c.AddSource(ValueSource{Analyzer: "A", Score: 1})
	c.AddSource(ValueSource{Analyzer: "B", Score: 3})
	c.AddSource(ValueSource{Analyzer: "C", Score: 3})
	c.AddSource(ValueSource{Analyzer: "D", Score: 2})
	c.SortSources()
	got := []string{c.Sources[0].Analyzer, c.Sources[1].Analyzer, c.Sources[2].Analyzer, c.Sources[3].Analyzer}
	assert.Equal(t, []string{"B", "C", "D", "A"}, got)
}

func TestNewAnalysisBucketHasAllComponents(t *testing.T) {
	bucket := NewAnalysisBucket()
	for _, c := range uid.Components {
		_, ok := bucket[c]
		assert.True(t, ok, "missing component %v", c)
	}
}

func TestOnlineMatchString(t *testing.T) {
	assert.Equal(t, "EXACT_SHA", ExactSHA.String())
	assert.Equal(t, "EXACT_CLASSNAMES", ExactClassnames.String())
	assert.Equal(t, "SUPERSET_CLASSNAMES", SupersetClassnames.String())
	assert.Equal(t, "NOT_FOUND", NotFound.String())
	assert.Equal(t, "NO_MATCH", NoMatch.String())
}

func TestOnlineMatchMarshalJSON(t *testing.T) {
	b, err := json.Marshal(ExactSHA)
	assert.NoError(t, err)
	assert.Equal(t, `"EXACT_SHA"`, string(b))
}

func TestJarReportJSONShape(t *testing.T) {
	match := ExactSHA
	jr := JarReport{
		JarName:   "widgets-1.0.0.jar",
		SHA256:    "abc123",
		MatchType: &match,
		UID:       uid.UID{GroupID: "com.example", ArtifactID: "widgets", Version: "1.0.0"},
	}
	b, err := json.Marshal(jr)
	assert.NoError(t, err)

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "widgets-1.0.0.jar", decoded["jarName"])
	assert.Equal(t, "abc123", decoded["sha256"])
	assert.Equal(t, "EXACT_SHA", decoded["matchType"])
	uidMap := decoded["uid"].(map[string]any)
	assert.Equal(t, "com.example", uidMap["groupId"])
	assert.Equal(t, "widgets", uidMap["artifactId"])
	assert.Equal(t, "1.0.0", uidMap["version"])
}

func TestJarReportNilMatchType(t *testing.T) {
	jr := JarReport{JarName: "unresolved.jar"}
	b, err := json.Marshal(jr)
	assert.NoError(t, err)

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(b, &decoded))
	assert.Nil(t, decoded["matchType"])
}
