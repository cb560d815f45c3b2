// Package model holds the value objects shared between analyzers,
// aggregation, online checking and reporting: value sources and
// candidates, the analysis bucket, jar identity, and online match results.
package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mavenizer/mavenizer/internal/uid"
)

// ValueSource records one analyzer's contribution to a candidate value.
// Immutable once constructed.
type ValueSource struct {
	Analyzer string
	Score    int
	Detail   string
}

// ValueCandidate is a single possible value for one UID component,
// accumulated from one or more analyzer sources. ScoreSum is kept in sync
// by AddSource and must never be set directly.
type ValueCandidate struct {
	Value    string
	Sources  []ValueSource
	ScoreSum int
}

// NewValueCandidate starts a candidate with no sources.
func NewValueCandidate(value string) *ValueCandidate {
	return &ValueCandidate{Value: value}
}

// AddSource appends a source and updates ScoreSum. Sources are never
// removed.
func (c *ValueCandidate) AddSource(s ValueSource) {
	c.Sources = append(c.Sources, s)
	c.ScoreSum += s.Score
}

// SortSources orders sources by score descending, ties broken by the
// order they were added (stable sort).
func (c *ValueCandidate) SortSources() {
	sort.SliceStable(c.Sources, func(i, j int) bool {
		return c.Sources[i].Score > c.Sources[j].Score
	})
}

// AnalysisBucket maps each UID component to its candidates, each list
// sorted by ScoreSum descending (ties broken by insertion order).
type AnalysisBucket map[uid.Component][]*ValueCandidate

// NewAnalysisBucket returns an empty bucket with all three components
// initialized to nil slices, so callers can range over uid.Components
// without a presence check.
func NewAnalysisBucket() AnalysisBucket {
	return AnalysisBucket{
		uid.GroupID:    nil,
		uid.ArtifactID: nil,
		uid.Version:    nil,
	}
}

// Jar identifies one input archive by name and content hash.
type Jar struct {
	Name string
	SHA  string // base64 SHA-256 over uncompressed entry bytes, see internal/jarhash
}

// OnlineMatch classifies a remote artifact against a local jar.
type OnlineMatch int

const (
	NoMatch OnlineMatch = iota
	NotFound
	ExactSHA
	ExactClassnames
	SupersetClassnames
)

func (m OnlineMatch) String() string {
	switch m {
	case ExactSHA:
		return "EXACT_SHA"
	case ExactClassnames:
		return "EXACT_CLASSNAMES"
	case SupersetClassnames:
		return "SUPERSET_CLASSNAMES"
	case NotFound:
		return "NOT_FOUND"
	default:
		return "NO_MATCH"
	}
}

// MarshalJSON renders OnlineMatch as its string tag (the zero value is
// "NO_MATCH"). A report with no online result carries a nil *OnlineMatch,
// which encodes as JSON null.
func (m OnlineMatch) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON parses the string tag written by MarshalJSON.
func (m *OnlineMatch) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	for _, candidate := range []OnlineMatch{NoMatch, NotFound, ExactSHA, ExactClassnames, SupersetClassnames} {
		if candidate.String() == tag {
			*m = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown match type %q", tag)
}

// UidCheck is the outcome of probing one full UID against one remote repo.
type UidCheck struct {
	FullUID  uid.UID
	Match    OnlineMatch
	RepoName string
}

// JarReport is the per-jar bundle written to the final report.
type JarReport struct {
	JarName   string       `json:"jarName"`
	SHA256    string       `json:"sha256"`
	MatchType *OnlineMatch `json:"matchType"` // nil means manual selection, no online match backs it
	UID       uid.UID      `json:"uid"`
}
