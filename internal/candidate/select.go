package candidate

import (
	"sort"

	"github.com/samber/lo"

	"github.com/mavenizer/mavenizer/internal/model"
	"github.com/mavenizer/mavenizer/internal/uid"
)

// DefaultTopK is the number of candidates kept per component before taking
// the cartesian product.
const DefaultTopK = 2

// MinScoreSum is the minimum total score a candidate needs to be eligible
// for selection at all, regardless of rank.
const MinScoreSum = 2

// SelectionOptions configures the selector. Zero value uses the defaults.
type SelectionOptions struct {
	TopK int
}

func (o SelectionOptions) topK() int {
	if o.TopK <= 0 {
		return DefaultTopK
	}
	return o.TopK
}

// Select builds the set of coordinate triples to probe online from an
// aggregated bucket. The result is insertion-ordered by descending
// combined score so callers that short-circuit on the first strong match
// try the most promising triples first. If no version candidate clears the
// score threshold, version-less triples are emitted instead, to trigger
// version discovery.
func Select(bucket model.AnalysisBucket, opts SelectionOptions) []uid.UID {
	k := opts.topK()

	groups := topEligible(bucket[uid.GroupID], k)
	artifacts := topEligible(bucket[uid.ArtifactID], k)
	versions := topEligible(bucket[uid.Version], k)

	groupValues := lo.Map(groups, func(c *model.ValueCandidate, _ int) string { return c.Value })
	artifactValues := lo.Map(artifacts, func(c *model.ValueCandidate, _ int) string { return c.Value })

	versionValues := []string{""}
	if len(versions) > 0 {
		versionValues = lo.Map(versions, func(c *model.ValueCandidate, _ int) string { return c.Value })
	}
	triples := lo.Uniq(cartesianTriples(groupValues, artifactValues, versionValues))

	scoreOf := func(list []*model.ValueCandidate, value string) int {
		for _, c := range list {
			if c.Value == value {
				return c.ScoreSum
			}
		}
		return 0
	}
	combined := func(u uid.UID) int {
		return scoreOf(groups, u.GroupID) + scoreOf(artifacts, u.ArtifactID) + scoreOf(versions, u.Version)
	}
	sort.SliceStable(triples, func(i, j int) bool { return combined(triples[i]) > combined(triples[j]) })
	return triples
}

func topEligible(candidates []*model.ValueCandidate, k int) []*model.ValueCandidate {
	eligible := lo.Filter(candidates, func(c *model.ValueCandidate, _ int) bool {
		return c.ScoreSum >= MinScoreSum
	})
	if len(eligible) > k {
		eligible = eligible[:k]
	}
	return eligible
}

// cartesianTriples takes the cartesian product across three value lists in
// the order that preserves each list's incoming (score-descending) order,
// so the flattened result stays highest-combined-score first.
func cartesianTriples(groups, artifacts, versions []string) []uid.UID {
	var out []uid.UID
	for _, g := range groups {
		for _, a := range artifacts {
			for _, v := range versions {
				out = append(out, uid.UID{GroupID: g, ArtifactID: a, Version: v})
			}
		}
	}
	return out
}
