// Package candidate merges raw analyzer output into scored candidate
// buckets and selects which coordinate triples to probe online.
package candidate

import (
	"sort"

	"github.com/mavenizer/mavenizer/internal/model"
	"github.com/mavenizer/mavenizer/internal/uid"
)

// Aggregator merges (component, value) tuples emitted by analyzers into a
// single scored candidate per distinct value, then sorts each component's
// candidate list by total score. Map iteration order in Go is randomized
// per run, so first-seen order for each value is tracked separately in
// order to keep the result deterministic across runs on identical input.
type Aggregator struct {
	byComponent map[uid.Component]map[string]*model.ValueCandidate
	order       map[uid.Component][]string
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		byComponent: map[uid.Component]map[string]*model.ValueCandidate{
			uid.GroupID:    {},
			uid.ArtifactID: {},
			uid.Version:    {},
		},
		order: map[uid.Component][]string{
			uid.GroupID:    nil,
			uid.ArtifactID: nil,
			uid.Version:    nil,
		},
	}
}

// CollectorFor returns an analyzer.Collector bound to the given analyzer
// name, so every tuple it emits is attributed to its source.
func (agg *Aggregator) CollectorFor(analyzerName string) func(component uid.Component, value string, score int, detail string) {
	return func(component uid.Component, value string, score int, detail string) {
		if value == "" {
			return
		}
		values := agg.byComponent[component]
		c, ok := values[value]
		if !ok {
			c = model.NewValueCandidate(value)
			values[value] = c
			agg.order[component] = append(agg.order[component], value)
		}
		c.AddSource(model.ValueSource{Analyzer: analyzerName, Score: score, Detail: detail})
	}
}

// Bucket finalizes the aggregation: sorts each candidate's sources by
// score descending, then sorts the candidate list itself by score sum
// descending, ties broken by insertion order (stable sort over a
// first-seen-ordered slice, never map iteration order).
func (agg *Aggregator) Bucket() model.AnalysisBucket {
	bucket := model.NewAnalysisBucket()
	for _, component := range uid.Components {
		values := agg.byComponent[component]
		order := agg.order[component]
		candidates := make([]*model.ValueCandidate, 0, len(order))
		for _, value := range order {
			c := values[value]
			c.SortSources()
			candidates = append(candidates, c)
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].ScoreSum > candidates[j].ScoreSum
		})
		bucket[component] = candidates
	}
	return bucket
}
