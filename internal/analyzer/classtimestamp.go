package analyzer

import (
	"fmt"

	"github.com/mavenizer/mavenizer/internal/uid"
)

// classTimestampThreshold is the fraction of classes that must share the
// modal build date for that date to be trusted as a version signal.
const classTimestampThreshold = 0.6

// ClassTimestampAnalyzer buckets class entries by the UTC date of their
// most recent timestamp and, if one date covers a clear majority of at
// least two classes, proposes it as a calendar-style version. Most jars
// are built as a single batch, so the class files inside share a build
// date even when nothing else in the jar names a version. The
// more-than-one-class requirement guards against a single-class jar
// trivially satisfying the majority threshold with no real signal behind
// it.
type ClassTimestampAnalyzer struct{}

func NewClassTimestampAnalyzer() *ClassTimestampAnalyzer { return &ClassTimestampAnalyzer{} }

func (a *ClassTimestampAnalyzer) Name() string { return "Class-Timestamp" }

func (a *ClassTimestampAnalyzer) Analyze(collect Collector, in Input) {
	if len(in.Classes) == 0 {
		return
	}

	counts := map[string]int{}
	for _, c := range in.Classes {
		latest := c.ModifiedAt
		if c.CreatedAt.After(latest) {
			latest = c.CreatedAt
		}
		if latest.IsZero() {
			continue
		}
		date := latest.UTC().Format("2006.01.02")
		counts[date]++
	}
	if len(counts) == 0 {
		return
	}

	modalDate, modalCount := "", 0
	for date, count := range counts {
		if count > modalCount || (count == modalCount && date < modalDate) {
			modalDate, modalCount = date, count
		}
	}
	if modalCount <= 1 {
		return
	}

	ratio := float64(modalCount) / float64(len(in.Classes))
	if ratio <= classTimestampThreshold {
		return
	}
	if !uid.Valid(uid.Version, modalDate) {
		return
	}
	collect(uid.Version, modalDate, 1, fmt.Sprintf("class build date shared by %d%% of classes", int(ratio*100)))
}
