package analyzer

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/mavenizer/mavenizer/internal/jarread"
	"github.com/mavenizer/mavenizer/internal/uid"
)

// javaIdentifier matches one valid Java package segment.
var javaIdentifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// ClassFilepathAnalyzer finds the deepest package prefix shared by the
// dominant group of class files and emits it as a groupId candidate,
// scaled by the fraction of classes that fall under it. Unlike a prefix
// shared by every class, this tolerates a minority of classes living
// outside the main package tree (e.g. a shaded dependency bundled
// alongside the jar's own code) without collapsing to no evidence at all.
// The package segment right below that prefix with the most classes is
// weak evidence for artifactId.
type ClassFilepathAnalyzer struct{}

func NewClassFilepathAnalyzer() *ClassFilepathAnalyzer { return &ClassFilepathAnalyzer{} }

func (a *ClassFilepathAnalyzer) Name() string { return "Class-Filepath" }

func (a *ClassFilepathAnalyzer) Analyze(collect Collector, in Input) {
	if len(in.Classes) == 0 {
		return
	}

	var segmentLists [][]string
	for _, c := range in.Classes {
		segs := packageSegments(c)
		if segs != nil {
			segmentLists = append(segmentLists, segs)
		}
	}
	if len(segmentLists) == 0 {
		return
	}

	prefix := dominantPrefix(segmentLists)
	if len(prefix) == 0 {
		return
	}

	sharing := countSharingPrefix(segmentLists, prefix)
	ratio := float64(sharing) / float64(len(segmentLists))
	score := scoreForRatio(ratio)
	if score > 0 {
		groupID := strings.Join(prefix, ".")
		collect(uid.GroupID, groupID, score, fmt.Sprintf("shared package prefix across %d%% of classes", int(ratio*100)))

		if artifact := modalNextSegment(segmentLists, prefix); artifact != "" {
			collect(uid.ArtifactID, artifact, 1, "most common package segment below shared prefix")
		}
	}
}

// packageSegments returns the directory segments of a class file's path,
// excluding the class file itself, or nil if any segment isn't a valid
// Java identifier (meaning this class doesn't live in a "clean" package
// path worth using as evidence, e.g. it's in the jar root or under
// META-INF).
func packageSegments(c jarread.ClassEntry) []string {
	dir := path.Dir(c.Path)
	if dir == "." || dir == "/" {
		return nil
	}
	segs := strings.Split(dir, "/")
	for _, s := range segs {
		if !javaIdentifier.MatchString(s) {
			return nil
		}
	}
	return segs
}

// dominantPrefix walks the segment lists one depth at a time, at each
// level keeping only the classes under the most-common next segment
// (ties broken lexicographically) and descending into it. This finds the
// deepest common ancestor of whichever group of classes turns out to be
// the majority at the top level, rather than requiring universal
// agreement across every class in the jar. Descent stops as soon as any
// currently-eligible class has no further segment, since that class's
// own package already equals the prefix built so far and going deeper
// would only narrow to the classes nested below it.
func dominantPrefix(lists [][]string) []string {
	eligible := make([]int, len(lists))
	for i := range lists {
		eligible[i] = i
	}

	var prefix []string
	for depth := 0; ; depth++ {
		for _, idx := range eligible {
			if len(lists[idx]) == depth {
				return prefix
			}
		}

		counts := map[string]int{}
		for _, idx := range eligible {
			counts[lists[idx][depth]]++
		}

		best, bestCount := "", 0
		for seg, c := range counts {
			if c > bestCount || (c == bestCount && seg < best) {
				best, bestCount = seg, c
			}
		}

		prefix = append(prefix, best)
		next := eligible[:0:0]
		for _, idx := range eligible {
			if lists[idx][depth] == best {
				next = append(next, idx)
			}
		}
		eligible = next
	}
}

func countSharingPrefix(lists [][]string, prefix []string) int {
	count := 0
	for _, l := range lists {
		if len(l) < len(prefix) {
			continue
		}
		match := true
		for i, seg := range prefix {
			if l[i] != seg {
				match = false
				break
			}
		}
		if match {
			count++
		}
	}
	return count
}

func modalNextSegment(lists [][]string, prefix []string) string {
	counts := map[string]int{}
	for _, l := range lists {
		if len(l) <= len(prefix) {
			continue
		}
		match := true
		for i, seg := range prefix {
			if l[i] != seg {
				match = false
				break
			}
		}
		if match {
			counts[l[len(prefix)]]++
		}
	}
	best, bestCount := "", 0
	for seg, c := range counts {
		if c > bestCount || (c == bestCount && seg < best) {
			best, bestCount = seg, c
		}
	}
	return best
}

// scoreForRatio scales confidence with the fraction of classes sharing the
// discovered prefix: a prefix shared by nearly every class is strong
// evidence, one shared by a bare majority is only plausible.
func scoreForRatio(ratio float64) int {
	switch {
	case ratio >= 0.9:
		return 3
	case ratio >= 0.6:
		return 2
	case ratio > 0:
		return 1
	default:
		return 0
	}
}
