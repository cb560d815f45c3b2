// Package cli implements the interactive fallback used when the pipeline
// cannot auto-select a MavenUid for a jar.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mavenizer/mavenizer/internal/model"
	"github.com/mavenizer/mavenizer/internal/uid"
)

// proposalScoreThreshold is the minimum ScoreSum an offline candidate needs
// before it's worth listing as a numbered proposal, rather than making the
// operator type the value out.
const proposalScoreThreshold = 4

// Selector prompts an operator on the terminal to complete a jar's
// group/artifact/version, offering high-confidence candidates and exact
// online matches as numbered shortcuts. Implements pipeline.ManualSelector.
type Selector struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewSelector(in io.Reader, out io.Writer) *Selector {
	return &Selector{in: bufio.NewScanner(in), out: out}
}

// Select asks the operator, one component at a time, to supply or choose a
// value. Returns ok=false if they skip the jar ("0!" at any prompt).
func (s *Selector) Select(jar model.Jar, bucket model.AnalysisBucket, online []model.UidCheck) (uid.UID, bool) {
	fmt.Fprintf(s.out, "\nJar: %s\n", jar.Name)
	fmt.Fprintln(s.out, "  Please complete missing groupId/artifactId/version info for this jar.")
	fmt.Fprintln(s.out, "  Enter the value or enter '<number>!' to select a proposal.")

	result := uid.UID{}
	for _, component := range uid.Components {
		proposals := s.proposalsFor(component, bucket, online)

		fmt.Fprintln(s.out)
		fmt.Fprintf(s.out, "  Enter %s or select from:\n", component)
		fmt.Fprintln(s.out, "      0! <skip this jar>")
		for i, p := range proposals {
			fmt.Fprintf(s.out, "      %d! %s\n", i+1, p)
		}

		value, ok := s.prompt(component, proposals)
		if !ok {
			return uid.UID{}, false
		}
		result = setComponent(result, component, value)
	}
	return result, true
}

func (s *Selector) prompt(component uid.Component, proposals []string) (string, bool) {
	for {
		fmt.Fprint(s.out, "  > ")
		if !s.in.Scan() {
			return "", false
		}
		input := strings.TrimSpace(s.in.Text())

		var selected string
		if strings.HasSuffix(input, "!") {
			indexStr := strings.TrimSuffix(input, "!")
			index, err := strconv.Atoi(indexStr)
			if err != nil {
				selected = input
			} else if index == 0 {
				return "", false
			} else if index >= 1 && index <= len(proposals) {
				selected = proposals[index-1]
			} else {
				fmt.Fprintln(s.out, "  invalid selection, try again")
				continue
			}
		} else {
			selected = input
		}

		if !uid.Valid(component, selected) {
			fmt.Fprintf(s.out, "  %q does not match the required %s pattern, try again\n", selected, component)
			continue
		}
		return selected, true
	}
}

// proposalsFor collects candidate values worth listing: offline candidates
// whose combined score clears the threshold, plus any value proposed by an
// exact online match, deduplicated while preserving first-seen order.
func (s *Selector) proposalsFor(component uid.Component, bucket model.AnalysisBucket, online []model.UidCheck) []string {
	seen := map[string]bool{}
	var proposals []string
	add := func(v string) {
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		proposals = append(proposals, v)
	}

	for _, c := range bucket[component] {
		if c.ScoreSum >= proposalScoreThreshold {
			add(c.Value)
		}
	}
	for _, check := range online {
		if check.Match == model.ExactSHA || check.Match == model.ExactClassnames {
			add(check.FullUID.Get(component))
		}
	}
	return proposals
}

func setComponent(u uid.UID, component uid.Component, value string) uid.UID {
	switch component {
	case uid.GroupID:
		u.GroupID = value
	case uid.ArtifactID:
		u.ArtifactID = value
	case uid.Version:
		u.Version = value
	}
	return u
}
