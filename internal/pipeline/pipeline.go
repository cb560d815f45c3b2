// Package pipeline drives the three-phase per-jar analysis: offline
// evidence gathering, concurrent online verification, and serial
// consolidation into the final report.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	multierror "github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"
	"golang.org/x/xerrors"

	"github.com/mavenizer/mavenizer/internal/analyzer"
	"github.com/mavenizer/mavenizer/internal/candidate"
	"github.com/mavenizer/mavenizer/internal/jarhash"
	"github.com/mavenizer/mavenizer/internal/jarread"
	"github.com/mavenizer/mavenizer/internal/model"
	"github.com/mavenizer/mavenizer/internal/uid"
)

// Checker is the subset of repocheck.Checker the pipeline depends on,
// narrowed to an interface so tests can substitute a fake without network
// access.
type Checker interface {
	CheckWithVersion(ctx context.Context, localHash string, localClasses []string, uids []uid.UID) ([]model.UidCheck, error)
	CheckNoVersion(ctx context.Context, localHash string, localClasses []string, uidsNoVersion []uid.UID) ([]model.UidCheck, error)
}

// ManualSelector hands an unresolved jar's evidence to the external UI
// collaborator (the interactive CLI) and returns whichever MavenUid the
// operator supplied, or ok=false if they chose to skip it.
type ManualSelector interface {
	Select(jar model.Jar, bucket model.AnalysisBucket, online []model.UidCheck) (uid.UID, bool)
}

// Options configures a Run.
type Options struct {
	Offline             bool
	Limit               int
	SkipNotFound        bool
	MaxConcurrentOnline int64
	SelectionOptions    candidate.SelectionOptions
	ShowProgress        bool
	// DetailedOutput prints every candidate and its sources for each jar
	// as it's consolidated; without it nothing is printed per jar.
	DetailedOutput bool
	Output         io.Writer
}

// jarAnalysisResult is the per-jar bundle carried from Phase A through
// Phase C, matching spec's JarAnalysisResult: a jar's offline evidence
// plus futures for its two online result sets.
type jarAnalysisResult struct {
	jar         model.Jar
	bucket      model.AnalysisBucket
	classPaths  []string
	withVersion chan checkOutcome
	noVersion   chan checkOutcome
}

type checkOutcome struct {
	checks []model.UidCheck
	err    error
}

// Pipeline owns the analyzer set and, when online mode is enabled, the
// repo checker used for Phase B.
type Pipeline struct {
	analyzers     []analyzer.Analyzer
	postAnalyzers []analyzer.Analyzer
	checker       Checker
	sem           *semaphore.Weighted
	selector      ManualSelector
	selectionOpts candidate.SelectionOptions
}

func New(resolver analyzer.ParentResolver, checker Checker, selector ManualSelector, maxConcurrentOnline int64) *Pipeline {
	if maxConcurrentOnline <= 0 {
		maxConcurrentOnline = 8
	}
	return &Pipeline{
		analyzers:     analyzer.Default(resolver),
		postAnalyzers: analyzer.PostAnalyzers(),
		checker:       checker,
		sem:           semaphore.NewWeighted(maxConcurrentOnline),
		selector:      selector,
	}
}

// Run analyzes every jar path and returns JarReports in input order,
// exactly as spec's ordering guarantee requires.
func (p *Pipeline) Run(ctx context.Context, jarPaths []string, opts Options) ([]model.JarReport, error) {
	if opts.Limit > 0 && opts.Limit < len(jarPaths) {
		jarPaths = jarPaths[:opts.Limit]
	}
	p.selectionOpts = opts.SelectionOptions

	results := make([]*jarAnalysisResult, len(jarPaths))
	var wg sync.WaitGroup
	var errs error

	var bar *pb.ProgressBar
	if opts.ShowProgress {
		bar = pb.StartNew(len(jarPaths))
		defer bar.Finish()
	}

	// Phase A (serial) with Phase B launched per jar as soon as its
	// offline analysis completes.
	for i, path := range jarPaths {
		result, err := p.analyzeOffline(path)
		if err != nil {
			errs = multierror.Append(errs, xerrors.Errorf("%s: %w", path, err))
			if bar != nil {
				bar.Increment()
			}
			continue
		}
		results[i] = result

		if !opts.Offline {
			wg.Add(1)
			go p.checkOnline(ctx, result, &wg)
		} else {
			close(result.withVersion)
			close(result.noVersion)
		}
		if bar != nil {
			bar.Increment()
		}
	}

	wg.Wait()

	// Phase C: serial consolidation in input order.
	var reports []model.JarReport
	for _, result := range results {
		if result == nil {
			continue
		}
		report, ok := p.consolidate(result, opts)
		if !ok {
			continue
		}
		reports = append(reports, report)
	}

	return reports, errs
}

func (p *Pipeline) analyzeOffline(path string) (*jarAnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("read jar: %w", err)
	}

	hash, err := jarhash.Sum(data)
	if err != nil {
		return nil, xerrors.Errorf("hash jar: %w", err)
	}

	parsed, err := jarread.Read(data)
	if err != nil {
		return nil, xerrors.Errorf("parse jar: %w", err)
	}

	agg := candidate.NewAggregator()
	in := analyzer.Input{
		JarName:  filenameOf(path),
		Manifest: parsed.Manifest,
		Poms:     parsed.Poms,
		Classes:  parsed.Classes,
	}
	for _, a := range p.analyzers {
		a.Analyze(agg.CollectorFor(a.Name()), in)
	}
	bucket := agg.Bucket()

	in.Bucket = bucket
	for _, a := range p.postAnalyzers {
		a.Analyze(agg.CollectorFor(a.Name()), in)
	}
	bucket = agg.Bucket()

	classPaths := make([]string, 0, len(parsed.Classes))
	for _, c := range parsed.Classes {
		classPaths = append(classPaths, c.Path)
	}

	return &jarAnalysisResult{
		jar:         model.Jar{Name: in.JarName, SHA: hash},
		bucket:      bucket,
		classPaths:  classPaths,
		withVersion: make(chan checkOutcome, 1),
		noVersion:   make(chan checkOutcome, 1),
	}, nil
}

func (p *Pipeline) checkOnline(ctx context.Context, result *jarAnalysisResult, wg *sync.WaitGroup) {
	defer wg.Done()

	if err := p.sem.Acquire(ctx, 1); err != nil {
		result.withVersion <- checkOutcome{err: err}
		close(result.withVersion)
		result.noVersion <- checkOutcome{err: err}
		close(result.noVersion)
		return
	}
	defer p.sem.Release(1)

	selected := candidate.Select(result.bucket, p.selectionOpts)
	var withVersion, noVersion []uid.UID
	for _, u := range selected {
		if u.Version == "" {
			noVersion = append(noVersion, u)
		} else {
			withVersion = append(withVersion, u)
		}
	}

	var innerWg sync.WaitGroup
	innerWg.Add(2)
	go func() {
		defer innerWg.Done()
		checks, err := p.checker.CheckWithVersion(ctx, result.jar.SHA, result.classPaths, withVersion)
		result.withVersion <- checkOutcome{checks: checks, err: err}
		close(result.withVersion)
	}()
	go func() {
		defer innerWg.Done()
		checks, err := p.checker.CheckNoVersion(ctx, result.jar.SHA, result.classPaths, noVersion)
		result.noVersion <- checkOutcome{checks: checks, err: err}
		close(result.noVersion)
	}()
	innerWg.Wait()
}

func (p *Pipeline) consolidate(result *jarAnalysisResult, opts Options) (model.JarReport, bool) {
	var online []model.UidCheck
	for outcome := range result.withVersion {
		if outcome.err == nil {
			online = append(online, outcome.checks...)
		}
	}
	for outcome := range result.noVersion {
		if outcome.err == nil {
			online = append(online, outcome.checks...)
		}
	}

	if opts.DetailedOutput && opts.Output != nil {
		printBucket(opts.Output, result)
	}

	if winner, ok := AutoSelect(online); ok {
		match := winner.Match
		return model.JarReport{
			JarName:   result.jar.Name,
			SHA256:    result.jar.SHA,
			MatchType: &match,
			UID:       winner.FullUID,
		}, true
	}

	if opts.SkipNotFound {
		return model.JarReport{}, false
	}

	if p.selector == nil {
		return model.JarReport{}, false
	}
	chosen, ok := p.selector.Select(result.jar, result.bucket, online)
	if !ok {
		return model.JarReport{}, false
	}
	return model.JarReport{
		JarName: result.jar.Name,
		SHA256:  result.jar.SHA,
		UID:     chosen,
	}, true
}

func printBucket(w io.Writer, result *jarAnalysisResult) {
	fmt.Fprintf(w, "\n%s\n", result.jar.Name)
	for _, component := range uid.Components {
		fmt.Fprintf(w, "  %s:\n", component)
		for _, c := range result.bucket[component] {
			fmt.Fprintf(w, "    %-30s score=%d\n", c.Value, c.ScoreSum)
			for _, src := range c.Sources {
				fmt.Fprintf(w, "      - %s (%d): %s\n", src.Analyzer, src.Score, src.Detail)
			}
		}
	}
}

func filenameOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
