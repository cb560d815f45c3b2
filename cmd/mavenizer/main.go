// Command mavenizer identifies the Maven groupId/artifactId/version of
// unlabeled jars using offline heuristics backed by online verification
// against Maven repositories.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/mavenizer/mavenizer/internal/analyzer"
	"github.com/mavenizer/mavenizer/internal/analyzer/pomresolve"
	"github.com/mavenizer/mavenizer/internal/candidate"
	"github.com/mavenizer/mavenizer/internal/cli"
	"github.com/mavenizer/mavenizer/internal/jarpaths"
	"github.com/mavenizer/mavenizer/internal/logging"
	"github.com/mavenizer/mavenizer/internal/pipeline"
	"github.com/mavenizer/mavenizer/internal/report"
	"github.com/mavenizer/mavenizer/internal/repocheck"
)

var (
	jars                []string
	reportFile          string
	offline             bool
	limit               int
	skipNotFound        bool
	forceDetailedOutput bool
	logLevel            string
	logFile             string

	rootCmd = &cobra.Command{
		Use:   "mavenizer",
		Short: "Identify Maven coordinates of unlabeled jars",
	}
	analyzeCmd = &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one or more jars and write a coordinate report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyze(cmd.Context())
		},
	}
)

func init() {
	analyzeCmd.Flags().StringSliceVar(&jars, "jars", nil, "jar files or directories to analyze (required)")
	analyzeCmd.Flags().StringVar(&reportFile, "report-file", "mavenizer-report-{datetime}.json", "report output path, may contain {datetime}")
	analyzeCmd.Flags().BoolVar(&offline, "offline", false, "skip online verification entirely")
	analyzeCmd.Flags().IntVar(&limit, "limit", 0, "process at most n jars (0 = no limit)")
	analyzeCmd.Flags().BoolVar(&skipNotFound, "skip-not-found", false, "omit unresolved jars from the report instead of prompting")
	analyzeCmd.Flags().BoolVar(&forceDetailedOutput, "force-detailed-output", false, "print every candidate and its sources for each jar")
	analyzeCmd.MarkFlagRequired("jars")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write structured logs to this file in addition to stderr")

	rootCmd.AddCommand(analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func analyze(ctx context.Context) error {
	logger := logging.New(logging.Options{Level: logLevel, File: logFile})
	defer logger.Sync()

	jarPaths, err := jarpaths.Expand(jars)
	if err != nil {
		return xerrors.Errorf("resolve --jars: %w", err)
	}

	var checker *repocheck.Checker
	var resolver analyzer.ParentResolver
	var repos []string

	if !offline {
		checker, err = repocheck.NewChecker(ctx, repocheck.Options{})
		if err != nil {
			logger.Sugar().Errorf("online repositories not reachable: %v", err)
			return err
		}
		defer checker.Shutdown()
		repos = checker.Repositories()
		resolver = pomresolve.NewResolver(nil, repos)
	}

	selector := cli.NewSelector(os.Stdin, os.Stdout)

	var pipelineChecker pipeline.Checker
	if checker != nil {
		pipelineChecker = checker
	}
	p := pipeline.New(resolver, pipelineChecker, selector, 8)

	reports, err := p.Run(ctx, jarPaths, pipeline.Options{
		Offline:          offline,
		Limit:            limit,
		SkipNotFound:     skipNotFound,
		SelectionOptions: candidate.SelectionOptions{},
		ShowProgress:     true,
		DetailedOutput:   forceDetailedOutput,
		Output:           os.Stdout,
	})
	if err != nil {
		logger.Sugar().Warnf("analysis completed with errors: %v", err)
	}

	var repoRefs []report.RepoRef
	for _, r := range repos {
		repoRefs = append(repoRefs, report.RepoRef{Name: repocheck.RepoDisplayName(r), URL: r})
	}

	doc := report.Document{
		AnalysisInfo: report.AnalysisInfo{
			OnlineCheckEnabled: !offline,
			RemoteRepositories: repoRefs,
		},
		JarResults: reports,
	}

	outPath := report.ResolvePath(reportFile, time.Now())
	if err := report.Write(outPath, doc); err != nil {
		return xerrors.Errorf("write report: %w", err)
	}
	fmt.Printf("Analysis complete. Wrote %d result(s) to %s\n", len(reports), outPath)
	return nil
}
