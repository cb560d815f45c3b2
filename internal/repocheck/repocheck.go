// Package repocheck resolves candidate Maven coordinates against remote
// repositories and classifies how closely a downloaded artifact matches a
// local jar.
package repocheck

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/sync/semaphore"
	"golang.org/x/xerrors"

	"github.com/mavenizer/mavenizer/internal/jarhash"
	"github.com/mavenizer/mavenizer/internal/jarread"
	"github.com/mavenizer/mavenizer/internal/model"
	"github.com/mavenizer/mavenizer/internal/uid"
)

// CanaryArtifact is resolved at startup to verify the configured
// repositories are actually reachable before any jar is analyzed.
var CanaryArtifact = uid.UID{GroupID: "junit", ArtifactID: "junit", Version: "4.12"}

// Options configures a Checker.
type Options struct {
	// ExtraRepos are tried before the settings-derived and central repos,
	// e.g. from a test harness.
	ExtraRepos []string
	// MaxConcurrent bounds in-flight resolutions within this Checker
	// (default 8). The Checker has its own semaphore, separate from the
	// pipeline's online work pool.
	MaxConcurrent int64
}

// memoResult is a cached probe outcome, keyed by coordinate string plus the
// local jar hash it was classified against. Both
// the match classification and the repo it resolved from are cached, so a
// memo hit reports the same repo name as the original download.
type memoResult struct {
	match    model.OnlineMatch
	repoName string
}

// Checker resolves and classifies candidate coordinates against a fixed
// set of remote repositories, established once at construction.
type Checker struct {
	httpClient *retryablehttp.Client
	repos      []string
	sem        *semaphore.Weighted

	// memoized per full "group:artifact:version" coordinate string and
	// local jar hash, for the lifetime of this Checker only - never
	// persisted.
	memo cmap.ConcurrentMap[string, memoResult]

	settingsCancel context.CancelFunc
	settingsDone   chan struct{}
}

// NewChecker discovers repositories from ~/.m2/settings.xml (skipped if
// ctx is already cancelled; discovery finishes before NewChecker
// returns), appends Maven Central, and
// verifies reachability by resolving CanaryArtifact. Canary failure is
// returned as an error - the caller is expected to treat it as fatal.
// Downloaded artifacts are hashed entirely in memory; nothing is written
// to disk, so there is no local repo cache to clean up between runs.
func NewChecker(ctx context.Context, opts Options) (*Checker, error) {
	client := retryablehttp.NewClient()
	client.RetryMax = 10
	client.Logger = nil

	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}

	settingsCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c := &Checker{
		httpClient:     client,
		sem:            semaphore.NewWeighted(maxConcurrent),
		memo:           cmap.New[memoResult](),
		settingsCancel: cancel,
		settingsDone:   done,
	}

	var repos []string
	go func() {
		defer close(done)
		select {
		case <-settingsCtx.Done():
			return
		default:
			repos = discoverRepositories()
		}
	}()
	<-done

	repos = append(append([]string{}, opts.ExtraRepos...), repos...)
	repos = append(repos, DefaultCentralRepo)
	c.repos = repos

	if err := c.assertReachable(ctx); err != nil {
		return nil, xerrors.Errorf("online repositories not reachable: %w", err)
	}
	return c, nil
}

// Repositories returns the configured remote repository URLs, in the
// order they are tried. Read-only after construction.
func (c *Checker) Repositories() []string {
	return append([]string{}, c.repos...)
}

// Shutdown cancels any outstanding settings discovery and waits up to 5
// seconds for it to unwind.
func (c *Checker) Shutdown() {
	c.settingsCancel()
	select {
	case <-c.settingsDone:
	case <-time.After(5 * time.Second):
	}
}

func (c *Checker) assertReachable(ctx context.Context) error {
	results, err := c.CheckWithVersion(ctx, "", nil, []uid.UID{CanaryArtifact})
	if err != nil {
		return err
	}
	for _, res := range results {
		if res.Match == model.NoMatch || res.Match == model.ExactSHA || res.Match == model.SupersetClassnames || res.Match == model.ExactClassnames {
			return nil
		}
	}
	return xerrors.Errorf("canary artifact %s could not be resolved from any configured repository", CanaryArtifact)
}

// CheckWithVersion resolves each versioned uid's jar from the configured
// repositories, hashes it and compares to localHash. It returns as soon as
// it finds an EXACT_SHA match (a single-element result), otherwise it
// classifies every uid and returns the full set. localClasses is the local
// jar's full .class entry paths, used for the classname fallback when the
// hash doesn't match.
func (c *Checker) CheckWithVersion(ctx context.Context, localHash string, localClasses []string, uids []uid.UID) ([]model.UidCheck, error) {
	var results []model.UidCheck
	for _, u := range uids {
		if u.GroupID == "" || u.ArtifactID == "" {
			return nil, xerrors.Errorf("uid %s missing groupId or artifactId", u)
		}
		if u.Version == "" {
			continue
		}
		check := c.checkOne(ctx, localHash, localClasses, u)
		if check.Match == model.ExactSHA {
			return []model.UidCheck{check}, nil
		}
		results = append(results, check)
	}
	return results, nil
}

func (c *Checker) checkOne(ctx context.Context, localHash string, localClasses []string, u uid.UID) model.UidCheck {
	memoKey := u.String() + "|" + localHash
	if cached, ok := c.memo.Get(memoKey); ok {
		return model.UidCheck{FullUID: u, Match: cached.match, RepoName: cached.repoName}
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return model.UidCheck{FullUID: u, Match: model.NotFound}
	}
	defer c.sem.Release(1)

	jarBytes, repoName, err := c.downloadJar(ctx, u)
	if err != nil {
		c.memo.Set(memoKey, memoResult{match: model.NotFound})
		return model.UidCheck{FullUID: u, Match: model.NotFound}
	}

	match := model.NoMatch
	if localHash != "" {
		remoteHash, err := jarhash.Sum(jarBytes)
		if err == nil && remoteHash == localHash {
			match = model.ExactSHA
		}
	}
	if match == model.NoMatch && len(localClasses) > 0 {
		if remoteClasses, err := listClasses(jarBytes); err == nil {
			match = classifyClassnames(localClasses, remoteClasses)
		}
	}

	c.memo.Set(memoKey, memoResult{match: match, repoName: repoName})
	return model.UidCheck{FullUID: u, Match: match, RepoName: repoName}
}

// DiscoverVersions requests maven-metadata.xml for (groupID, artifactID)
// from each configured repository in turn until one resolves, falling back
// to a directory-listing scrape if metadata is missing but the directory
// exists.
func (c *Checker) DiscoverVersions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	for _, repo := range c.repos {
		versions, err := c.fetchMetadataVersions(ctx, repo, groupID, artifactID)
		if err == nil && len(versions) > 0 {
			return versions, nil
		}
		if versions, err := browseVersions(ctx, c.httpClient.StandardClient(), repo, groupID, artifactID); err == nil && len(versions) > 0 {
			return versions, nil
		}
	}
	return nil, nil
}

// CheckNoVersion discovers versions for each version-less uid and probes
// the oldest and newest via CheckWithVersion, bounding download cost
// instead of trying every published version.
func (c *Checker) CheckNoVersion(ctx context.Context, localHash string, localClasses []string, uidsNoVersion []uid.UID) ([]model.UidCheck, error) {
	var results []model.UidCheck
	for _, u := range uidsNoVersion {
		versions, err := c.DiscoverVersions(ctx, u.GroupID, u.ArtifactID)
		if err != nil || len(versions) == 0 {
			results = append(results, model.UidCheck{FullUID: u, Match: model.NotFound})
			continue
		}
		toProbe := selectVersionCandidates(versions)
		var probeUIDs []uid.UID
		for _, v := range toProbe {
			probeUIDs = append(probeUIDs, u.WithVersion(v))
		}
		checked, err := c.CheckWithVersion(ctx, localHash, localClasses, probeUIDs)
		if err != nil {
			return nil, err
		}
		results = append(results, checked...)
		if len(checked) == 1 && checked[0].Match == model.ExactSHA {
			return results, nil
		}
	}
	return results, nil
}

// selectVersionCandidates keeps only the first (newest, per Maven metadata
// ordering) and last (oldest) version, to bound download cost.
func selectVersionCandidates(versions []string) []string {
	if len(versions) == 1 {
		return versions
	}
	newest, oldest := versions[0], versions[len(versions)-1]
	if newest == oldest {
		return []string{newest}
	}
	return []string{newest, oldest}
}

func (c *Checker) downloadJar(ctx context.Context, u uid.UID) ([]byte, string, error) {
	var lastErr error
	for _, repo := range c.repos {
		jarURL, err := artifactURL(repo, u.GroupID, u.ArtifactID, u.Version, "jar")
		if err != nil {
			lastErr = err
			continue
		}
		data, err := c.get(ctx, jarURL)
		if err != nil {
			lastErr = err
			continue
		}
		return data, RepoDisplayName(repo), nil
	}
	return nil, "", lastErr
}

func (c *Checker) fetchMetadataVersions(ctx context.Context, repo, groupID, artifactID string) ([]string, error) {
	metaURL, err := artifactDirURL(repo, groupID, artifactID, "maven-metadata.xml")
	if err != nil {
		return nil, err
	}
	data, err := c.get(ctx, metaURL)
	if err != nil {
		return nil, err
	}
	return parseMetadataVersions(data)
}

func (c *Checker) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, xerrors.Errorf("%s: status %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func artifactURL(repo, groupID, artifactID, version, ext string) (string, error) {
	return artifactDirURL(repo, groupID, artifactID, version, fmt.Sprintf("%s-%s.%s", artifactID, version, ext))
}

func artifactDirURL(repo, groupID, artifactID string, tail ...string) (string, error) {
	base, err := url.Parse(repo)
	if err != nil {
		return "", err
	}
	segments := strings.Split(groupID, ".")
	segments = append(segments, artifactID)
	segments = append(segments, tail...)
	base.Path = path.Join(base.Path, path.Join(segments...))
	return base.String(), nil
}

// RepoDisplayName returns the host portion of a repository URL, falling
// back to the raw URL if it doesn't parse.
func RepoDisplayName(repoURL string) string {
	u, err := url.Parse(repoURL)
	if err != nil {
		return repoURL
	}
	return u.Host
}

func listClasses(jarBytes []byte) ([]string, error) {
	result, err := jarread.Read(jarBytes)
	if err != nil {
		return nil, err
	}
	classes := make([]string, 0, len(result.Classes))
	for _, c := range result.Classes {
		classes = append(classes, c.Path)
	}
	return classes, nil
}

// classifyClassnames compares two full .class path sets case-sensitively,
// including inner classes (Foo$Bar.class is its own entry).
func classifyClassnames(local, remote []string) model.OnlineMatch {
	localSet := toSet(local)
	remoteSet := toSet(remote)

	if len(localSet) == len(remoteSet) && isSubset(localSet, remoteSet) {
		return model.ExactClassnames
	}
	if len(remoteSet) > len(localSet) && isSubset(localSet, remoteSet) {
		return model.SupersetClassnames
	}
	return model.NoMatch
}

func toSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}

func isSubset(sub, super map[string]struct{}) bool {
	for k := range sub {
		if _, ok := super[k]; !ok {
			return false
		}
	}
	return true
}

type mavenMetadataXML struct {
	Versioning struct {
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

func parseMetadataVersions(data []byte) ([]string, error) {
	var meta mavenMetadataXML
	if err := xml.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return meta.Versioning.Versions, nil
}
