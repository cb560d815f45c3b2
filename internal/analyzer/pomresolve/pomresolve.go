// Package pomresolve resolves a Maven pom's inherited groupId/version by
// walking its <parent> chain against remote repositories. It resolves
// coordinate inheritance only: it does not build a dependency graph and
// never looks at <dependencies>.
package pomresolve

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	multierror "github.com/hashicorp/go-multierror"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/xerrors"
)

const defaultCentralURL = "https://repo1.maven.org/maven2/"

const maxParentDepth = 16

// Coordinates is the minimal set of fields this package resolves.
type Coordinates struct {
	GroupID    string
	ArtifactID string
	Version    string
}

// Resolver resolves a pom's inherited coordinates by fetching parent poms
// from a list of remote repositories, in order, caching results in-process
// (never across runs - that stays a Non-goal).
type Resolver struct {
	httpClient *http.Client
	repos      []string

	mu    sync.Mutex
	cache *lru.Cache[string, remoteParent]
}

type remoteParent struct {
	GroupID    string
	ArtifactID string
	Version    string
	Parent     *pomParentXML
}

type pomProjectXML struct {
	GroupID    string        `xml:"groupId"`
	ArtifactID string        `xml:"artifactId"`
	Version    string        `xml:"version"`
	Parent     *pomParentXML `xml:"parent"`
}

type pomParentXML struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// NewResolver builds a Resolver. repos is tried in order for every fetch;
// Maven Central is appended automatically if not already present.
func NewResolver(httpClient *http.Client, repos []string) *Resolver {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	hasCentral := false
	for _, r := range repos {
		if r == defaultCentralURL {
			hasCentral = true
		}
	}
	if !hasCentral {
		repos = append(repos, defaultCentralURL)
	}
	cache, _ := lru.New[string, remoteParent](4096)
	return &Resolver{httpClient: httpClient, repos: repos, cache: cache}
}

// ResolveParentChain walks the <parent> chain starting at the given
// coordinates and returns the first (nearest ancestor) groupId/version it
// finds set. It stops as soon as both are found, or after maxParentDepth
// hops, or when a parent pom cannot be fetched from any configured repo.
func (r *Resolver) ResolveParentChain(parent Coordinates) (Coordinates, error) {
	var errs error
	current := parent
	found := Coordinates{}

	for depth := 0; depth < maxParentDepth; depth++ {
		if current.GroupID == "" || current.ArtifactID == "" || current.Version == "" {
			break
		}
		fetched, err := r.fetch(current.GroupID, current.ArtifactID, current.Version)
		if err != nil {
			errs = multierror.Append(errs, xerrors.Errorf("fetch parent %s:%s:%s: %w", current.GroupID, current.ArtifactID, current.Version, err))
			break
		}

		if found.GroupID == "" && fetched.GroupID != "" {
			found.GroupID = fetched.GroupID
		}
		if found.Version == "" && fetched.Version != "" {
			found.Version = fetched.Version
		}
		if found.GroupID != "" && found.Version != "" {
			break
		}
		if fetched.Parent == nil {
			break
		}
		current = Coordinates{
			GroupID:    fetched.Parent.GroupID,
			ArtifactID: fetched.Parent.ArtifactID,
			Version:    fetched.Parent.Version,
		}
	}

	if found.GroupID == "" && found.Version == "" {
		return Coordinates{}, errs
	}
	return found, nil
}

func (r *Resolver) fetch(groupID, artifactID, version string) (remoteParent, error) {
	key := groupID + ":" + artifactID + ":" + version
	r.mu.Lock()
	if cached, ok := r.cache.Get(key); ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	var errs error
	for _, repo := range r.repos {
		pom, err := r.fetchOne(repo, groupID, artifactID, version)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		result := remoteParent{
			GroupID:    pom.GroupID,
			ArtifactID: pom.ArtifactID,
			Version:    pom.Version,
			Parent:     pom.Parent,
		}
		r.mu.Lock()
		r.cache.Add(key, result)
		r.mu.Unlock()
		return result, nil
	}
	return remoteParent{}, errs
}

func (r *Resolver) fetchOne(repo, groupID, artifactID, version string) (pomProjectXML, error) {
	repoURL, err := url.Parse(repo)
	if err != nil {
		return pomProjectXML{}, err
	}
	segments := strings.Split(groupID, ".")
	segments = append(segments, artifactID, version, fmt.Sprintf("%s-%s.pom", artifactID, version))
	repoURL.Path = path.Join(repoURL.Path, path.Join(segments...))

	resp, err := r.httpClient.Get(repoURL.String())
	if err != nil {
		return pomProjectXML{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return pomProjectXML{}, xerrors.Errorf("%s: status %d", repoURL.String(), resp.StatusCode)
	}
	return parsePom(resp.Body)
}

func parsePom(r io.Reader) (pomProjectXML, error) {
	var pom pomProjectXML
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	if err := decoder.Decode(&pom); err != nil {
		return pomProjectXML{}, xerrors.Errorf("decode pom xml: %w", err)
	}
	return pom, nil
}
