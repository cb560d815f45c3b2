package repocheck

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-retryablehttp"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/sync/semaphore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavenizer/mavenizer/internal/jarhash"
	"github.com/mavenizer/mavenizer/internal/model"
	"github.com/mavenizer/mavenizer/internal/uid"
)

func buildJar(t *testing.T, classes ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, c := range classes {
		w, err := zw.Create(c)
		require.NoError(t, err)
		_, err = w.Write([]byte("\xca\xfe\xba\xbe"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newTestChecker(repoURL string) *Checker {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil
	return &Checker{
		httpClient: client,
		repos:      []string{repoURL},
		sem:        semaphore.NewWeighted(4),
		memo:       cmap.New[memoResult](),
	}
}

func TestCheckWithVersionExactSHA(t *testing.T) {
	jarBytes := buildJar(t, "com/example/Widget.class")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(jarBytes)
	}))
	defer srv.Close()

	c := newTestChecker(srv.URL)
	hash, err := jarhash.Sum(jarBytes)
	require.NoError(t, err)

	results, err := c.CheckWithVersion(context.Background(), hash, []string{"com/example/Widget.class"},
		[]uid.UID{{GroupID: "com.example", ArtifactID: "widgets", Version: "1.0.0"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.ExactSHA, results[0].Match)
}

func TestCheckWithVersionClassnameFallback(t *testing.T) {
	remoteJar := buildJar(t, "com/example/Widget.class", "com/example/Extra.class")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(remoteJar)
	}))
	defer srv.Close()

	c := newTestChecker(srv.URL)
	results, err := c.CheckWithVersion(context.Background(), "different-hash", []string{"com/example/Widget.class"},
		[]uid.UID{{GroupID: "com.example", ArtifactID: "widgets", Version: "1.0.0"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.SupersetClassnames, results[0].Match)
}

func TestCheckWithVersionNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestChecker(srv.URL)
	results, err := c.CheckWithVersion(context.Background(), "hash", nil,
		[]uid.UID{{GroupID: "com.example", ArtifactID: "widgets", Version: "1.0.0"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.NotFound, results[0].Match)
}

func TestCheckWithVersionRejectsMissingGroupOrArtifact(t *testing.T) {
	c := newTestChecker("http://example.invalid")
	_, err := c.CheckWithVersion(context.Background(), "", nil, []uid.UID{{Version: "1.0.0"}})
	assert.Error(t, err)
}

func TestCheckWithVersionMemoizesRepeatCoordinates(t *testing.T) {
	jarBytes := buildJar(t, "com/example/Widget.class")
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(jarBytes)
	}))
	defer srv.Close()

	c := newTestChecker(srv.URL)
	u := uid.UID{GroupID: "com.example", ArtifactID: "widgets", Version: "1.0.0"}
	first, err := c.CheckWithVersion(context.Background(), "no-match", nil, []uid.UID{u})
	require.NoError(t, err)
	second, err := c.CheckWithVersion(context.Background(), "no-match", nil, []uid.UID{u})
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEmpty(t, second[0].RepoName)
	assert.Equal(t, first[0].RepoName, second[0].RepoName)
}

func TestDiscoverVersionsFromMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<metadata><versioning><versions><version>1.0.0</version><version>2.0.0</version></versions></versioning></metadata>`))
	}))
	defer srv.Close()

	c := newTestChecker(srv.URL)
	versions, err := c.DiscoverVersions(context.Background(), "com.example", "widgets")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0", "2.0.0"}, versions)
}

func TestDiscoverVersionsFallsBackToDirectoryListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/com/example/widgets/maven-metadata.xml" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`<html><body>
			<a href="../">../</a>
			<a href="1.0.0/">1.0.0/</a>
			<a href="2.0.0/">2.0.0/</a>
		</body></html>`))
	}))
	defer srv.Close()

	c := newTestChecker(srv.URL)
	versions, err := c.DiscoverVersions(context.Background(), "com.example", "widgets")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1.0.0", "2.0.0"}, versions)
}

func TestCheckNoVersionStopsAtNewestExactSHA(t *testing.T) {
	jarBytes := buildJar(t, "com/example/Widget.class")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/com/example/widgets/maven-metadata.xml":
			w.Write([]byte(`<metadata><versioning><versions><version>2.0.0</version><version>1.0.0</version></versions></versioning></metadata>`))
		default:
			w.Write(jarBytes)
		}
	}))
	defer srv.Close()

	c := newTestChecker(srv.URL)
	hash, err := jarhash.Sum(jarBytes)
	require.NoError(t, err)

	results, err := c.CheckNoVersion(context.Background(), hash, []string{"com/example/Widget.class"},
		[]uid.UID{{GroupID: "com.example", ArtifactID: "widgets"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.ExactSHA, results[0].Match)
}

func TestCheckNoVersionNotFoundWhenNoVersionsDiscovered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestChecker(srv.URL)
	results, err := c.CheckNoVersion(context.Background(), "hash", nil,
		[]uid.UID{{GroupID: "com.example", ArtifactID: "widgets"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.NotFound, results[0].Match)
}

func TestClassifyClassnames(t *testing.T) {
	local := []string{"com/example/A.class", "com/example/B.class"}
	assert.Equal(t, model.ExactClassnames, classifyClassnames(local, local))
	assert.Equal(t, model.SupersetClassnames, classifyClassnames(local, append(append([]string{}, local...), "com/example/C.class")))
	assert.Equal(t, model.NoMatch, classifyClassnames(local, []string{"com/example/Other.class"}))
}

func TestSelectVersionCandidates(t *testing.T) {
	assert.Equal(t, []string{"only"}, selectVersionCandidates([]string{"only"}))
	assert.Equal(t, []string{"2.0.0", "1.0.0"}, selectVersionCandidates([]string{"2.0.0", "1.5.0", "1.0.0"}))
	assert.Equal(t, []string{"same"}, selectVersionCandidates([]string{"same", "same"}))
}
