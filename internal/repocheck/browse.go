package repocheck

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// browseVersions is the fallback used when maven-metadata.xml 404s for a
// group+artifact that still exists as a directory (a mirror sync lag, for
// example): it scrapes the artifact directory's HTML index and treats
// every subdirectory link as a version.
func browseVersions(ctx context.Context, client *http.Client, repo, groupID, artifactID string) ([]string, error) {
	dirURL, err := artifactDirURL(repo, groupID, artifactID)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(dirURL, "/") {
		dirURL += "/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dirURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d", dirURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var versions []string
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		link := linkFromSelection(sel)
		if link == "../" || !strings.HasSuffix(link, "/") {
			return
		}
		versions = append(versions, strings.TrimSuffix(link, "/"))
	})
	return versions, nil
}

func linkFromSelection(sel *goquery.Selection) string {
	link := sel.Text()
	if href, ok := sel.Attr("href"); ok && (strings.HasSuffix(link, ".../") || strings.HasSuffix(link, "...")) {
		link = href
	}
	return link
}
