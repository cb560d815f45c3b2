package analyzer

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/mavenizer/mavenizer/internal/uid"
)

// ManifestAnalyzer maps well-known jar manifest attributes onto UID
// components. Manifest sections are separated by blank lines; continuation
// lines start with a single space, per the jar spec.
type ManifestAnalyzer struct{}

func NewManifestAnalyzer() *ManifestAnalyzer { return &ManifestAnalyzer{} }

func (a *ManifestAnalyzer) Name() string { return "Manifest" }

func (a *ManifestAnalyzer) Analyze(collect Collector, in Input) {
	if len(in.Manifest) == 0 {
		return
	}
	attrs := parseManifest(in.Manifest)

	if v, ok := attrs["Implementation-Vendor-Id"]; ok && v != "" {
		collect(uid.GroupID, v, 3, "manifest attribute Implementation-Vendor-Id")
	}
	if v, ok := attrs["Bundle-SymbolicName"]; ok && v != "" {
		group, artifact := splitSymbolicName(v)
		if group != "" {
			collect(uid.GroupID, group, 2, "manifest attribute Bundle-SymbolicName")
		}
		if artifact != "" {
			collect(uid.ArtifactID, artifact, 2, "manifest attribute Bundle-SymbolicName")
		}
	}
	if k, v, ok := firstNonEmpty(attrs, "Implementation-Title", "Bundle-Name"); ok {
		collect(uid.ArtifactID, v, 1, "manifest attribute "+k)
	}
	if k, v, ok := firstNonEmptyValid(attrs, uid.Version, "Implementation-Version", "Bundle-Version"); ok {
		collect(uid.Version, v, 3, "manifest attribute "+k)
	}
}

func firstNonEmpty(attrs map[string]string, keys ...string) (key, value string, ok bool) {
	for _, k := range keys {
		if v := attrs[k]; v != "" {
			return k, v, true
		}
	}
	return "", "", false
}

func firstNonEmptyValid(attrs map[string]string, c uid.Component, keys ...string) (key, value string, ok bool) {
	for _, k := range keys {
		if v := attrs[k]; v != "" && uid.Valid(c, v) {
			return k, v, true
		}
	}
	return "", "", false
}

// splitSymbolicName splits an OSGi Bundle-SymbolicName like
// "com.acme.widget" into a groupId/artifactId guess by treating everything
// but the last dot-segment as the groupId. Directives after a ';'
// (e.g. ";singleton:=true") are stripped first.
func splitSymbolicName(symbolicName string) (group, artifact string) {
	if i := strings.IndexByte(symbolicName, ';'); i >= 0 {
		symbolicName = symbolicName[:i]
	}
	symbolicName = strings.TrimSpace(symbolicName)
	idx := strings.LastIndex(symbolicName, ".")
	if idx <= 0 || idx == len(symbolicName)-1 {
		return "", symbolicName
	}
	return symbolicName[:idx], symbolicName[idx+1:]
}

// parseManifest reads a MANIFEST.MF's attributes across both the main
// section and any named (per-entry) sections that follow it, each
// separated by a blank line. The main section is read first, and a named
// section's attribute only fills a key the main section didn't already
// set: the well-known attributes this analyzer looks for belong in the
// main section, but some jars misplace them, and a named-section value is
// still better evidence than none.
func parseManifest(data []byte) map[string]string {
	attrs := map[string]string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lastKey string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			lastKey = ""
			continue
		}
		if strings.HasPrefix(line, " ") {
			if lastKey != "" {
				attrs[lastKey] += strings.TrimPrefix(line, " ")
			}
			continue
		}
		sep := strings.Index(line, ":")
		if sep < 0 {
			continue
		}
		key := strings.TrimSpace(line[:sep])
		value := strings.TrimSpace(line[sep+1:])
		if _, exists := attrs[key]; exists {
			// Keep the earlier value; don't let this section's
			// continuation lines append onto it.
			lastKey = ""
			continue
		}
		attrs[key] = value
		lastKey = key
	}
	return attrs
}
