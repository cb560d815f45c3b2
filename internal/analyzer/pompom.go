package analyzer

import (
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// pomProject is the subset of a Maven pom.xml this codebase cares about:
// coordinates, parent inheritance and property substitution. It
// deliberately omits <dependencies>/<dependencyManagement> - resolving a
// dependency graph is a Non-goal.
type pomProject struct {
	GroupID    string        `xml:"groupId"`
	ArtifactID string        `xml:"artifactId"`
	Version    string        `xml:"version"`
	Parent     *pomParent    `xml:"parent"`
	Properties pomProperties `xml:"properties"`
}

type pomParent struct {
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

type pomProperty struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type pomProperties map[string]string

func (props *pomProperties) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	*props = pomProperties{}
	for {
		var p pomProperty
		if err := d.Decode(&p); err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		(*props)[p.XMLName.Local] = p.Value
	}
	return nil
}

// substituteSelfReferences resolves "${...}" placeholders in a project's
// own coordinates using its own <properties>, the common same-file case
// (e.g. "${revision}"). Properties defined only in a parent are not
// substituted, and pomresolve.Resolver returns parent coordinates as
// written, without property substitution.
func substituteSelfReferences(p *pomProject) {
	if len(p.Properties) == 0 {
		return
	}
	p.GroupID = substitute(p.GroupID, p.Properties)
	p.ArtifactID = substitute(p.ArtifactID, p.Properties)
	p.Version = substitute(p.Version, p.Properties)
}

func substitute(value string, props pomProperties) string {
	for key, v := range props {
		value = strings.ReplaceAll(value, "${"+key+"}", v)
	}
	return value
}

func isPlaceholder(value string) bool {
	return strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}")
}

func parsePomXML(data []byte) (pomProject, error) {
	var project pomProject
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	decoder.CharsetReader = charset.NewReaderLabel
	if err := decoder.Decode(&project); err != nil {
		return pomProject{}, err
	}
	substituteSelfReferences(&project)
	return project, nil
}
