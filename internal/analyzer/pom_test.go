package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mavenizer/mavenizer/internal/analyzer/pomresolve"
	"github.com/mavenizer/mavenizer/internal/jarread"
	"github.com/mavenizer/mavenizer/internal/uid"
)

type fakeResolver struct {
	result pomresolve.Coordinates
	err    error
}

func (f fakeResolver) ResolveParentChain(pomresolve.Coordinates) (pomresolve.Coordinates, error) {
	return f.result, f.err
}

func TestPomAnalyzerPomXML(t *testing.T) {
	xml := []byte(`<project>
		<groupId>com.example</groupId>
		<artifactId>widgets</artifactId>
		<version>1.0.0</version>
	</project>`)
	in := Input{Poms: []jarread.PomFile{{Name: "pom.xml", Data: xml}}}
	out := collectEmissions(NewPomAnalyzer(nil), in)

	values := map[uid.Component]string{}
	for _, e := range out {
		values[e.component] = e.value
		assert.Equal(t, 4, e.score)
	}
	assert.Equal(t, "com.example", values[uid.GroupID])
	assert.Equal(t, "widgets", values[uid.ArtifactID])
	assert.Equal(t, "1.0.0", values[uid.Version])
}

func TestPomAnalyzerPomProperties(t *testing.T) {
	data := []byte("#Generated\ngroupId=com.example\nartifactId=widgets\nversion=1.0.0\n")
	in := Input{Poms: []jarread.PomFile{{Name: "pom.properties", Data: data}}}
	out := collectEmissions(NewPomAnalyzer(nil), in)

	values := map[uid.Component]string{}
	for _, e := range out {
		values[e.component] = e.value
	}
	assert.Equal(t, "com.example", values[uid.GroupID])
	assert.Equal(t, "widgets", values[uid.ArtifactID])
	assert.Equal(t, "1.0.0", values[uid.Version])
}

func TestPomAnalyzerSubstitutesOwnProperties(t *testing.T) {
	xml := []byte(`<project>
		<groupId>com.example</groupId>
		<artifactId>widgets</artifactId>
		<version>${revision}</version>
		<properties><revision>2.0.0</revision></properties>
	</project>`)
	in := Input{Poms: []jarread.PomFile{{Name: "pom.xml", Data: xml}}}
	out := collectEmissions(NewPomAnalyzer(nil), in)

	found := false
	for _, e := range out {
		if e.component == uid.Version {
			found = true
			assert.Equal(t, "2.0.0", e.value)
		}
	}
	assert.True(t, found)
}

func TestPomAnalyzerResolvesParentWhenMissing(t *testing.T) {
	xml := []byte(`<project>
		<artifactId>widgets</artifactId>
		<parent>
			<groupId>com.example.parent</groupId>
			<artifactId>parent-pom</artifactId>
			<version>3.0.0</version>
		</parent>
	</project>`)
	resolver := fakeResolver{result: pomresolve.Coordinates{GroupID: "com.example.parent", Version: "3.0.0"}}
	in := Input{Poms: []jarread.PomFile{{Name: "pom.xml", Data: xml}}}
	out := collectEmissions(NewPomAnalyzer(resolver), in)

	values := map[uid.Component]string{}
	for _, e := range out {
		values[e.component] = e.value
	}
	assert.Equal(t, "com.example.parent", values[uid.GroupID])
	assert.Equal(t, "3.0.0", values[uid.Version])
}

func TestPomAnalyzerNilResolverSkipsParentInheritance(t *testing.T) {
	xml := []byte(`<project>
		<artifactId>widgets</artifactId>
		<parent>
			<groupId>com.example.parent</groupId>
			<artifactId>parent-pom</artifactId>
			<version>3.0.0</version>
		</parent>
	</project>`)
	in := Input{Poms: []jarread.PomFile{{Name: "pom.xml", Data: xml}}}
	out := collectEmissions(NewPomAnalyzer(nil), in)

	for _, e := range out {
		assert.NotEqual(t, uid.GroupID, e.component)
	}
}

func TestPomAnalyzerMalformedXMLIgnored(t *testing.T) {
	in := Input{Poms: []jarread.PomFile{{Name: "pom.xml", Data: []byte("<not-xml")}}}
	out := collectEmissions(NewPomAnalyzer(nil), in)
	assert.Empty(t, out)
}
