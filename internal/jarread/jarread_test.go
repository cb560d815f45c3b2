package jarread

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildJar(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestReadExtractsManifestPomsAndClasses(t *testing.T) {
	data := buildJar(t, map[string]string{
		"META-INF/MANIFEST.MF":        "Manifest-Version: 1.0\r\n",
		"META-INF/maven/g/a/pom.xml":  "<project/>",
		"com/example/Widget.class":    "\xca\xfe\xba\xbe",
		"com/example/Widget$1.class":  "\xca\xfe\xba\xbe",
		"com/example/other/Foo.class": "\xca\xfe\xba\xbe",
	})

	res, err := Read(data)
	require.NoError(t, err)

	assert.Equal(t, "Manifest-Version: 1.0\r\n", string(res.Manifest))
	require.Len(t, res.Poms, 1)
	assert.Equal(t, "pom.xml", res.Poms[0].Name)
	assert.Len(t, res.Classes, 3)
}

func TestReadIgnoresDirectoryEntries(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("com/example/")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	res, err := Read(buf.Bytes())
	require.NoError(t, err)
	assert.Empty(t, res.Classes)
	assert.Nil(t, res.Manifest)
}

func TestReadNoManifest(t *testing.T) {
	data := buildJar(t, map[string]string{"com/example/Widget.class": "x"})
	res, err := Read(data)
	require.NoError(t, err)
	assert.Nil(t, res.Manifest)
}

func TestReadRejectsNonZip(t *testing.T) {
	_, err := Read([]byte("not a zip"))
	assert.Error(t, err)
}

func TestEntryTimestampsMatchModified(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     "com/example/Widget.class",
		Modified: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		Method:   zip.Deflate,
	})
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	res, err := Read(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, res.Classes, 1)
	assert.Equal(t, res.Classes[0].CreatedAt, res.Classes[0].ModifiedAt)
}
