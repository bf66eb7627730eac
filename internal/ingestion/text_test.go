package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText_PreserveMarkdownHeadings(t *testing.T) {
	result := CleanText("# Title\n## Subtitle\nContent here")

	assert.Contains(t, result, "# Title")
	assert.Contains(t, result, "## Subtitle")
	assert.Contains(t, result, "Content here")
}

func TestCleanText_Bullets(t *testing.T) {
	result := CleanText("- Item 1\n* Item 2\n• Item 3")

	assert.Contains(t, result, "- Item 1")
	assert.Contains(t, result, "* Item 2")
	assert.Contains(t, result, "- Item 3", "unicode bullets become dashes")
}

func TestCleanText_NormalizeWhitespace(t *testing.T) {
	result := CleanText("Line    with    multiple    spaces")
	assert.Equal(t, "Line with multiple spaces", result)
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	result := CleanText("Line 1\n\n\n\n\nLine 2")
	assert.Equal(t, "Line 1\n\nLine 2", result)
}

func TestCleanText_NormalizeLineEndings(t *testing.T) {
	result := CleanText("Line 1\r\nLine 2\rLine 3\nLine 4")
	assert.Equal(t, "Line 1\nLine 2\nLine 3\nLine 4", result)
}

func TestCleanText_EmptyAndWhitespace(t *testing.T) {
	assert.Empty(t, CleanText(""))
	assert.Empty(t, CleanText("   \n  \n  "))
}

func TestCleanText_SpecialCharacters(t *testing.T) {
	result := CleanText("Test with émojis 🚀 and spéciàl chàracters")
	assert.Contains(t, result, "émojis 🚀")
	assert.Contains(t, result, "spéciàl chàracters")
}

func TestNormalizePosting_PlainText(t *testing.T) {
	p := NormalizePosting("Senior   Go Engineer\r\n\r\n\r\n\r\nBuild things")
	assert.Equal(t, "Senior Go Engineer\n\nBuild things", p.Text)
	assert.Len(t, p.Hash, 64)

	again := NormalizePosting("Senior   Go Engineer\r\n\r\n\r\n\r\nBuild things")
	assert.Equal(t, p.Hash, again.Hash, "hash is deterministic")
}

func TestNormalizePosting_HTML(t *testing.T) {
	html := `<html><body>
		<nav>Jobs | About</nav>
		<div class="job-description">
			<h2>Backend Engineer</h2>
			<p>We need a Go developer.</p>
			<ul><li>Kubernetes</li><li>PostgreSQL</li></ul>
		</div>
		<script>track()</script>
	</body></html>`

	p := NormalizePosting(html)
	assert.Contains(t, p.Text, "Backend Engineer")
	assert.Contains(t, p.Text, "We need a Go developer.")
	assert.Contains(t, p.Text, "- Kubernetes")
	assert.Contains(t, p.Text, "- PostgreSQL")
	assert.NotContains(t, p.Text, "track()")
	assert.NotContains(t, p.Text, "Jobs | About")
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML("<!DOCTYPE html><html></html>"))
	assert.True(t, LooksLikeHTML("<div>fragment</div>"))
	assert.False(t, LooksLikeHTML("We use C++ and x < y comparisons"))
}

func TestReadPostingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(path, []byte("# Job Title\n\nDescription here"), 0644))

	p, err := ReadPostingFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Job Title\n\nDescription here", p.Text)

	_, err = ReadPostingFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "file not found")
}

func TestExtractText_SelectorsAndNoise(t *testing.T) {
	html := `<html><body>
		<div class="promo">Join our talent network</div>
		<div class="posting"><h2>About the role</h2><p>Build Go services.</p>
			<div class="eeo">Equal opportunity employer</div>
			<ul><li>Kubernetes</li><li>Postgres</li></ul>
		</div></body></html>`

	text, err := ExtractText(html, []string{".missing", ".posting"}, []string{".eeo"})
	require.NoError(t, err)
	assert.Equal(t, "About the role\nBuild Go services.\n- Kubernetes\n- Postgres", text)
	assert.NotContains(t, text, "talent network")
}

func TestExtractText_FallsBackToBody(t *testing.T) {
	text, err := ExtractText(`<html><body><p>Only body</p></body></html>`, []string{".job"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Only body", text)
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Senior Go Engineer", PageTitle(`<html><head><title>Careers</title></head><body><h1> Senior  Go
		Engineer </h1></body></html>`))
	assert.Equal(t, "Careers at Acme", PageTitle(`<html><head><title>Careers at Acme</title></head><body></body></html>`))
	assert.Empty(t, PageTitle(`<p>no title</p>`))
}
