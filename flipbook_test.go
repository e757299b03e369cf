package tweenguide

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(t *testing.T, title string, healthy bool) SessionReport {
	t.Helper()
	return SessionReport{
		SessionID: uuid.New(),
		Title:     title,
		Timestamp: "2026-08-26T10:00:00Z",
		Duration:  1200 * time.Millisecond,
		Healthy:   healthy,
		Frames: []FlipbookFrame{
			{Label: "stroke on frame 1", Step: 1, Timestamp: time.Now(),
				StatusHTML: StatusViewHTML("state: monitoring")},
			{Label: "settle", Step: 2, Timestamp: time.Now()},
		},
		Smudges: []string{"[introspection:smear] stroke count unavailable"},
	}
}

// TestFlipbookGenerator_Generate tests the report page rendering.
func TestFlipbookGenerator_Generate(t *testing.T) {
	dir := t.TempDir()
	generator := NewFlipbookGenerator(dir)

	report := sampleReport(t, "trace walk", true)
	require.NoError(t, generator.Generate(report))

	content, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	html := string(content)

	assert.Contains(t, html, "trace walk")
	assert.Contains(t, html, report.SessionID.String())
	assert.Contains(t, html, "HEALTHY")
	assert.Contains(t, html, "stroke on frame 1")
	assert.Contains(t, html, "stroke count unavailable")
	assert.Contains(t, html, `id="session-metadata"`)
}

// TestReadSessionMetadata tests the metadata round trip: what Generate
// embeds, the studio scan reads back.
func TestReadSessionMetadata(t *testing.T) {
	dir := t.TempDir()
	generator := NewFlipbookGenerator(dir)
	require.NoError(t, generator.Generate(sampleReport(t, "metadata check", false)))

	meta, err := readSessionMetadata(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "metadata check", meta.Title)
	assert.False(t, meta.Healthy)
	assert.Equal(t, 2, meta.FrameCount)
	assert.Equal(t, "flipbook", meta.ReportType)
}

// TestGenerateStudioIndex tests the index over timestamped report dirs.
func TestGenerateStudioIndex(t *testing.T) {
	base := t.TempDir()

	older := filepath.Join(base, "first-session", "20260826_090000")
	newer := filepath.Join(base, "second-session", "20260826_110000")
	require.NoError(t, NewFlipbookGenerator(older).Generate(sampleReport(t, "first-session", true)))
	require.NoError(t, NewFlipbookGenerator(newer).Generate(sampleReport(t, "second-session", false)))

	// A stray index.html outside a timestamped directory is ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(base, "notes"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "notes", "index.html"), []byte("<html></html>"), 0644))

	require.NoError(t, GenerateStudioIndex(base))

	content, err := os.ReadFile(filepath.Join(base, "index.html"))
	require.NoError(t, err)
	html := string(content)

	assert.Contains(t, html, "first-session")
	assert.Contains(t, html, "second-session")
	assert.Contains(t, html, "healthy")
	assert.Contains(t, html, "degraded")
	assert.NotContains(t, html, "notes")
}

// TestImageDataURL tests the PNG embedding helper.
func TestImageDataURL(t *testing.T) {
	lt := NewLightTable(32, 24, NewCamera(32, 24, 10), DefaultOverlayConfig())
	lt.DrawGuide(GuideStroke{Points: []Vec3{V3(-0.5, 0, 0), V3(0.5, 0, 0)}})

	path := filepath.Join(t.TempDir(), "tiny.png")
	require.NoError(t, lt.CaptureFrame(path))

	url, err := ImageDataURL(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(url), "data:image/png;base64,"))

	_, err = ImageDataURL(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
