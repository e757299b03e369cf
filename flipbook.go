package tweenguide

import (
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:embed html_templates/flipbook.html
var flipbookTemplate string

//go:embed html_templates/studio.html
var studioTemplate string

// SessionReport is a complete record of a guided session: the overlay
// frames captured along the way plus any smudges the watcher recorded.
type SessionReport struct {
	SessionID uuid.UUID       `json:"session_id"`
	Title     string          `json:"title"`
	Timestamp string          `json:"timestamp"`
	Duration  time.Duration   `json:"duration"`
	Healthy   bool            `json:"healthy"`
	Frames    []FlipbookFrame `json:"frames"`
	Smudges   []string        `json:"smudges"`
}

// FlipbookFrame is one captured overlay image with its status view.
type FlipbookFrame struct {
	Label      string        `json:"label"`
	Step       int           `json:"step"`
	Timestamp  time.Time     `json:"timestamp"`
	DataURL    template.URL  `json:"data_url"`
	StatusHTML template.HTML `json:"-"`
}

// sessionMetadata is the structured block embedded in each report page,
// read back when building the studio index.
type sessionMetadata struct {
	SessionID  string `json:"sessionId"`
	Title      string `json:"title"`
	Duration   string `json:"duration"`
	FrameCount int    `json:"frameCount"`
	Timestamp  string `json:"timestamp"`
	Healthy    bool   `json:"healthy"`
	ReportType string `json:"reportType"`
}

// FlipbookGenerator writes session reports as standalone HTML flipbooks.
type FlipbookGenerator struct {
	outputDir     string
	templateCache map[string]*template.Template
}

// NewFlipbookGenerator creates a generator writing under outputDir.
func NewFlipbookGenerator(outputDir string) *FlipbookGenerator {
	return &FlipbookGenerator{
		outputDir:     outputDir,
		templateCache: make(map[string]*template.Template),
	}
}

// Generate renders the report to <outputDir>/index.html.
func (g *FlipbookGenerator) Generate(report SessionReport) error {
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reportPath := filepath.Join(g.outputDir, "index.html")
	file, err := os.Create(reportPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return g.flipbook().Execute(file, report)
}

func (g *FlipbookGenerator) flipbook() *template.Template {
	if tmpl, exists := g.templateCache["flipbook"]; exists {
		return tmpl
	}
	tmpl := template.Must(template.New("flipbook").Parse(flipbookTemplate))
	g.templateCache["flipbook"] = tmpl
	return tmpl
}

// ImageDataURL reads an image file and converts it to a base64 data URL
// so the flipbook page stays self-contained.
func ImageDataURL(imagePath string) (template.URL, error) {
	imageBytes, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(imagePath))
	var mimeType string
	switch ext {
	case ".png":
		mimeType = "image/png"
	case ".jpg", ".jpeg":
		mimeType = "image/jpeg"
	case ".gif":
		mimeType = "image/gif"
	default:
		mimeType = "image/png"
	}

	base64Data := base64.StdEncoding.EncodeToString(imageBytes)
	return template.URL(fmt.Sprintf("data:%s;base64,%s", mimeType, base64Data)), nil
}

// StudioEntry is one flipbook on the studio index page.
type StudioEntry struct {
	Title        string    `json:"title"`
	Timestamp    string    `json:"timestamp"`
	Healthy      bool      `json:"healthy"`
	FrameCount   int       `json:"frame_count"`
	Duration     string    `json:"duration"`
	ReportPath   string    `json:"report_path"`
	RelativePath string    `json:"relative_path"`
	CreatedAt    time.Time `json:"created_at"`
}

// GenerateStudioIndex scans baseDir for session flipbooks and writes a
// central index.html linking them, newest first.
func GenerateStudioIndex(baseDir string) error {
	entries, err := scanFlipbooks(baseDir)
	if err != nil {
		return fmt.Errorf("failed to scan session reports: %w", err)
	}

	indexPath := filepath.Join(baseDir, "index.html")
	file, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("failed to create studio index: %w", err)
	}
	defer file.Close()

	tmpl := template.Must(template.New("studio").Parse(studioTemplate))

	data := struct {
		Reports     []StudioEntry
		GeneratedAt time.Time
	}{
		Reports:     entries,
		GeneratedAt: time.Now(),
	}

	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("failed to execute studio template: %w", err)
	}

	return nil
}

// scanFlipbooks finds session reports in timestamped subdirectories.
func scanFlipbooks(baseDir string) ([]StudioEntry, error) {
	var entries []StudioEntry

	err := filepath.Walk(baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.Name() != "index.html" || path == filepath.Join(baseDir, "index.html") {
			return nil
		}

		dir := filepath.Dir(path)
		timestamp := filepath.Base(dir)
		if _, err := time.Parse("20060102_150405", timestamp); err != nil {
			return nil
		}

		entry := StudioEntry{
			Title:        filepath.Base(filepath.Dir(dir)),
			Timestamp:    timestamp,
			ReportPath:   path,
			RelativePath: relativePath(baseDir, path),
			CreatedAt:    info.ModTime(),
		}

		if meta, err := readSessionMetadata(path); err == nil {
			entry.Title = meta.Title
			entry.Healthy = meta.Healthy
			entry.FrameCount = meta.FrameCount
			entry.Duration = meta.Duration
		}

		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Newest first
	for i := 0; i < len(entries)-1; i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[j].CreatedAt.After(entries[i].CreatedAt) {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}

	return entries, nil
}

// readSessionMetadata pulls the embedded JSON block back out of a report.
func readSessionMetadata(htmlPath string) (*sessionMetadata, error) {
	content, err := os.ReadFile(htmlPath)
	if err != nil {
		return nil, err
	}
	html := string(content)

	start := strings.Index(html, `<script type="application/json" id="session-metadata">`)
	if start == -1 {
		return nil, fmt.Errorf("no session metadata found")
	}

	jsonStart := strings.Index(html[start:], "{")
	if jsonStart == -1 {
		return nil, fmt.Errorf("no JSON opening brace found in metadata")
	}
	start += jsonStart

	scriptEnd := strings.Index(html[start:], "</script>")
	if scriptEnd == -1 {
		return nil, fmt.Errorf("no script closing tag found")
	}
	end := start + scriptEnd

	var meta sessionMetadata
	if err := json.Unmarshal([]byte(strings.TrimSpace(html[start:end])), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse session metadata: %w", err)
	}
	return &meta, nil
}

func relativePath(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return rel
}
