// package formatter converts archived playlists to and from export files (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/shared"
)

const (
	ItemsSuffix    = "_items.csv"
	MetadataSuffix = "_metadata.csv"
)

var (
	itemsHeader    = []string{"playlist_id", "video_id", "position", "added_at", "title", "privacy_status"}
	metadataHeader = []string{"playlist_id", "title", "created_at", "last_updated_at", "freshness_token"}
)

// CSVPaths returns the items and metadata file paths of a playlist export in dir.
func CSVPaths(dir, playlistID string) (items, metadata string) {
	return filepath.Join(dir, playlistID+ItemsSuffix), filepath.Join(dir, playlistID+MetadataSuffix)
}

// ExportToCSV renders the entries of an export, one row per item in position order.
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	rows := make([][]string, 0, len(export.Entries))
	for _, e := range export.Entries {
		rows = append(rows, []string{
			export.Playlist.ID,
			e.VideoID,
			strconv.Itoa(e.Position),
			formatTime(e.AddedAt),
			e.Title,
			e.PrivacyStatus,
		})
	}
	return writeCSV(itemsHeader, rows)
}

// MetadataToCSV renders the single-row playlist metadata file.
func MetadataToCSV(p models.Playlist) ([]byte, error) {
	return writeCSV(metadataHeader, [][]string{{
		p.ID,
		p.Title,
		formatTime(p.CreatedAt),
		formatTime(p.LastUpdatedAt),
		p.FreshnessToken,
	}})
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown renders a playlist as a Markdown document with links to every video
func ExportToMarkdown(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	p := export.Playlist

	fmt.Fprintf(&buf, "# %s\n\n", displayTitle(p))
	fmt.Fprintf(&buf, "- **Playlist**: [%s](%s)\n", p.ID, shared.PlaylistURL(p.ID))
	fmt.Fprintf(&buf, "- **Items**: %d\n", len(export.Entries))
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(&buf, "- **Archived**: %s\n", formatTime(p.CreatedAt))
	}
	if !p.LastUpdatedAt.IsZero() {
		fmt.Fprintf(&buf, "- **Last updated**: %s\n", formatTime(p.LastUpdatedAt))
	}

	buf.WriteString("\n## Items\n\n")
	for i, e := range export.Entries {
		fmt.Fprintf(&buf, "%d. [%s](%s)%s\n", i+1, e.Title, shared.VideoURL(e.VideoID), privacySuffix(e.PrivacyStatus))
	}

	return buf.Bytes(), nil
}

// ExportToText renders a playlist as plain text
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s (%s)\n", displayTitle(export.Playlist), export.Playlist.ID)
	fmt.Fprintf(&buf, "Items: %d\n\n", len(export.Entries))

	for i, e := range export.Entries {
		fmt.Fprintf(&buf, "%d. %s [%s]%s\n", i+1, e.Title, e.VideoID, privacySuffix(e.PrivacyStatus))
	}

	return buf.Bytes(), nil
}

type jsonPlaylist struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	LastUpdatedAt  time.Time `json:"last_updated_at"`
	FreshnessToken string    `json:"freshness_token"`
}

type jsonEntry struct {
	VideoID       string    `json:"video_id"`
	Position      int       `json:"position"`
	AddedAt       time.Time `json:"added_at"`
	Title         string    `json:"title"`
	PrivacyStatus string    `json:"privacy_status"`
}

type jsonExport struct {
	Playlist jsonPlaylist `json:"playlist"`
	Items    []jsonEntry  `json:"items"`
}

// ExportToJSON renders a playlist and its entries as indented JSON.
func ExportToJSON(export *models.PlaylistExport) ([]byte, error) {
	p := export.Playlist
	out := jsonExport{
		Playlist: jsonPlaylist{
			ID:             p.ID,
			Title:          p.Title,
			CreatedAt:      p.CreatedAt.UTC(),
			LastUpdatedAt:  p.LastUpdatedAt.UTC(),
			FreshnessToken: p.FreshnessToken,
		},
		Items: make([]jsonEntry, 0, len(export.Entries)),
	}
	for _, e := range export.Entries {
		out.Items = append(out.Items, jsonEntry{
			VideoID:       e.VideoID,
			Position:      e.Position,
			AddedAt:       e.AddedAt.UTC(),
			Title:         e.Title,
			PrivacyStatus: e.PrivacyStatus,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ItemsFile    string
	MetadataFile string
}

// WriteCSVExport writes {id}_items.csv and {id}_metadata.csv into dir.
func WriteCSVExport(export *models.PlaylistExport, dir string) (*CSVExportResult, error) {
	itemsFile, metadataFile := CSVPaths(dir, export.Playlist.ID)

	itemsData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}
	if err := os.WriteFile(itemsFile, itemsData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataData, err := MetadataToCSV(export.Playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata CSV: %w", err)
	}
	if err := os.WriteFile(metadataFile, metadataData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{ItemsFile: itemsFile, MetadataFile: metadataFile}, nil
}

// WriteMarkdownExport writes {id}.md into dir.
func WriteMarkdownExport(export *models.PlaylistExport, dir string) (string, error) {
	return writeRendered(export, filepath.Join(dir, export.Playlist.ID+".md"), ExportToMarkdown)
}

// WriteTextExport writes {id}_items.txt into dir.
func WriteTextExport(export *models.PlaylistExport, dir string) (string, error) {
	return writeRendered(export, filepath.Join(dir, export.Playlist.ID+"_items.txt"), ExportToText)
}

// WriteJSONExport writes {id}.json into dir.
func WriteJSONExport(export *models.PlaylistExport, dir string) (string, error) {
	return writeRendered(export, filepath.Join(dir, export.Playlist.ID+".json"), ExportToJSON)
}

func writeRendered(export *models.PlaylistExport, path string, render func(*models.PlaylistExport) ([]byte, error)) (string, error) {
	data, err := render(export)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// ManifestEntry is one playlist in an export manifest.
type ManifestEntry struct {
	PlaylistID string   `json:"playlist_id"`
	Title      string   `json:"title,omitempty"`
	Files      []string `json:"files,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// ExportManifest summarizes a bulk export.
type ExportManifest struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Format      string          `json:"format"`
	Succeeded   int             `json:"succeeded"`
	Failed      int             `json:"failed"`
	Playlists   []ManifestEntry `json:"playlists"`
}

// WriteExportManifest writes the manifest as indented JSON to path.
func WriteExportManifest(manifest ExportManifest, path string) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func displayTitle(p models.Playlist) string {
	if p.Title == "" {
		return p.ID
	}
	return p.Title
}

func privacySuffix(status string) string {
	if status == "" || status == "public" {
		return ""
	}
	return fmt.Sprintf(" (%s)", status)
}
