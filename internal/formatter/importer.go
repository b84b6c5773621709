package formatter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/ytarchive/internal/models"
	"github.com/desertthunder/ytarchive/internal/shared"
)

// ReadCSVExport reads a playlist export given either of its two CSV files.
// The sibling file must sit next to it with the same playlist ID prefix.
func ReadCSVExport(path string) (*models.PlaylistExport, error) {
	var itemsPath, metadataPath string
	switch {
	case strings.HasSuffix(path, ItemsSuffix):
		itemsPath = path
		metadataPath = strings.TrimSuffix(path, ItemsSuffix) + MetadataSuffix
	case strings.HasSuffix(path, MetadataSuffix):
		metadataPath = path
		itemsPath = strings.TrimSuffix(path, MetadataSuffix) + ItemsSuffix
	default:
		return nil, fmt.Errorf("%w: %s is not a %s or %s file", shared.ErrInvalidInput, path, ItemsSuffix, MetadataSuffix)
	}

	playlist, err := readFile(metadataPath, ParseMetadataCSV)
	if err != nil {
		return nil, err
	}
	entries, err := readFile(itemsPath, ParseItemsCSV)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.PlaylistID != playlist.ID {
			return nil, fmt.Errorf("%w: item %s belongs to playlist %q, metadata is for %q",
				shared.ErrInvalidInput, e.VideoID, e.PlaylistID, playlist.ID)
		}
	}

	return &models.PlaylistExport{Playlist: *playlist, Entries: entries}, nil
}

func readFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ParseItemsCSV parses an items file written by [ExportToCSV].
func ParseItemsCSV(r io.Reader) ([]models.Entry, error) {
	records, err := readRecords(r, itemsHeader)
	if err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(records))
	for i, rec := range records {
		line := i + 2
		position, err := strconv.Atoi(rec[2])
		if err != nil || position < 0 {
			return nil, fmt.Errorf("%w: line %d: invalid position %q", shared.ErrInvalidInput, line, rec[2])
		}
		addedAt, err := parseTime(rec[3])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid added_at: %v", shared.ErrInvalidInput, line, err)
		}
		if strings.TrimSpace(rec[1]) == "" {
			return nil, fmt.Errorf("%w: line %d: empty video_id", shared.ErrInvalidInput, line)
		}

		entries = append(entries, models.Entry{
			PlaylistItem: models.PlaylistItem{
				PlaylistID: rec[0],
				VideoID:    rec[1],
				Position:   position,
				AddedAt:    addedAt,
			},
			Title:         rec[4],
			PrivacyStatus: rec[5],
		})
	}
	return entries, nil
}

// ParseMetadataCSV parses a metadata file written by [MetadataToCSV].
func ParseMetadataCSV(r io.Reader) (*models.Playlist, error) {
	records, err := readRecords(r, metadataHeader)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, fmt.Errorf("%w: expected 1 metadata row, got %d", shared.ErrInvalidInput, len(records))
	}

	rec := records[0]
	if strings.TrimSpace(rec[0]) == "" {
		return nil, fmt.Errorf("%w: empty playlist_id", shared.ErrInvalidInput)
	}
	createdAt, err := parseTime(rec[2])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid created_at: %v", shared.ErrInvalidInput, err)
	}
	updatedAt, err := parseTime(rec[3])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid last_updated_at: %v", shared.ErrInvalidInput, err)
	}

	return &models.Playlist{
		ID:             rec[0],
		Title:          rec[1],
		CreatedAt:      createdAt,
		LastUpdatedAt:  updatedAt,
		FreshnessToken: rec[4],
	}, nil
}

func readRecords(r io.Reader, header []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(header)

	got, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", shared.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if !slices.Equal(got, header) {
		return nil, fmt.Errorf("%w: unexpected header %v, want %v", shared.ErrInvalidInput, got, header)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return records, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
