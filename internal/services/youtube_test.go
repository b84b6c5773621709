package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/ytarchive/internal/shared"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *YouTubeSource {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	src, err := NewYouTubeSource(context.Background(), YouTubeOpts{
		Endpoint:          server.URL + "/",
		HTTPClient:        server.Client(),
		RequestsPerSecond: 1000,
	})
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	return src
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func playlistItem(videoID, title, privacy string) map[string]any {
	return map[string]any{
		"snippet":        map[string]any{"title": title},
		"contentDetails": map[string]any{"videoId": videoID},
		"status":         map[string]any{"privacyStatus": privacy},
	}
}

func TestYouTubeSource(t *testing.T) {
	ctx := context.Background()

	t.Run("NewYouTubeSource", func(t *testing.T) {
		t.Run("fails without credentials", func(t *testing.T) {
			_, err := NewYouTubeSource(ctx, YouTubeOpts{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("creates source with API key", func(t *testing.T) {
			src, err := NewYouTubeSource(ctx, YouTubeOpts{APIKey: "test-key"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if src.Name() != "YouTube" {
				t.Errorf("expected name YouTube, got %s", src.Name())
			}
		})

		t.Run("fails with missing token file", func(t *testing.T) {
			_, err := NewYouTubeSource(ctx, YouTubeOpts{TokenFile: filepath.Join(t.TempDir(), "missing.json")})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("fails with malformed token file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "token.json")
			if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
				t.Fatalf("failed to write token file: %v", err)
			}

			_, err := NewYouTubeSource(ctx, YouTubeOpts{TokenFile: path})
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("loads token file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "token.json")
			token := `{"access_token":"abc","token_type":"Bearer","refresh_token":"def"}`
			if err := os.WriteFile(path, []byte(token), 0600); err != nil {
				t.Fatalf("failed to write token file: %v", err)
			}

			if _, err := NewYouTubeSource(ctx, YouTubeOpts{TokenFile: path, ClientID: "id", ClientSecret: "secret"}); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	})

	t.Run("ListPage", func(t *testing.T) {
		t.Run("maps items and tokens", func(t *testing.T) {
			src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasSuffix(r.URL.Path, "/playlistItems") {
					t.Errorf("unexpected path %s", r.URL.Path)
				}

				q := r.URL.Query()
				if q.Get("playlistId") != "PL123" {
					t.Errorf("expected playlistId PL123, got %s", q.Get("playlistId"))
				}
				if q.Get("maxResults") != "2" {
					t.Errorf("expected maxResults 2, got %s", q.Get("maxResults"))
				}
				if q.Get("pageToken") != "" {
					t.Errorf("expected no pageToken on first page, got %s", q.Get("pageToken"))
				}
				for _, part := range []string{"snippet", "contentDetails", "status"} {
					if !slices.Contains(q["part"], part) {
						t.Errorf("expected %s part, got %v", part, q["part"])
					}
				}

				writeJSON(t, w, http.StatusOK, map[string]any{
					"etag":          "etag-1",
					"nextPageToken": "CAIQAA",
					"items": []any{
						playlistItem("vid1", "First", "public"),
						playlistItem("vid2", "Second", "unlisted"),
					},
				})
			})

			page, err := src.ListPage(ctx, "PL123", 2, "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if page.FreshnessToken != "etag-1" {
				t.Errorf("expected freshness token etag-1, got %s", page.FreshnessToken)
			}
			if !page.HasMore() || page.NextContinuation != "CAIQAA" {
				t.Errorf("expected continuation CAIQAA, got %q", page.NextContinuation)
			}
			if len(page.Items) != 2 {
				t.Fatalf("expected 2 items, got %d", len(page.Items))
			}
			if page.Items[0].VideoID != "vid1" || page.Items[0].Title != "First" {
				t.Errorf("unexpected first item: %+v", page.Items[0])
			}
			if page.Items[1].PrivacyStatus != "unlisted" {
				t.Errorf("expected unlisted, got %s", page.Items[1].PrivacyStatus)
			}
		})

		t.Run("sends continuation", func(t *testing.T) {
			src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("pageToken"); got != "CAIQAA" {
					t.Errorf("expected pageToken CAIQAA, got %s", got)
				}
				writeJSON(t, w, http.StatusOK, map[string]any{"etag": "etag-2", "items": []any{}})
			})

			page, err := src.ListPage(ctx, "PL123", 50, "CAIQAA")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if page.HasMore() {
				t.Error("expected last page")
			}
			if len(page.Items) != 0 {
				t.Errorf("expected no items, got %d", len(page.Items))
			}
		})

		t.Run("rejects page size", func(t *testing.T) {
			src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("source must not be called")
			})

			for _, size := range []int{0, 51, -1} {
				if _, err := src.ListPage(ctx, "PL123", size, ""); !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("size %d: expected ErrInvalidArgument, got %v", size, err)
				}
			}
		})

		t.Run("maps not found", func(t *testing.T) {
			src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusNotFound, map[string]any{
					"error": map[string]any{"code": 404, "message": "playlistNotFound"},
				})
			})

			_, err := src.ListPage(ctx, "PLmissing", 1, "")
			if !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("maps other failures to source unavailable", func(t *testing.T) {
			src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusForbidden, map[string]any{
					"error": map[string]any{"code": 403, "message": "quotaExceeded"},
				})
			})

			_, err := src.ListPage(ctx, "PL123", 1, "")
			if !errors.Is(err, shared.ErrSourceUnavailable) {
				t.Errorf("expected ErrSourceUnavailable, got %v", err)
			}
		})
	})

	t.Run("GetMetadata", func(t *testing.T) {
		t.Run("returns title", func(t *testing.T) {
			src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasSuffix(r.URL.Path, "/playlists") {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if r.URL.Query().Get("id") != "PL123" {
					t.Errorf("expected id PL123, got %s", r.URL.Query().Get("id"))
				}
				writeJSON(t, w, http.StatusOK, map[string]any{
					"items": []any{map[string]any{"id": "PL123", "snippet": map[string]any{"title": "Road Trip"}}},
				})
			})

			meta, err := src.GetMetadata(ctx, "PL123")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if meta.Title != "Road Trip" {
				t.Errorf("expected Road Trip, got %s", meta.Title)
			}
		})

		t.Run("empty result is not found", func(t *testing.T) {
			src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusOK, map[string]any{"items": []any{}})
			})

			_, err := src.GetMetadata(ctx, "PL123")
			if !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected ErrPlaylistNotFound, got %v", err)
			}
		})
	})
}
