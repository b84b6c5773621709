package models

import (
	"testing"
	"time"
)

func TestItemCount(t *testing.T) {
	t.Run("ParseItemCount", func(t *testing.T) {
		tt := []struct {
			name    string
			input   string
			want    string
			wantErr bool
		}{
			{name: "empty is unbounded", input: "", want: "all"},
			{name: "single", input: "10", want: "10"},
			{name: "per playlist", input: "10, 5,20", want: "10,5,20"},
			{name: "not a number", input: "ten", wantErr: true},
			{name: "negative", input: "3,-1", wantErr: true},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				got, err := ParseItemCount(tc.input)
				if (err != nil) != tc.wantErr {
					t.Fatalf("ParseItemCount() error = %v, wantErr %v", err, tc.wantErr)
				}
				if !tc.wantErr && got.String() != tc.want {
					t.Errorf("ParseItemCount() = %s, want %s", got, tc.want)
				}
			})
		}
	})

	t.Run("Single applies to every playlist", func(t *testing.T) {
		c := Single(7)
		if err := c.Validate(3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := range 3 {
			if n, ok := c.For(i); !ok || n != 7 {
				t.Errorf("For(%d) = %d, %v", i, n, ok)
			}
		}
	})

	t.Run("PerPlaylist is length checked", func(t *testing.T) {
		c := PerPlaylist(1, 2)
		if err := c.Validate(2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := c.Validate(3); err == nil {
			t.Error("expected error for mismatched playlist count")
		}
		if n, ok := c.For(1); !ok || n != 2 {
			t.Errorf("For(1) = %d, %v", n, ok)
		}
		if _, ok := c.For(2); ok {
			t.Error("expected no budget past the end")
		}
	})

	t.Run("Unbounded has no budget", func(t *testing.T) {
		if b := Unbounded().Budget(0); b != nil {
			t.Errorf("expected nil budget, got %d", *b)
		}
		if b := Single(0).Budget(4); b == nil || *b != 0 {
			t.Error("expected zero budget")
		}
	})
}

func TestSourceItem(t *testing.T) {
	if err := (SourceItem{VideoID: " "}).Validate(); err == nil {
		t.Error("expected error for blank video ID")
	}

	item := SourceItem{VideoID: "v1", Title: "First", PrivacyStatus: "public"}
	if v := item.Video(); v.ID != "v1" || v.Title != "First" || v.PrivacyStatus != "public" {
		t.Errorf("unexpected video %+v", v)
	}
}

func TestArchiveRunDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	run := ArchiveRun{StartedAt: start, FinishedAt: start.Add(3 * time.Second)}
	if run.Duration() != 3*time.Second {
		t.Errorf("Duration() = %v", run.Duration())
	}
	if Descending.String() != "desc" || Ascending.String() != "asc" {
		t.Error("unexpected order names")
	}
}

func TestPlaylistExportVideos(t *testing.T) {
	export := &PlaylistExport{
		Playlist: Playlist{ID: "PL1"},
		Entries: []Entry{
			{PlaylistItem: PlaylistItem{VideoID: "a", Position: 0}, Title: "A"},
			{PlaylistItem: PlaylistItem{VideoID: "b", Position: 1}, Title: "B"},
			{PlaylistItem: PlaylistItem{VideoID: "a", Position: 2}, Title: "A again"},
		},
	}

	videos := export.Videos()
	if len(videos) != 2 {
		t.Fatalf("expected 2 distinct videos, got %d", len(videos))
	}
	if videos[0].ID != "a" || videos[0].Title != "A" || videos[1].ID != "b" {
		t.Errorf("unexpected videos %+v", videos)
	}
}
