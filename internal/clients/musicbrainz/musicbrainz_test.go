package musicbrainz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wavebreaker/wavebreaker/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return log
}

func TestLookupRecording(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recording/abc-123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "Wavebreaker-Test/1.0" {
			t.Errorf("user agent %q", ua)
		}
		_, _ = w.Write([]byte(`{"id":"abc-123","title":"Ride","length":245000,"artist-credit":[{"name":"Surfer"}],"releases":[{"id":"rel-1"}]}`))
	}))
	defer srv.Close()

	c := NewClient(testLogger(t), srv.URL, "Wavebreaker-Test/1.0")
	rec, err := c.LookupRecording(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Title != "Ride" || rec.Artist != "Surfer" || rec.ReleaseMBID != "rel-1" || rec.LengthMS != 245000 {
		t.Fatalf("unexpected recording: %+v", rec)
	}
}

func TestSearchRecording(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "match",
			body: `{"recordings":[{"id":"abc","score":100,"title":"Ride","length":245000,"artist-credit":[{"name":"Surfer"}],"releases":[{"id":"rel-1"}]}]}`,
		},
		{
			name:    "no_results",
			body:    `{"recordings":[]}`,
			wantErr: true,
		},
		{
			name:    "low_score",
			body:    `{"recordings":[{"id":"abc","score":40,"title":"Other"}]}`,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if q := r.URL.Query().Get("query"); q == "" {
					t.Error("missing query parameter")
				}
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(testLogger(t), srv.URL, "Wavebreaker-Test/1.0")
			rec, err := c.SearchRecording(context.Background(), "Surfer", "Ride", 245000)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", rec)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.MBID != "abc" {
				t.Fatalf("mbid=%q", rec.MBID)
			}
		})
	}
}

func TestCoverArtURLs(t *testing.T) {
	full, small := CoverArtURLs("rel-1")
	if full != "https://coverartarchive.org/release/rel-1/front" {
		t.Fatalf("full=%q", full)
	}
	if small != "https://coverartarchive.org/release/rel-1/front-250" {
		t.Fatalf("small=%q", small)
	}
	if full, small = CoverArtURLs(""); full != "" || small != "" {
		t.Fatal("empty release should yield empty URLs")
	}
}
