package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/wavebreaker/wavebreaker/internal/logger"
)

// Client queries the MusicBrainz web service for recording metadata
// and derives Cover Art Archive URLs. MusicBrainz asks anonymous
// clients to stay at one request per second, so calls are serialized
// through a mutex; callers treat every failure as non-fatal.
type Client interface {
	LookupRecording(ctx context.Context, mbid string) (*Recording, error)
	SearchRecording(ctx context.Context, artist, title string, lengthMS int32) (*Recording, error)
}

type Recording struct {
	MBID        string
	Title       string
	Artist      string
	LengthMS    int32
	ReleaseMBID string
}

// CoverArtURLs returns the full-size and 250px front cover URLs for a
// release. The Cover Art Archive redirects to the image, so this is
// derivable without a request.
func CoverArtURLs(releaseMBID string) (full string, small string) {
	if releaseMBID == "" {
		return "", ""
	}
	base := "https://coverartarchive.org/release/" + releaseMBID
	return base + "/front", base + "/front-250"
}

type client struct {
	log       *logger.Logger
	http      *http.Client
	baseURL   string
	userAgent string
	mu        sync.Mutex
	lastCall  time.Time
}

type Option func(*client)

func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *client) { c.http = h }
}

func NewClient(log *logger.Logger, baseURL, userAgent string, opts ...Option) Client {
	c := &client{
		log:       log.With("client", "MusicBrainzClient"),
		http:      &http.Client{Timeout: 15 * time.Second},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type artistCredit struct {
	Name string `json:"name"`
}

type release struct {
	ID string `json:"id"`
}

type recordingPayload struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Length       int32          `json:"length"`
	ArtistCredit []artistCredit `json:"artist-credit"`
	Releases     []release      `json:"releases"`
	Score        int            `json:"score"`
}

type searchEnvelope struct {
	Recordings []recordingPayload `json:"recordings"`
}

func (c *client) LookupRecording(ctx context.Context, mbid string) (*Recording, error) {
	q := url.Values{}
	q.Set("inc", "artist-credits+releases")
	q.Set("fmt", "json")

	var payload recordingPayload
	if err := c.getJSON(ctx, "/recording/"+url.PathEscape(mbid), q, &payload); err != nil {
		return nil, err
	}
	rec := fromPayload(payload)
	if rec.MBID == "" {
		rec.MBID = mbid
	}
	return rec, nil
}

func (c *client) SearchRecording(ctx context.Context, artist, title string, lengthMS int32) (*Recording, error) {
	query := fmt.Sprintf(`artist:%q AND recording:%q`, artist, title)
	if lengthMS > 0 {
		// Recordings drift a few seconds from the client's rip.
		query += fmt.Sprintf(" AND dur:[%d TO %d]", lengthMS-8000, lengthMS+8000)
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("limit", "1")
	q.Set("fmt", "json")

	var env searchEnvelope
	if err := c.getJSON(ctx, "/recording", q, &env); err != nil {
		return nil, err
	}
	if len(env.Recordings) == 0 {
		return nil, fmt.Errorf("musicbrainz: no recording found for %s - %s", artist, title)
	}
	best := env.Recordings[0]
	if best.Score > 0 && best.Score < 90 {
		return nil, fmt.Errorf("musicbrainz: best match for %s - %s scored %d, below threshold", artist, title, best.Score)
	}
	return fromPayload(best), nil
}

func fromPayload(p recordingPayload) *Recording {
	rec := &Recording{
		MBID:     p.ID,
		Title:    p.Title,
		LengthMS: p.Length,
	}
	if len(p.ArtistCredit) > 0 {
		rec.Artist = p.ArtistCredit[0].Name
	}
	if len(p.Releases) > 0 {
		rec.ReleaseMBID = p.Releases[0].ID
	}
	return rec
}

func (c *client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	c.mu.Lock()
	if wait := time.Second - time.Since(c.lastCall); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			c.mu.Unlock()
			return ctx.Err()
		}
	}
	c.lastCall = time.Now()
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("musicbrainz: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("musicbrainz: %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("musicbrainz: decode %s response: %w", path, err)
	}
	return nil
}
