package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wavebreaker/wavebreaker/internal/clients/musicbrainz"
	"github.com/wavebreaker/wavebreaker/internal/game"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	apperrors "github.com/wavebreaker/wavebreaker/internal/pkg/errors"
	"github.com/wavebreaker/wavebreaker/internal/repos"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

// SongLookupRequest is what the game sends when it asks for a song ID.
// Title is raw and may carry modifier tags.
type SongLookupRequest struct {
	Artist      string
	Title       string
	MBID        string
	ReleaseMBID string
}

type SongService interface {
	// LookupOrRegister resolves the game's song-ID request: find the
	// song by MBID or identity, creating and enriching it when unknown.
	LookupOrRegister(ctx context.Context, req SongLookupRequest) (*types.Song, error)
	GetByID(ctx context.Context, id int32) (*types.Song, error)
	GetShouts(ctx context.Context, songID int32) ([]types.Shout, error)
	// AutoAddMetadata searches MusicBrainz using the song length from a
	// ride submit. Failures are returned for logging but must never
	// fail the caller's operation.
	AutoAddMetadata(ctx context.Context, songID int32, lengthMS int32) error
}

type songService struct {
	db          *gorm.DB
	log         *logger.Logger
	songRepo    repos.SongRepo
	extraRepo   repos.ExtraSongInfoRepo
	shoutRepo   repos.ShoutRepo
	mbClient    musicbrainz.Client
	mbEnabled   bool
}

func NewSongService(
	db *gorm.DB,
	log *logger.Logger,
	songRepo repos.SongRepo,
	extraRepo repos.ExtraSongInfoRepo,
	shoutRepo repos.ShoutRepo,
	mbClient musicbrainz.Client,
	mbEnabled bool,
) SongService {
	return &songService{
		db:        db,
		log:       log.With("service", "SongService"),
		songRepo:  songRepo,
		extraRepo: extraRepo,
		shoutRepo: shoutRepo,
		mbClient:  mbClient,
		mbEnabled: mbEnabled && mbClient != nil,
	}
}

func (ss *songService) LookupOrRegister(ctx context.Context, req SongLookupRequest) (*types.Song, error) {
	modifiers := game.ParseFromTitle(req.Title)

	if req.MBID != "" {
		song, err := ss.songRepo.FindByMBID(ctx, nil, req.MBID, modifiers)
		if err == nil {
			ss.log.Info("Song resolved by MBID", "song_id", song.ID, "mbid", req.MBID)
			return song, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}

		song, err = ss.findOrCreate(ctx, req, modifiers)
		if err != nil {
			return nil, err
		}
		if mErr := ss.addMetadataByMBID(ctx, song, req.MBID, req.ReleaseMBID); mErr != nil {
			ss.log.Warn("MBID metadata attach failed", "song_id", song.ID, "mbid", req.MBID, "error", mErr)
		}
		return song, nil
	}

	return ss.findOrCreate(ctx, req, modifiers)
}

func (ss *songService) findOrCreate(ctx context.Context, req SongLookupRequest, modifiers []string) (*types.Song, error) {
	title := game.RemoveFromTitle(req.Title)

	song, err := ss.songRepo.FindByIdentity(ctx, nil, title, req.Artist, modifiers)
	if err == nil {
		return song, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	created, err := ss.songRepo.Create(ctx, nil, &types.Song{
		Title:     title,
		Artist:    req.Artist,
		Modifiers: modifiers,
	})
	if err != nil {
		if repos.IsUniqueViolation(err) {
			return ss.songRepo.FindByIdentity(ctx, nil, title, req.Artist, modifiers)
		}
		return nil, err
	}
	ss.log.Info("Song registered", "song_id", created.ID, "title", title, "artist", req.Artist, "modifiers", modifiers)
	return created, nil
}

// addMetadataByMBID attaches a client-supplied recording MBID to a
// song, filling the canonical metadata from MusicBrainz when possible.
func (ss *songService) addMetadataByMBID(ctx context.Context, song *types.Song, mbid, releaseMBID string) error {
	existing, err := ss.extraRepo.GetBySongID(ctx, nil, song.ID)
	if err == nil {
		if existing.MistagLock {
			return nil
		}
		if existing.MBID == nil || *existing.MBID != mbid {
			existing.MBID = &mbid
			if releaseMBID != "" {
				existing.ReleaseMBID = &releaseMBID
			}
			return ss.extraRepo.Update(ctx, nil, existing)
		}
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	info := &types.ExtraSongInfo{SongID: song.ID, MBID: &mbid}
	if releaseMBID != "" {
		info.ReleaseMBID = &releaseMBID
	}

	if ss.mbEnabled {
		if rec, recErr := ss.mbClient.LookupRecording(ctx, mbid); recErr == nil {
			applyRecording(info, rec, releaseMBID)
		} else {
			ss.log.Warn("MusicBrainz recording lookup failed", "mbid", mbid, "error", recErr)
		}
	}

	if _, err := ss.extraRepo.Create(ctx, nil, info); err != nil {
		if repos.IsUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

func (ss *songService) AutoAddMetadata(ctx context.Context, songID int32, lengthMS int32) error {
	if !ss.mbEnabled {
		return nil
	}
	song, err := ss.songRepo.GetByID(ctx, nil, songID)
	if err != nil {
		return err
	}
	if song.ExtraInfo != nil {
		return nil
	}

	rec, err := ss.mbClient.SearchRecording(ctx, song.Artist, song.Title, lengthMS)
	if err != nil {
		return fmt.Errorf("metadata search for song %d: %w", songID, err)
	}

	info := &types.ExtraSongInfo{SongID: song.ID}
	applyRecording(info, rec, "")
	if _, err := ss.extraRepo.Create(ctx, nil, info); err != nil {
		if repos.IsUniqueViolation(err) {
			return nil
		}
		return err
	}
	ss.log.Info("Song metadata added from search", "song_id", song.ID, "mbid", rec.MBID)
	return nil
}

func applyRecording(info *types.ExtraSongInfo, rec *musicbrainz.Recording, releaseMBIDOverride string) {
	if info.MBID == nil && rec.MBID != "" {
		mbid := rec.MBID
		info.MBID = &mbid
	}
	if rec.Title != "" {
		title := rec.Title
		info.MusicBrainzTitle = &title
	}
	if rec.Artist != "" {
		artist := rec.Artist
		info.MusicBrainzArtist = &artist
	}
	if rec.LengthMS > 0 {
		length := rec.LengthMS
		info.MusicBrainzLength = &length
	}

	releaseMBID := releaseMBIDOverride
	if releaseMBID == "" {
		releaseMBID = rec.ReleaseMBID
	}
	if releaseMBID != "" {
		info.ReleaseMBID = &releaseMBID
		full, small := musicbrainz.CoverArtURLs(releaseMBID)
		info.CoverURL = &full
		info.SmallCoverURL = &small
	}
}

func (ss *songService) GetByID(ctx context.Context, id int32) (*types.Song, error) {
	return ss.songRepo.GetByID(ctx, nil, id)
}

func (ss *songService) GetShouts(ctx context.Context, songID int32) ([]types.Shout, error) {
	if _, err := ss.songRepo.GetByID(ctx, nil, songID); err != nil {
		return nil, err
	}
	return ss.shoutRepo.ListBySong(ctx, nil, songID, repos.ShoutLimit)
}
