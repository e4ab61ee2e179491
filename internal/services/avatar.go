package services

import (
	"fmt"
	"hash/fnv"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/wavebreaker/wavebreaker/internal/logger"
)

// AvatarService renders fallback avatars for players whose Steam
// profile has no usable avatar. The image is an initial on a colored
// disc, written into the media directory and served under /media.
type AvatarService interface {
	GenerateFallbackAvatar(username string, playerID int32) (string, error)
}

type avatarService struct {
	log      *logger.Logger
	mediaDir string
	fontFace font.Face
	palette  []color.NRGBA
}

const avatarSize = 256

func NewAvatarService(log *logger.Logger, mediaDir string) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	avatarDir := filepath.Join(mediaDir, "avatars")
	if err := os.MkdirAll(avatarDir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}

	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse avatar font: %w", err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{Size: avatarSize * 0.52})

	return &avatarService{
		log:      serviceLog,
		mediaDir: mediaDir,
		fontFace: face,
		palette: []color.NRGBA{
			{R: 0x2f, G: 0x6f, B: 0xed, A: 0xff},
			{R: 0xd9, G: 0x48, B: 0x5f, A: 0xff},
			{R: 0x2a, G: 0x9d, B: 0x8f, A: 0xff},
			{R: 0xe7, G: 0x8a, B: 0x2e, A: 0xff},
			{R: 0x7b, G: 0x4f, B: 0xc7, A: 0xff},
			{R: 0x4d, G: 0x7c, B: 0x0f, A: 0xff},
		},
	}, nil
}

// GenerateFallbackAvatar writes the PNG and returns its path relative
// to the media root ("avatars/<id>.png").
func (as *avatarService) GenerateFallbackAvatar(username string, playerID int32) (string, error) {
	bg := as.palette[colorIndex(username, len(as.palette))]

	dc := gg.NewContext(avatarSize, avatarSize)
	dc.SetColor(bg)
	dc.Clear()

	initial := "?"
	for _, r := range strings.TrimSpace(username) {
		initial = strings.ToUpper(string(r))
		break
	}

	dc.SetFontFace(as.fontFace)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(initial, avatarSize/2, avatarSize/2, 0.5, 0.5)

	rel := filepath.Join("avatars", fmt.Sprintf("%d.png", playerID))
	out := filepath.Join(as.mediaDir, rel)
	if err := dc.SavePNG(out); err != nil {
		return "", fmt.Errorf("save avatar png: %w", err)
	}

	as.log.Debug("Generated fallback avatar", "player_id", playerID, "path", out)
	return filepath.ToSlash(rel), nil
}

func colorIndex(seed string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return int(h.Sum32() % uint32(n))
}
