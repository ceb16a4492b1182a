package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hollowpoint-games/hollowpoint/internal/engine/texture"
	"github.com/hollowpoint-games/hollowpoint/internal/logger"
)

// skin returns the override texture for a named arena surface when the skins
// directory holds one, and the procedural fallback otherwise. An override that
// exists but fails to decode is logged and ignored rather than aborting the
// load.
func skin(dir, name string, fallback *texture.Texture) *texture.Texture {
	if dir == "" {
		return fallback
	}

	tex, err := loadSkin(dir, name)
	if err != nil {
		logger.Warn("skin override rejected",
			zap.String("name", name),
			zap.Error(err),
		)
		return fallback
	}
	if tex == nil {
		return fallback
	}

	logger.Debug("skin override loaded",
		zap.String("name", name),
		zap.Int("width", tex.Width()),
		zap.Int("height", tex.Height()),
	)
	return tex
}

// loadSkin looks for <dir>/<name>.tga, then <dir>/<name>.png. A nil texture
// with a nil error means no override file exists.
func loadSkin(dir, name string) (*texture.Texture, error) {
	if data, err := os.ReadFile(filepath.Join(dir, name+".tga")); err == nil {
		tex, err := texture.DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("%s.tga: %w", name, err)
		}
		return tex, nil
	}

	data, err := os.ReadFile(filepath.Join(dir, name+".png"))
	if err != nil {
		return nil, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s.png: %w", name, err)
	}
	return texture.FromImage(img), nil
}
