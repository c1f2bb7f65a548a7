package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"

	"github.com/guildhallapp/guildhall-server/internal/errors"
)

const (
	// minAvatarDimension rejects images too small to render as an avatar.
	minAvatarDimension = 32
	// maxAvatarDimension rejects absurdly large images before re-encoding.
	maxAvatarDimension = 8192
	// jpegQuality for re-encoded avatars. Avatars render small; 85 is
	// visually lossless at those sizes.
	jpegQuality = 85
)

// ProcessedAvatar is the result of validating and re-encoding an upload.
type ProcessedAvatar struct {
	// Data is the JPEG-encoded image ready for storage.
	Data []byte
	// BlurHash is the placeholder hash clients render while loading.
	BlurHash string
	// Width and Height of the decoded image.
	Width  int
	Height int
}

// Processor validates uploaded avatar images and prepares them for storage.
type Processor struct {
	maxBytes int
	logger   *slog.Logger
}

// NewProcessor creates a new Processor instance.
// maxBytes caps the accepted upload size.
func NewProcessor(maxBytes int, logger *slog.Logger) *Processor {
	return &Processor{
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Process decodes an uploaded image, validates its dimensions, re-encodes it
// as JPEG, and computes its BlurHash. Accepted input formats: JPEG, PNG, GIF,
// and WebP. Returns a validation error for anything a client could fix.
func (p *Processor) Process(data []byte) (*ProcessedAvatar, error) {
	if len(data) == 0 {
		return nil, errors.Validation("avatar image is empty")
	}
	if len(data) > p.maxBytes {
		return nil, errors.Validationf("avatar image exceeds %d bytes", p.maxBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Validation("unsupported or corrupt image").WithCause(err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < minAvatarDimension || height < minAvatarDimension {
		return nil, errors.Validationf("avatar must be at least %dx%d pixels", minAvatarDimension, minAvatarDimension)
	}
	if width > maxAvatarDimension || height > maxAvatarDimension {
		return nil, errors.Validationf("avatar must not exceed %dx%d pixels", maxAvatarDimension, maxAvatarDimension)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}

	hash, err := ComputeBlurHash(img)
	if err != nil {
		// BlurHash is a nicety; an avatar without one still works.
		p.logger.Warn("failed to compute avatar blurhash", "error", err)
		hash = ""
	}

	p.logger.Debug("processed avatar upload",
		"format", format,
		"width", width,
		"height", height,
		"bytes_in", len(data),
		"bytes_out", buf.Len(),
	)

	return &ProcessedAvatar{
		Data:     buf.Bytes(),
		BlurHash: hash,
		Width:    width,
		Height:   height,
	}, nil
}
