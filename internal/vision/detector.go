package vision

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"photo-exchange-bot/internal/config"

	pigo "github.com/esimov/pigo/core"
	"github.com/rs/zerolog/log"
)

// PigoDetector finds frontal faces with a pigo cascade
type PigoDetector struct {
	classifier *pigo.Pigo
	cfg        config.VisionConfig
}

// NewPigoDetector loads the cascade named in cfg, downloading it from
// cfg.CascadeURL when the file is missing
func NewPigoDetector(ctx context.Context, cfg config.VisionConfig) (*PigoDetector, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	cascade, err := LoadCascade(ctx, client, cfg.CascadePath, cfg.CascadeURL)
	if err != nil {
		return nil, err
	}

	classifier, err := unpack(cascade)
	if err != nil {
		return nil, err
	}

	log.Info().Str("cascade", cfg.CascadePath).Msg("Face detector loaded")
	return &PigoDetector{classifier: classifier, cfg: cfg}, nil
}

// unpack parses a cascade. pigo indexes the packet without bounds checks,
// so a truncated file panics instead of returning an error.
func unpack(cascade []byte) (classifier *pigo.Pigo, err error) {
	defer func() {
		if r := recover(); r != nil {
			classifier, err = nil, fmt.Errorf("failed to unpack cascade: malformed data: %v", r)
		}
	}()

	classifier, err = pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade: %w", err)
	}
	return classifier, nil
}

// HasFace reports whether at least one detection clears the quality threshold
func (d *PigoDetector) HasFace(ctx context.Context, data []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	img, _, err := Decode(data)
	if err != nil {
		return false, err
	}

	cols, rows := img.Bounds().Dx(), img.Bounds().Dy()
	params := pigo.CascadeParams{
		MinSize:     d.cfg.MinSize,
		MaxSize:     min(d.cfg.MaxSize, max(cols, rows)),
		ShiftFactor: d.cfg.ShiftFactor,
		ScaleFactor: d.cfg.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, d.cfg.IoUThreshold)

	best := float32(0)
	for _, det := range dets {
		best = max(best, det.Q)
		if det.Q > d.cfg.QualityThreshold {
			log.Debug().Int("detections", len(dets)).Float32("quality", det.Q).Msg("Face detected")
			return true, nil
		}
	}

	log.Debug().Int("detections", len(dets)).Float32("best_quality", best).Msg("No face above threshold")
	return false, nil
}
