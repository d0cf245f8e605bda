package render

import (
	"context"
	"fmt"

	"clipcart/internal/fileutil"
)

// EncodeRequest describes one clip to render.
type EncodeRequest struct {
	InputPath    string
	OutputPath   string
	Presentation Presentation
}

// EncodeResult reports the rendered artifact.
type EncodeResult struct {
	OutputPath      string
	DurationSeconds float64
}

// Encoder renders a raw clip into its channel-ready form.
type Encoder interface {
	Encode(ctx context.Context, req EncodeRequest) (EncodeResult, error)
}

// PassthroughEncoder copies the input untouched. It keeps the pipeline
// runnable while a real encoder is unavailable and backs rehearsal runs.
type PassthroughEncoder struct{}

func (PassthroughEncoder) Encode(ctx context.Context, req EncodeRequest) (EncodeResult, error) {
	if err := ctx.Err(); err != nil {
		return EncodeResult{}, err
	}
	if err := fileutil.CopyFile(req.InputPath, req.OutputPath); err != nil {
		return EncodeResult{}, fmt.Errorf("copy clip: %w", err)
	}
	return EncodeResult{OutputPath: req.OutputPath}, nil
}
