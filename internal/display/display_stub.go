//go:build !linux && !windows
// +build !linux,!windows

package display

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/auroraviz/aurora/internal/domain"
)

const frameFilename = "current_frame.jpg"

// StubDisplay is a placeholder for unsupported platforms (macOS, BSD, etc.)
type StubDisplay struct {
	logger    *zap.Logger
	outputDir string
}

// NewDisplay creates a stub frame publisher for unsupported platforms
func NewDisplay(logger *zap.Logger, cfg domain.Config) *StubDisplay {
	logger.Warn("Desktop push is not yet implemented for this platform; frames written to disk only")
	return &StubDisplay{logger: logger, outputDir: cfg.OutputDir()}
}

// Publish writes the frame to the output directory
func (d *StubDisplay) Publish(ctx context.Context, frame image.Image) error {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, frame, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	if err := os.MkdirAll(d.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	framePath := filepath.Join(d.outputDir, frameFilename)
	if err := os.WriteFile(framePath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write frame file: %w", err)
	}

	return nil
}
