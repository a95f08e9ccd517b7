//go:build windows
// +build windows

package display

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/auroraviz/aurora/internal/domain"
)

const frameFilename = "current_frame.jpg"

// WindowsDisplay writes frames to disk on Windows systems
type WindowsDisplay struct {
	logger    *zap.Logger
	outputDir string
	warnOnce  sync.Once
}

// NewDisplay creates a new platform frame publisher (Windows implementation)
func NewDisplay(logger *zap.Logger, cfg domain.Config) *WindowsDisplay {
	logger.Info("Windows frame publisher initialized")
	return &WindowsDisplay{logger: logger, outputDir: cfg.OutputDir()}
}

// Publish writes the frame to the output directory
func (d *WindowsDisplay) Publish(ctx context.Context, frame image.Image) error {
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

	// TODO: Implement desktop push on Windows
	// Options:
	// 1. Use syscall to call SystemParametersInfoW
	// 2. Use PowerShell: Set-ItemProperty on HKCU:\Control Panel\Desktop
	d.warnOnce.Do(func() {
		d.logger.Warn("Desktop push not implemented on Windows; frames written to disk only",
			zap.String("outputDir", d.outputDir))
	})

	return nil
}
