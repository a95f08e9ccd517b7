package vis

import (
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

// SurfaceSize holds the render-surface dimensions
type SurfaceSize struct {
	Width  int
	Height int
}

// NewSurfaceSize detects the primary display resolution at startup so the
// rendered frames match the desktop
func NewSurfaceSize(logger *zap.Logger) SurfaceSize {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		logger.Warn("No active displays detected, falling back to 1920x1080")
		return SurfaceSize{Width: 1920, Height: 1080}
	}

	// Use primary monitor (index 0)
	bounds := screenshot.GetDisplayBounds(0)
	size := SurfaceSize{Width: bounds.Dx(), Height: bounds.Dy()}

	logger.Info("Render surface sized to primary display",
		zap.Int("width", size.Width),
		zap.Int("height", size.Height))

	return size
}
