//go:build !linux
// +build !linux

package mpris

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/auroraviz/aurora/internal/sdk"
)

// Loader stub for non-Linux platforms
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a stub loader that fails on non-Linux platforms
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load returns an error indicating MPRIS playback is not supported here
func (l *Loader) Load(ctx context.Context) error {
	return fmt.Errorf("MPRIS playback devices are only supported on Linux systems")
}

// NewDevice always fails on non-Linux platforms
func (l *Loader) NewDevice(opts sdk.DeviceOptions) (sdk.Device, error) {
	return nil, fmt.Errorf("MPRIS playback devices are only supported on Linux systems")
}
