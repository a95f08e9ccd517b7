//go:build linux
// +build linux

// Package display publishes rendered frames to the desktop: each frame is
// written to the output directory and pushed through a detected
// display command (animated-wallpaper style).
package display

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/auroraviz/aurora/internal/domain"
)

const frameFilename = "current_frame.jpg"

// DisplayCommand represents a detected frame-display command
type DisplayCommand struct {
	Name    string
	Binary  string
	Args    []string // %s will be replaced with the frame path
}

var (
	// Ordered list of display commands to try (highest priority first)
	displayCommands = []DisplayCommand{
		// Hyprland - swww (recommended; animates transitions)
		{Name: "swww", Binary: "swww", Args: []string{"img", "%s"}},
		// Hyprland - hyprpaper
		{Name: "hyprpaper", Binary: "hyprctl", Args: []string{"hyprpaper", "wallpaper", ",%s"}},
		// swaybg (Sway/Wayland)
		{Name: "swaybg", Binary: "swaybg", Args: []string{"-i", "%s", "-m", "fill"}},
		// GNOME (dark theme)
		{Name: "gnome", Binary: "gsettings", Args: []string{"set", "org.gnome.desktop.background", "picture-uri-dark", "file://%s"}},
		// Generic X11 - feh
		{Name: "feh", Binary: "feh", Args: []string{"--bg-fill", "%s"}},
		// Generic X11 - nitrogen
		{Name: "nitrogen", Binary: "nitrogen", Args: []string{"--set-zoom-fill", "%s"}},
	}
)

// LinuxDisplay pushes frames to the desktop on Linux systems
type LinuxDisplay struct {
	logger    *zap.Logger
	outputDir string
	command   DisplayCommand
}

// NewDisplay creates the platform frame publisher. When no display
// command is available, frames are still written to the output directory.
func NewDisplay(logger *zap.Logger, cfg domain.Config) *LinuxDisplay {
	cmd := detectCommand(logger)
	if cmd.Binary == "" {
		logger.Warn("No display command found; frames will only be written to disk",
			zap.String("outputDir", cfg.OutputDir()))
	} else {
		logger.Info("Display command detected",
			zap.String("name", cmd.Name),
			zap.String("binary", cmd.Binary))
	}

	return &LinuxDisplay{
		logger:    logger,
		outputDir: cfg.OutputDir(),
		command:   cmd,
	}
}

// detectCommand analyzes the environment to choose the best display command
func detectCommand(logger *zap.Logger) DisplayCommand {
	desktop := os.Getenv("XDG_CURRENT_DESKTOP")
	session := os.Getenv("XDG_SESSION_TYPE")
	wayland := os.Getenv("WAYLAND_DISPLAY")
	hyprland := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")

	logger.Debug("Detecting display command",
		zap.String("desktop", desktop),
		zap.String("session", session),
		zap.String("wayland", wayland),
		zap.String("hyprland", hyprland))

	if hyprland != "" {
		for _, cmd := range displayCommands {
			if (cmd.Name == "swww" || cmd.Name == "hyprpaper") && commandExists(cmd.Binary) {
				return cmd
			}
		}
	}

	if strings.Contains(strings.ToLower(desktop), "gnome") {
		for _, cmd := range displayCommands {
			if cmd.Name == "gnome" && commandExists(cmd.Binary) {
				return cmd
			}
		}
	}

	if wayland != "" || session == "wayland" {
		for _, cmd := range displayCommands {
			if (cmd.Name == "swww" || cmd.Name == "swaybg") && commandExists(cmd.Binary) {
				return cmd
			}
		}
	}

	// Fallback: try all commands in order
	for _, cmd := range displayCommands {
		if commandExists(cmd.Binary) {
			logger.Info("Using fallback display command", zap.String("name", cmd.Name))
			return cmd
		}
	}

	return DisplayCommand{}
}

// commandExists checks if a binary exists in PATH
func commandExists(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

// Publish writes the frame to disk and pushes it to the desktop
func (d *LinuxDisplay) Publish(ctx context.Context, frame image.Image) error {
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

	if d.command.Binary == "" {
		return nil
	}

	args := make([]string, len(d.command.Args))
	for i, arg := range d.command.Args {
		args[i] = strings.ReplaceAll(arg, "%s", framePath)
	}

	cmd := exec.CommandContext(ctx, d.command.Binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to display frame with %s: %w (output: %s)",
			d.command.Name, err, string(output))
	}

	d.logger.Debug("Frame displayed",
		zap.String("command", d.command.Name),
		zap.String("path", framePath))

	return nil
}
