package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrProbeUnavailable is returned when no ffprobe binary can be found.
var ErrProbeUnavailable = errors.New("ffprobe not available")

// FFProbe reads media durations with the ffprobe CLI.
type FFProbe struct {
	binary string
}

// NewFFProbe resolves binary on PATH. An empty binary means "ffprobe".
func NewFFProbe(binary string) *FFProbe {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	return &FFProbe{binary: binary}
}

func (p *FFProbe) Duration(ctx context.Context, path string) (float64, error) {
	binary, err := exec.LookPath(p.binary)
	if err != nil {
		return 0, ErrProbeUnavailable
	}

	var stdout, stderr bytes.Buffer
	//nolint:gosec // path is a server side temp file, never client input
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	return parseDuration(stdout.String())
}

func parseDuration(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "N/A" {
		return 0, nil
	}

	seconds, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", trimmed, err)
	}
	if seconds < 0 {
		return 0, nil
	}
	return seconds, nil
}
