package decode

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"photogrid/internal/logging"
	"photogrid/internal/metrics"
)

// thumbQuality is the JPEG quality for persisted video thumbnails.
const thumbQuality = 85

// probeDuration asks ffprobe for the video duration in seconds.
// Best-effort; returns 0 when probing fails.
func probeDuration(src string) float64 {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		src,
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		logging.Debug("ffprobe failed for %s: %v", src, err)
		return 0
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0
	}
	return dur
}

// seekOffset picks the capture position: half a second in, or 10% of
// the duration for very short clips.
func seekOffset(duration float64) float64 {
	if duration <= 0 {
		return 0.5
	}
	offset := duration * 0.1
	if offset > 0.5 {
		offset = 0.5
	}
	return offset
}

// CaptureFrame extracts a single frame from a video file using ffmpeg,
// at min(0.5s, 10% of duration). A failed seeked capture is retried
// from the first frame before giving up.
func CaptureFrame(src string) (image.Image, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	src = strings.TrimPrefix(src, "file://")
	offset := seekOffset(probeDuration(src))
	start := time.Now()

	run := func(args ...string) (*bytes.Buffer, error) {
		cmd := exec.Command("ffmpeg", args...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("ffmpeg failed: %v, stderr: %s", err, stderr.String())
		}
		if stdout.Len() == 0 {
			return nil, fmt.Errorf("ffmpeg produced no output for %s", src)
		}
		return &stdout, nil
	}

	out, err := run(
		"-ss", fmt.Sprintf("%.3f", offset),
		"-i", src,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	if err != nil {
		logging.Debug("seeked capture failed for %s: %v, retrying from start", src, err)
		out, err = run(
			"-i", src,
			"-vframes", "1",
			"-f", "image2pipe",
			"-vcodec", "png",
			"-",
		)
		if err != nil {
			return nil, err
		}
	}

	img, _, err := image.Decode(out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}

	metrics.DecodeDuration.WithLabelValues("ffmpeg").Observe(time.Since(start).Seconds())
	return img, nil
}

// EncodeThumb encodes a captured frame as a JPEG blob for the
// persistent store.
func EncodeThumb(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
