package ai

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os/exec"
	"strconv"
	"strings"
)

// FrameExtractor samples still frames out of a video file with ffmpeg
// so stored uploads can be replayed through the scoring pipeline.
type FrameExtractor struct {
	ffmpegPath  string
	ffprobePath string
}

func NewFrameExtractor() (*FrameExtractor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	// ffprobe is optional; duration falls back to the ffmpeg banner.
	ffprobePath, _ := exec.LookPath("ffprobe")

	return &FrameExtractor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}, nil
}

// ExtractFrames decodes up to count frames sampled evenly across the
// video, each scaled to fit within size pixels. Frames that fail to
// extract are skipped; it is an error only when none succeed.
func (fe *FrameExtractor) ExtractFrames(videoPath string, count, size int) ([]image.Image, error) {
	duration, err := fe.videoDuration(videoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe video duration: %w", err)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("video has no playable duration: %s", videoPath)
	}

	frames := make([]image.Image, 0, count)
	step := duration / float64(count+1)

	for i := 1; i <= count; i++ {
		offset := step * float64(i)
		frame, err := fe.frameAt(videoPath, offset, size)
		if err != nil {
			log.Printf("[EXTRACT] Skipping frame at %.2fs: %v", offset, err)
			continue
		}
		frames = append(frames, frame)
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("no frame could be extracted from %s (%d attempts)", videoPath, count)
	}
	return frames, nil
}

// frameAt seeks to the offset and decodes a single scaled frame piped
// through stdout as JPEG, leaving nothing on disk.
func (fe *FrameExtractor) frameAt(videoPath string, offset float64, size int) (image.Image, error) {
	scale := fmt.Sprintf("scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease", size, size)
	cmd := exec.Command(fe.ffmpegPath,
		"-ss", strconv.FormatFloat(offset, 'f', 2, 64),
		"-i", videoPath,
		"-vframes", "1",
		"-vf", scale,
		"-q:v", "2",
		"-f", "mjpeg",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w", err)
	}

	frame, err := jpeg.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode extracted frame: %w", err)
	}
	return frame, nil
}

func (fe *FrameExtractor) videoDuration(videoPath string) (float64, error) {
	if fe.ffprobePath != "" {
		cmd := exec.Command(fe.ffprobePath,
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			videoPath)

		var stdout bytes.Buffer
		cmd.Stdout = &stdout
		if err := cmd.Run(); err == nil {
			if d, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64); err == nil && d > 0 {
				return d, nil
			}
		}
	}

	cmd := exec.Command(fe.ffmpegPath, "-i", videoPath, "-f", "null", "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run()

	return parseBannerDuration(stderr.String())
}

// parseBannerDuration reads the "Duration: HH:MM:SS.ss," field ffmpeg
// prints on stderr for any input it can open.
func parseBannerDuration(banner string) (float64, error) {
	const marker = "Duration: "
	start := strings.Index(banner, marker)
	if start == -1 {
		return 0, fmt.Errorf("no duration in ffmpeg output")
	}
	field := banner[start+len(marker):]
	if end := strings.Index(field, ","); end != -1 {
		field = field[:end]
	}

	parts := strings.Split(field, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed duration %q", field)
	}

	var total float64
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed duration %q: %w", field, err)
		}
		total = total*60 + v
	}
	return total, nil
}
