package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kdimtricp/veriframe/internal/ai"
	"github.com/kdimtricp/veriframe/internal/detection"
)

var (
	inferenceURL string
	locatorURL   string
	frameCount   int
	frameSize    int
	sessionID    string
	configPath   string
)

var rootCmd = &cobra.Command{
	Use:   "analyze-video <video-file>",
	Short: "Run deepfake analysis over frames extracted from a video file",
	Long: `Extracts evenly-spaced frames from a video with ffmpeg, scores each
through the visual classifier, rPPG and temporal-consistency pipeline,
and prints the fused verdict.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.Flags().StringVar(&inferenceURL, "inference-url", "", "visual classifier endpoint (required)")
	rootCmd.Flags().StringVar(&locatorURL, "locator-url", "", "face locator endpoint (optional)")
	rootCmd.Flags().IntVar(&frameCount, "frames", 60, "number of frames to extract")
	rootCmd.Flags().IntVar(&frameSize, "size", 512, "max frame dimension in pixels")
	rootCmd.Flags().StringVar(&sessionID, "session", "", "session id (default: random)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "detector config YAML")
	rootCmd.MarkFlagRequired("inference-url")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	cfg := detection.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = detection.Load(configPath)
		if err != nil {
			return err
		}
	}

	var locator ai.FaceLocator = ai.FullFrameLocator{}
	if locatorURL != "" {
		locator = ai.NewRemoteLocator(locatorURL)
	}
	detector := detection.NewDetector(cfg, locator, ai.NewRemoteClassifier(inferenceURL))

	extractor, err := ai.NewFrameExtractor()
	if err != nil {
		return err
	}

	fmt.Printf("Extracting %d frames from %s\n", frameCount, videoPath)
	extracted, err := extractor.ExtractFrames(videoPath, frameCount, frameSize)
	if err != nil {
		return err
	}

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	ctx := context.Background()
	bar := progressbar.Default(int64(len(extracted)), "analyzing")

	frames := make([]detection.FrameInput, len(extracted))
	for i, img := range extracted {
		frames[i] = detection.FrameInput{FrameNumber: i, Frame: img}
	}

	results := make([]float64, 0, len(frames))
	for _, in := range frames {
		in.SessionID = sessionID
		result, err := detector.AnalyzeFrame(ctx, in)
		bar.Add(1)
		if err != nil {
			if !errors.Is(err, detection.ErrNoFace) {
				log.Printf("Frame %d failed: %v", in.FrameNumber, err)
			}
			continue
		}
		results = append(results, result.CombinedScore)
	}

	avg, err := detector.Fuser().AggregateBatch(results)
	if err != nil {
		return fmt.Errorf("no frame produced a verdict: %w", err)
	}
	label, threat := detector.Fuser().Classify(avg)

	fmt.Printf("\nSession:   %s\n", sessionID)
	fmt.Printf("Frames:    %d analyzed / %d extracted\n", len(results), len(extracted))
	fmt.Printf("Avg score: %.4f\n", avg)
	fmt.Printf("Verdict:   %s (%s)\n", label, threat)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
