package ai

import (
	"math"
	"testing"
)

func TestParseBannerDuration(t *testing.T) {
	tests := []struct {
		name    string
		banner  string
		want    float64
		wantErr bool
	}{
		{
			name:   "Typical banner",
			banner: "Input #0, mov,mp4\n  Duration: 00:01:30.50, start: 0.000000, bitrate: 1205 kb/s",
			want:   90.5,
		},
		{
			name:   "Hours present",
			banner: "  Duration: 01:02:03.00, start: 0.000000",
			want:   3723.0,
		},
		{
			name:    "No duration field",
			banner:  "some unrelated ffmpeg output",
			wantErr: true,
		},
		{
			name:    "Malformed field",
			banner:  "  Duration: N/A, start: 0.000000",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBannerDuration(tt.banner)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected an error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected %v seconds, got %v", tt.want, got)
			}
		})
	}
}
