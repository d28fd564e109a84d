package domain

import "math"

// CursorSample is one point of the cursor track recorded alongside the
// capture. Times are relative to recording start.
type CursorSample struct {
	TMS int64   `json:"tMs"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

const fallbackStepMS = 120

// FallbackCursorTrack produces a predictable synthetic track for platforms
// where live cursor sampling is unavailable, so the downstream motion
// pipeline always has input.
func FallbackCursorTrack(durationMS int64) []CursorSample {
	var samples []CursorSample
	for ts := int64(0); ts <= durationMS; ts += fallbackStepMS {
		t := float64(ts)
		samples = append(samples, CursorSample{
			TMS: ts,
			X:   200 + math.Sin(t/25)*180 + t/60,
			Y:   160 + math.Cos(t/35)*120,
		})
	}
	return samples
}

// NormalizeCursorTrack clamps samples to the recording's duration and
// extends the final position to the end so interpolation never runs dry.
func NormalizeCursorTrack(samples []CursorSample, durationMS int64) []CursorSample {
	if len(samples) == 0 {
		return FallbackCursorTrack(durationMS)
	}
	out := make([]CursorSample, 0, len(samples)+1)
	for _, sample := range samples {
		if sample.TMS > durationMS {
			sample.TMS = durationMS
		}
		out = append(out, sample)
	}
	if last := out[len(out)-1]; last.TMS < durationMS {
		out = append(out, CursorSample{TMS: durationMS, X: last.X, Y: last.Y})
	}
	return out
}
