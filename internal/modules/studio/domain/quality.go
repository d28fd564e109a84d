package domain

import (
	"strconv"
	"strings"
)

// ParseDropRates derives average and peak dropped-frame rates from encoder
// stderr. Lines carrying both frame= and drop= counters yield a percentage;
// lines with only drop= are taken as a percentage already.
func ParseDropRates(stderr string) (avg, peak float64) {
	var rates []float64
	for _, line := range strings.Split(stderr, "\n") {
		drop, ok := extractNumeric(line, "drop=")
		if !ok {
			continue
		}
		rate := drop
		if frame, ok := extractNumeric(line, "frame="); ok && frame > 0 {
			rate = drop / frame * 100
		}
		rates = append(rates, rate)
	}
	if len(rates) == 0 {
		return 0, 0
	}
	var sum float64
	for _, rate := range rates {
		sum += rate
		if rate > peak {
			peak = rate
		}
	}
	return sum / float64(len(rates)), peak
}

func extractNumeric(line, key string) (float64, bool) {
	index := strings.Index(line, key)
	if index < 0 {
		return 0, false
	}
	fields := strings.Fields(line[index+len(key):])
	if len(fields) == 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// AVOffsetMS is the absolute drift between the exported video and audio
// stream durations.
func AVOffsetMS(videoDurationMS, audioDurationMS int64) int64 {
	offset := videoDurationMS - audioDurationMS
	if offset < 0 {
		return -offset
	}
	return offset
}
