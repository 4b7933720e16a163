package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratioSampler lets through numerator out of every denominator calls.
// A zero ratio lets everything through.
type ratioSampler struct {
	ratio atomic.Uint64 // numerator<<32 | denominator
	calls atomic.Uint64
}

func newRatioSampler(numerator, denominator int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(numerator, denominator)
	return s
}

// Set replaces the ratio and restarts the count.
func (s *ratioSampler) Set(numerator, denominator int) {
	if numerator <= 0 || denominator <= 0 {
		numerator, denominator = 0, 0
	}
	numerator = min(numerator, denominator)
	s.ratio.Store(uint64(uint32(numerator))<<32 | uint64(uint32(denominator)))
	s.calls.Store(0)
}

// Allow reports whether the current call passes.
func (s *ratioSampler) Allow() bool {
	r := s.ratio.Load()
	num, den := r>>32, r&0xffffffff
	if num == 0 || den == 0 {
		return true
	}
	n := s.calls.Add(1) - 1
	return n%den < num
}

// parseRatioSpec accepts "n/d" or "d" (meaning 1/d). Invalid input yields 0/0.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if numStr, denStr, ok := strings.Cut(spec, "/"); ok {
		num, err1 := strconv.Atoi(strings.TrimSpace(numStr))
		den, err2 := strconv.Atoi(strings.TrimSpace(denStr))
		if err1 != nil || err2 != nil {
			return 0, 0
		}
		return num, den
	}
	v, err := strconv.Atoi(spec)
	if err != nil || v <= 0 {
		return 0, 0
	}
	return 1, v
}
