package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/pulse/internal/adapters/detector"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		tty      bool
		ci       string
		expected detector.OutputMode
	}{
		{name: "terminal", tty: true, expected: detector.ModeTUI},
		{name: "pipe", tty: false, expected: detector.ModeLinear},
		{name: "CI=true", tty: true, ci: "true", expected: detector.ModeLinear},
		{name: "CI=1", tty: true, ci: "1", expected: detector.ModeLinear},
		{name: "CI=false", tty: true, ci: "false", expected: detector.ModeTUI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.Detect(tt.tty, tt.ci))
		})
	}
}

func TestDetectEnvironment_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, detector.ModeLinear, detector.DetectEnvironment())
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		flag     string
		detected detector.OutputMode
		expected detector.OutputMode
	}{
		{flag: "tui", detected: detector.ModeLinear, expected: detector.ModeTUI},
		{flag: "linear", detected: detector.ModeTUI, expected: detector.ModeLinear},
		{flag: "ci", detected: detector.ModeTUI, expected: detector.ModeLinear},
		{flag: "auto", detected: detector.ModeTUI, expected: detector.ModeTUI},
		{flag: "", detected: detector.ModeLinear, expected: detector.ModeLinear},
		{flag: "bogus", detected: detector.ModeLinear, expected: detector.ModeLinear},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.ResolveMode(tt.detected, tt.flag))
		})
	}
}

func TestOutputMode_String(t *testing.T) {
	assert.Equal(t, "auto", detector.ModeAuto.String())
	assert.Equal(t, "tui", detector.ModeTUI.String())
	assert.Equal(t, "linear", detector.ModeLinear.String())
}
