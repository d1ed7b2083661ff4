// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logger

import (
	"strings"
	"testing"
)

func TestLoggerWritesToWriter(t *testing.T) {
	var buf strings.Builder
	log := NewLoggerWithWriters(false, &buf)

	log.Info("tree opened")
	log.Sync()

	if !strings.Contains(buf.String(), "tree opened") {
		t.Errorf("output = %q", buf.String())
	}
	if !strings.Contains(buf.String(), "INFO") {
		t.Errorf("output missing level: %q", buf.String())
	}
}

func TestDebugLevelGating(t *testing.T) {
	var quiet strings.Builder
	NewLoggerWithWriters(false, &quiet).Debug("hidden")
	if strings.Contains(quiet.String(), "hidden") {
		t.Error("debug message logged at info level")
	}

	var verbose strings.Builder
	NewLoggerWithWriters(true, &verbose).Debug("visible")
	if !strings.Contains(verbose.String(), "visible") {
		t.Error("debug message not logged at debug level")
	}
}
