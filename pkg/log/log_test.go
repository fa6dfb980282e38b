package log

import (
	"context"
	"fmt"
	"testing"
)

func TestTestLoggerCapture(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("training started", OperationKey, OperationFit)
	testLogger.Warn("score below threshold", AccuracyKey, 0.61)
	testLogger.Error("fit failed", "err", fmt.Errorf("test error"))

	if buffer.String() == "" {
		t.Fatal("Expected log output, got empty string")
	}

	for _, msg := range []string{"debug message", "training started", "score below threshold", "fit failed"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("message %q not found in output", msg)
		}
	}

	if !testLogger.ContainsField(OperationKey, OperationFit) {
		t.Errorf("field %s=%s not found", OperationKey, OperationFit)
	}
}

func TestTestLoggerLevelFiltering(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelWarn)

	testLogger.Debug("should be dropped")
	testLogger.Info("should be dropped too")
	testLogger.Warn("should appear")

	if testLogger.ContainsMessage("should be dropped") {
		t.Error("debug message should have been filtered")
	}
	if !testLogger.ContainsMessage("should appear") {
		t.Error("warn message missing")
	}

	if testLogger.Enabled(context.Background(), LevelInfo) {
		t.Error("Enabled(LevelInfo) should be false at LevelWarn")
	}
	if !testLogger.Enabled(context.Background(), LevelError) {
		t.Error("Enabled(LevelError) should be true at LevelWarn")
	}
}

func TestTestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	child := testLogger.With(ModelNameKey, "DecisionTreeClassifier")
	child.Info("fit complete", SamplesKey, 105)

	tl := child.(*TestLogger)
	if !tl.ContainsField(ModelNameKey, "DecisionTreeClassifier") {
		t.Error("pre-populated field missing from child logger output")
	}
	if !tl.ContainsField(SamplesKey, float64(105)) {
		t.Error("call-site field missing from child logger output")
	}
}

func TestProviderComponentName(t *testing.T) {
	provider, _ := NewTestLoggerProvider(LevelInfo)

	logger := provider.GetLoggerWithName("modelselection")
	logger.Info("grid search started", FoldsKey, 5)

	tl := logger.(*TestLogger)
	if !tl.ContainsField(ComponentKey, "modelselection") {
		t.Error("component name not attached by provider")
	}
}

func TestToLogLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
	}
	for name, want := range cases {
		if got := ToLogLevel(name); got != want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", name, got, want)
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid level name")
		}
	}()
	ToLogLevel("verbose")
}
