package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/medscan/pkg/utils/logging"
)

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("info", buf)
	gt.V(t, logger).NotNil()

	logger.Info("test message")
	gt.S(t, buf.String()).Contains("test message")
}

func TestLevelFiltering(t *testing.T) {
	testCases := []struct {
		level       string
		expectDebug bool
	}{
		{"debug", true},
		{"info", false},
		{"warn", false},
		{"WARNING", false},
		{"invalid", false}, // defaults to info
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.New(tc.level, buf)

			logger.Debug("debug message")
			if tc.expectDebug {
				gt.S(t, buf.String()).Contains("debug message")
			} else {
				gt.S(t, buf.String()).NotContains("debug message")
			}
		})
	}
}

func TestContextCarrier(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("info", buf)

	ctx := logging.With(context.Background(), logger)
	logging.From(ctx).Info("from context")
	gt.S(t, buf.String()).Contains("from context")

	gt.V(t, logging.From(context.Background())).NotNil()
}
