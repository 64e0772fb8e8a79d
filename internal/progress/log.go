package progress

import (
	"go.uber.org/zap"

	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

// LogSink writes events to a zap logger. Progress goes to debug,
// warnings to warn and stage completion to info.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink that logs through logger
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit logs e
func (s *LogSink) Emit(e models.Event) {
	switch ev := e.(type) {
	case models.ProgressEvent:
		s.logger.Debug("Progress",
			zap.String("stage", string(ev.Stage)),
			zap.Uint64("dirs", ev.ProcessedDirs),
			zap.Uint64("files", ev.ProcessedFiles),
			zap.Int("queue", ev.QueueDepth),
			zap.String("path", ev.CurrentPath))
	case models.WarningEvent:
		s.logger.Warn(ev.Message,
			zap.String("stage", string(ev.Stage)),
			zap.String("kind", string(ev.Kind)),
			zap.String("path", ev.Path))
	case models.CompleteEvent:
		s.logger.Info("Stage complete",
			zap.String("stage", string(ev.Stage)),
			zap.Uint64("dirs", ev.ProcessedDirs),
			zap.Uint64("files", ev.ProcessedFiles),
			zap.Uint64("bytes", ev.TotalBytes),
			zap.Bool("cancelled", ev.Cancelled))
	}
}
