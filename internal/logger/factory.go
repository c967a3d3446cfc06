package logger

import (
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// WriterFactory creates writers based on format
type WriterFactory struct {
	strategies    map[LogFormat]WriterStrategy
	consoleOutput io.Writer
}

// NewWriterFactory creates a new writer factory writing console output to stderr
func NewWriterFactory() *WriterFactory {
	return &WriterFactory{
		strategies: map[LogFormat]WriterStrategy{
			FormatJSON:    &JSONWriterStrategy{},
			FormatConsole: &ConsoleWriterStrategy{NoColor: false},
			FormatText:    &TextWriterStrategy{},
		},
		consoleOutput: os.Stderr,
	}
}

// CreateConsoleWriter creates a console writer
func (wf *WriterFactory) CreateConsoleWriter(format LogFormat) io.Writer {
	strategy, exists := wf.strategies[format]
	if !exists {
		strategy = &ConsoleWriterStrategy{NoColor: false}
	}
	return strategy.CreateWriter(wf.consoleOutput)
}

// CreateFileWriter creates a file writer with rotation and directory organization
func (wf *WriterFactory) CreateFileWriter(config LoggerConfig) io.Writer {
	finalPath := wf.buildLogPath(config)

	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		finalPath = config.FilePath
	}

	lumberjackLogger := &lumberjack.Logger{
		Filename:   finalPath,
		MaxSize:    config.MaxSizeMB,
		LocalTime:  true,
		MaxBackups: config.MaxBackups,
	}

	// color codes never go to files
	if config.Format == FormatConsole {
		return (&ConsoleWriterStrategy{NoColor: true}).CreateWriter(lumberjackLogger)
	}

	strategy, exists := wf.strategies[config.Format]
	if !exists {
		strategy = &JSONWriterStrategy{}
	}
	return strategy.CreateWriter(lumberjackLogger)
}

// buildLogPath places per-session logs under <dir>/sessions/<session id>/<file>
func (wf *WriterFactory) buildLogPath(config LoggerConfig) string {
	if !config.UseSubdirs || config.SessionID == "" {
		return config.FilePath
	}

	baseDir := filepath.Dir(config.FilePath)
	fileName := filepath.Base(config.FilePath)
	return filepath.Join(baseDir, "sessions", config.SessionID, fileName)
}
