package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// DefaultFile is the run log written when file output is enabled.
	DefaultFile = "portkeeper.log"
	// TimestampFormat matches the run-log line stamp.
	TimestampFormat = "2006-01-02 15:04:05"
)

// Config describes log output. Zero values mean console text output.
type Config struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePath   string `yaml:"file_path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Setup configures the process-wide logrus logger. Any verbosity above zero
// forces debug level, since raw switch output is logged there too.
func Setup(cfg Config, verbosity int) (*logrus.Logger, error) {
	log := logrus.StandardLogger()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbosity > 0 {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:   TimestampFormat,
			DisableHTMLEscape: true,
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: TimestampFormat,
		})
	}

	writers, err := outputs(cfg)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(writers...))
	return log, nil
}

func outputs(cfg Config) ([]io.Writer, error) {
	output := cfg.Output
	if output == "" {
		output = "console"
	}

	var writers []io.Writer
	if output == "console" || output == "both" {
		writers = append(writers, os.Stderr)
	}
	if output == "file" || output == "both" {
		path := cfg.FilePath
		if path == "" {
			path = DefaultFile
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}
	return writers, nil
}
