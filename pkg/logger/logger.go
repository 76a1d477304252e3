package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Logger is the process-wide logger used by the SDK packages.
	Logger = newLogger(logrus.WarnLevel, os.Stderr)
	// currentLogFile is the file the logger writes to, if any.
	currentLogFile string
	logMu          sync.Mutex
)

// Config controls logger output.
type Config struct {
	Level      string // debug, info, warn, error
	OutputFile string // optional; empty means stderr only
	MaxSize    int    // MB before rotation
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

const timestampFormat = "06-01-02 15:04:05"

func newLogger(level logrus.Level, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
	})
	return l
}

// Init replaces the global logger according to config.
// An unknown level falls back to warn.
func Init(config Config) error {
	logMu.Lock()
	defer logMu.Unlock()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.WarnLevel
	}

	writers := []io.Writer{os.Stderr}
	logFile := ""
	if config.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0o755); err != nil {
			return err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   config.OutputFile,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		})
		logFile = config.OutputFile
	}

	Logger = newLogger(level, io.MultiWriter(writers...))
	currentLogFile = logFile
	return nil
}

// InitDefault initializes logging with info level and a rotating file under logs/.
func InitDefault() error {
	return Init(Config{
		Level:      "info",
		OutputFile: "logs/bullet.log",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	})
}

// SetOutput redirects the global logger, mostly for tests and TUIs.
func SetOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	Logger.SetOutput(w)
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return WithField("component", name)
}

func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	Logger.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	Logger.Errorf(format, args...)
}

// WithField adds a field to the log context.
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithFields adds several fields to the log context.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

// GetCurrentLogFile returns the active log file path, or "" when logging to stderr only.
func GetCurrentLogFile() string {
	logMu.Lock()
	defer logMu.Unlock()
	return currentLogFile
}
