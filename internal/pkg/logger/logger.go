package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

func init() {
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()
	InfoLogger.SetOutput(os.Stdout)
	ErrorLogger.SetOutput(os.Stderr)
}

// Init routes both loggers to a rotating file in addition to the console.
// Safe to skip in tests; the loggers default to plain stdout/stderr.
func Init(logFile string) {
	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}

	formatter := &logrus.TextFormatter{FullTimestamp: true}

	InfoLogger.SetFormatter(formatter)
	InfoLogger.SetOutput(io.MultiWriter(os.Stdout, rotator))

	ErrorLogger.SetFormatter(formatter)
	ErrorLogger.SetLevel(logrus.ErrorLevel)
	ErrorLogger.SetOutput(io.MultiWriter(os.Stderr, rotator))
}
