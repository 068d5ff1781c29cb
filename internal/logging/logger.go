package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is usable before InitLogger is called; it discards everything.
var Logger = zap.NewNop().Sugar()

// InitLogger initializes the logger.
func InitLogger(level zapcore.LevelEnabler) {
	logger, err := zap.NewDevelopment(zap.IncreaseLevel(level))
	if err != nil {
		panic(err)
	}
	Logger = logger.Sugar()
}

// CheckError logs an error if it is not nil.
func CheckError(err error) {
	if err != nil {
		Logger.Error(err)
	}
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger.Sync()
}
