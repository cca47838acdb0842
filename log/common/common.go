package common

import (
	"github.com/rs/zerolog"
)

type LogLevel uint8

// NoLevel means it should be ignored. There is deliberately no Fatal or
// Panic level: a client-side library embedded in a caller's process has
// no business terminating or panicking that process on the caller's
// behalf, so the level set stops at Error.
const (
	NoLevel LogLevel = iota
	TraceLevel
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	maxLogLevel
)

const LogLevelCount = int(maxLogLevel)

var levelMapping = []zerolog.Level{
	NoLevel:    zerolog.NoLevel,
	TraceLevel: zerolog.TraceLevel,
	InfoLevel:  zerolog.InfoLevel,
	DebugLevel: zerolog.DebugLevel,
	WarnLevel:  zerolog.WarnLevel,
	ErrorLevel: zerolog.ErrorLevel,
}

func ToZerologLevel(level LogLevel) zerolog.Level {
	return levelMapping[level]
}
