package constants

import "os"

// PPQ is the tick resolution of every exported file.
const PPQ = 480

const DefaultTempo = 120.0

const DefaultExportFile = "melody.mid"

func GetMidiPort() string {
	return os.Getenv("KEYTUNE_MIDI_PORT")
}

func GetServeAddr() string {
	addr := os.Getenv("KEYTUNE_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

func GetSentryDSN() string {
	return os.Getenv("SENTRY_DSN")
}

func GetLogLevel() string {
	level := os.Getenv("KEYTUNE_LOG_LEVEL")
	if level != "" {
		return level
	}
	return "info"
}
