/*
Package logconfig holds the logrus presets shared by the relayer binaries
and tests.
*/
package logconfig

import (
	logger "github.com/sirupsen/logrus"
)

// ConfigDebugLogger is for local runs and tests: colored terminal output,
// caller tagged, debug level.
func ConfigDebugLogger() {
	logger.SetReportCaller(true)
	logger.SetLevel(logger.DebugLevel)
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:            true,
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
}

// ConfigInfoLogger keeps the terminal format but drops the caller noise.
func ConfigInfoLogger() {
	logger.SetReportCaller(false)
	logger.SetLevel(logger.InfoLevel)
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:            true,
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
}

// ConfigProductionLogger emits timestamped info-level entries for log
// collectors.
func ConfigProductionLogger() {
	logger.SetLevel(logger.InfoLevel)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}
