// Log file output with automatic rotation
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"io"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	// Filename is the path to the log file.
	Filename string

	// MaxSize is the maximum size in megabytes before rotation.
	// Default is 10 MB.
	MaxSize int

	// MaxBackups is the maximum number of old log files to retain.
	// Default is 5.
	MaxBackups int

	// Compress determines if rotated files should be gzipped.
	Compress bool
}

// NewRotatingWriter returns an io.WriteCloser that writes to the configured
// file and rotates it by size.
func NewRotatingWriter(config RotationConfig) io.WriteCloser {
	maxSize := config.MaxSize
	if maxSize <= 0 {
		maxSize = 10
	}
	maxBackups := config.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 5
	}
	return &lumberjack.Logger{
		Filename:   config.Filename,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   config.Compress,
	}
}
