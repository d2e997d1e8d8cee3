// Package logging provides the concrete logger behind the engine's
// context-carried logging interface.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/infrastructure/config"
)

var levelRank = map[string]int{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

// ConsoleLogger writes structured log lines to a writer. It implements
// common.EngineLogger.
type ConsoleLogger struct {
	out      io.Writer
	minLevel int
	jsonMode bool
}

// NewFromConfig builds a logger from the logging configuration
func NewFromConfig(cfg *config.LoggingConfig) (*ConsoleLogger, error) {
	var out io.Writer
	switch cfg.Output {
	case "stderr":
		out = os.Stderr
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
	default:
		out = os.Stdout
	}

	minLevel, ok := levelRank[strings.ToUpper(cfg.Level)]
	if !ok {
		minLevel = levelRank["INFO"]
	}

	return &ConsoleLogger{
		out:      out,
		minLevel: minLevel,
		jsonMode: cfg.Format == "json",
	}, nil
}

var _ common.EngineLogger = (*ConsoleLogger)(nil)

// Log writes one log line, dropping entries below the configured level
func (l *ConsoleLogger) Log(level, message string, metadata map[string]interface{}) {
	rank, ok := levelRank[strings.ToUpper(level)]
	if !ok {
		rank = levelRank["INFO"]
	}
	if rank < l.minLevel {
		return
	}

	now := time.Now().UTC()
	if l.jsonMode {
		entry := map[string]interface{}{
			"time":    now.Format(time.RFC3339),
			"level":   strings.ToUpper(level),
			"message": message,
		}
		for k, v := range metadata {
			entry[k] = v
		}
		line, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(l.out, "%s %s %s\n", now.Format(time.RFC3339), strings.ToUpper(level), message)
			return
		}
		fmt.Fprintln(l.out, string(line))
		return
	}

	var fields string
	if len(metadata) > 0 {
		keys := make([]string, 0, len(metadata))
		for k := range metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, metadata[k]))
		}
		fields = " " + strings.Join(parts, " ")
	}
	fmt.Fprintf(l.out, "%s %-5s %s%s\n", now.Format(time.RFC3339), strings.ToUpper(level), message, fields)
}
