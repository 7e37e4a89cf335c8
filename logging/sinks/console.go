// Package sinks contains the logging.Sink implementations wired by the
// server: a human-readable console sink, a newline-delimited JSON sink, and
// an in-memory sink for tests.
package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/vide-coded/voxel-warfare/logging"
)

// Console renders events through a leveled charmbracelet logger.
type Console struct {
	logger *charmlog.Logger
}

// NewConsole constructs a console sink writing to w.
func NewConsole(w io.Writer, cfg logging.ConsoleConfig) *Console {
	level := charmlog.InfoLevel
	if cfg.Verbose {
		level = charmlog.DebugLevel
	}
	logger := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	if !cfg.UseColor {
		logger.SetColorProfile(termenv.Ascii)
	}
	return &Console{logger: logger}
}

// Write satisfies logging.Sink.
func (s *Console) Write(event logging.Event) error {
	if s.logger == nil {
		return nil
	}
	keyvals := []any{"tick", event.Tick, "actor", formatEntity(event.Actor)}
	if targets := formatTargets(event.Targets); targets != "" {
		keyvals = append(keyvals, "targets", targets)
	}
	if event.Payload != nil {
		keyvals = append(keyvals, "payload", formatPayload(event.Payload))
	}
	for k, v := range event.Extra {
		keyvals = append(keyvals, k, v)
	}

	msg := string(event.Type)
	switch event.Severity {
	case logging.SeverityDebug:
		s.logger.Debug(msg, keyvals...)
	case logging.SeverityWarn:
		s.logger.Warn(msg, keyvals...)
	case logging.SeverityError:
		s.logger.Error(msg, keyvals...)
	default:
		s.logger.Info(msg, keyvals...)
	}
	return nil
}

// Close satisfies logging.Sink.
func (s *Console) Close(context.Context) error {
	return nil
}

func formatEntity(ref logging.EntityRef) string {
	switch {
	case ref.ID == "" && ref.Kind == "":
		return "-"
	case ref.ID == "":
		return string(ref.Kind)
	case ref.Kind == "":
		return ref.ID
	}
	return fmt.Sprintf("%s:%s", ref.Kind, ref.ID)
}

func formatTargets(targets []logging.EntityRef) string {
	if len(targets) == 0 {
		return ""
	}
	parts := make([]string, 0, len(targets))
	for _, target := range targets {
		parts = append(parts, formatEntity(target))
	}
	return strings.Join(parts, ",")
}

func formatPayload(payload any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	return string(data)
}
