package store

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joescharf/tomato/internal/models"
)

// Format selects the on-disk layout used when writing the state file.
type Format string

const (
	// FormatLegacy is five bare lines: stage, status, count, deadline, remaining seconds.
	FormatLegacy Format = "legacy"
	// FormatYAML is a versioned YAML document carrying the same five fields.
	FormatYAML Format = "yaml"
)

const (
	legacyFieldCount = 5
	legacyTimeLayout = "2006-01-02 15:04:05.000000"
	// Parsing accepts a missing or shorter fractional part after the seconds.
	legacyParseLayout = "2006-01-02 15:04:05"

	stateVersion = 1
)

// ParseFormat converts a configured format name.
func ParseFormat(v string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(v))) {
	case "", FormatLegacy:
		return FormatLegacy, nil
	case FormatYAML:
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown state format %q (want legacy or yaml)", v)
}

// Encode renders a session in the given format.
func Encode(s *models.Session, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return encodeYAML(s)
	case FormatLegacy, "":
		return encodeLegacy(s), nil
	}
	return nil, fmt.Errorf("unknown state format %q", format)
}

// Decode parses a state file, detecting the format from its content.
func Decode(data []byte) (*models.Session, error) {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("version:")) {
		return decodeYAML(data)
	}
	return decodeLegacy(data)
}

func encodeLegacy(s *models.Session) []byte {
	return fmt.Appendf(nil, "%s\n%s\n%d\n%s\n%s",
		s.Stage,
		s.Status,
		s.Count,
		s.Deadline.In(time.Local).Format(legacyTimeLayout),
		formatSeconds(s.Remaining),
	)
}

func decodeLegacy(data []byte) (*models.Session, error) {
	lines := strings.Split(strings.TrimRight(string(data), "\r\n"), "\n")
	switch {
	case len(lines) < legacyFieldCount:
		return nil, fmt.Errorf("truncated state: got %d fields, want %d", len(lines), legacyFieldCount)
	case len(lines) > legacyFieldCount:
		return nil, fmt.Errorf("trailing data: got %d fields, want %d", len(lines), legacyFieldCount)
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	stage, err := models.ParseStage(lines[0])
	if err != nil {
		return nil, fmt.Errorf("field 1: %w", err)
	}
	status, err := models.ParseStatus(lines[1])
	if err != nil {
		return nil, fmt.Errorf("field 2: %w", err)
	}
	count, err := strconv.Atoi(lines[2])
	if err != nil {
		return nil, fmt.Errorf("field 3: invalid session count: %w", err)
	}
	deadline, err := parseLegacyTime(lines[3])
	if err != nil {
		return nil, fmt.Errorf("field 4: invalid deadline: %w", err)
	}
	remaining, err := parseSeconds(lines[4])
	if err != nil {
		return nil, fmt.Errorf("field 5: invalid remaining seconds: %w", err)
	}

	s := &models.Session{
		Stage:     stage,
		Status:    status,
		Count:     count,
		Deadline:  deadline,
		Remaining: remaining,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseLegacyTime(v string) (time.Time, error) {
	v = strings.Replace(v, "T", " ", 1)
	return time.ParseInLocation(legacyParseLayout, v, time.Local)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func parseSeconds(v string) (time.Duration, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(f * float64(time.Second)), nil
}

type yamlState struct {
	Version          int     `yaml:"version"`
	Stage            string  `yaml:"stage"`
	Status           string  `yaml:"status"`
	Count            int     `yaml:"count"`
	Deadline         string  `yaml:"deadline"`
	RemainingSeconds float64 `yaml:"remaining_seconds"`
}

func encodeYAML(s *models.Session) ([]byte, error) {
	doc := yamlState{
		Version:          stateVersion,
		Stage:            string(s.Stage),
		Status:           string(s.Status),
		Count:            s.Count,
		Deadline:         s.Deadline.Format(time.RFC3339Nano),
		RemainingSeconds: s.Remaining.Seconds(),
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal state yaml: %w", err)
	}
	return out, nil
}

func decodeYAML(data []byte) (*models.Session, error) {
	var doc yamlState
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse state yaml: %w", err)
	}
	if doc.Version != stateVersion {
		return nil, fmt.Errorf("unsupported state version %d", doc.Version)
	}

	stage, err := models.ParseStage(doc.Stage)
	if err != nil {
		return nil, fmt.Errorf("field stage: %w", err)
	}
	status, err := models.ParseStatus(doc.Status)
	if err != nil {
		return nil, fmt.Errorf("field status: %w", err)
	}
	deadline, err := time.Parse(time.RFC3339Nano, doc.Deadline)
	if err != nil {
		return nil, fmt.Errorf("field deadline: invalid deadline: %w", err)
	}

	s := &models.Session{
		Stage:     stage,
		Status:    status,
		Count:     doc.Count,
		Deadline:  deadline,
		Remaining: time.Duration(doc.RemainingSeconds * float64(time.Second)),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
