package adapter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

// ReportStore persists run reports.
type ReportStore interface {
	// SaveReports writes reports to path in the given format.
	SaveReports(path m.Path, format m.ReportFormat, reports []m.Report) error
	// LoadReports reads reports, picking the format from the file extension.
	LoadReports(path m.Path) ([]m.Report, error)
}

// LocalReportStore stores reports as files.
type LocalReportStore struct {
	encMode cbor.EncMode
}

// NewLocalReportStore constructs a LocalReportStore.
func NewLocalReportStore() (*LocalReportStore, error) {
	encMode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor encoder: %w", err)
	}

	return &LocalReportStore{encMode: encMode}, nil
}

// SaveReports encodes reports and writes them, creating parent directories.
func (s *LocalReportStore) SaveReports(path m.Path, format m.ReportFormat, reports []m.Report) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case m.FormatYAML:
		data, err = yaml.Marshal(reports)
	case m.FormatJSON:
		data, err = json.MarshalIndent(reports, "", "  ")
	case m.FormatCBOR:
		data, err = s.encMode.Marshal(reports)
	default:
		return fmt.Errorf("save reports: unknown format %q", format)
	}

	if err != nil {
		return fmt.Errorf("encode %s reports: %w", format, err)
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	if err := os.WriteFile(string(path), data, 0o644); err != nil {
		return fmt.Errorf("write reports %s: %w", path, err)
	}

	return nil
}

// LoadReports reads a report file written by SaveReports.
func (s *LocalReportStore) LoadReports(path m.Path) ([]m.Report, error) {
	format, err := m.ParseReportFormat(strings.TrimPrefix(filepath.Ext(string(path)), "."))
	if err != nil {
		return nil, fmt.Errorf("load reports %s: %w", path, err)
	}

	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("read reports %s: %w", path, err)
	}

	var reports []m.Report

	switch format {
	case m.FormatYAML:
		err = yaml.Unmarshal(data, &reports)
	case m.FormatJSON:
		err = json.Unmarshal(data, &reports)
	case m.FormatCBOR:
		err = cbor.Unmarshal(data, &reports)
	}

	if err != nil {
		return nil, fmt.Errorf("decode %s reports: %w", format, err)
	}

	return reports, nil
}
