// Package report exports stored facts and TTM series as CSV files and PNG charts
package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/pitfacts/internal/common"
	"github.com/bobmcallan/pitfacts/internal/interfaces"
	"github.com/bobmcallan/pitfacts/internal/models"
	"github.com/bobmcallan/pitfacts/internal/services/ttm"
)

// Service implements ReportService
type Service struct {
	facts     interfaces.FactStore
	ttm       interfaces.TTMStore
	outputDir string
	logger    *common.Logger
}

// NewService creates a new report service writing under outputDir
func NewService(facts interfaces.FactStore, ttmStore interfaces.TTMStore, outputDir string, logger *common.Logger) *Service {
	return &Service{
		facts:     facts,
		ttm:       ttmStore,
		outputDir: outputDir,
		logger:    logger,
	}
}

// ExportFacts writes a ticker's facts, optionally for one field, to <TICKER>[_<field>]_facts.csv.
func (s *Service) ExportFacts(ctx context.Context, ticker, field string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	facts, err := s.facts.ListFacts(ctx, ticker, field)
	if err != nil {
		return "", fmt.Errorf("failed to list facts for %s: %w", ticker, err)
	}
	if len(facts) == 0 {
		return "", fmt.Errorf("no facts stored for %s: %w", ticker, models.ErrNotFound)
	}

	name := ticker + "_facts.csv"
	if field != "" {
		name = ticker + "_" + field + "_facts.csv"
	}

	var buf bytes.Buffer
	if err := WriteFactsCSV(&buf, facts); err != nil {
		return "", err
	}
	path, err := s.write(name, buf.Bytes())
	if err != nil {
		return "", err
	}

	s.logger.Info().Str("ticker", ticker).Int("rows", len(facts)).Str("path", path).Msg("Exported facts")
	return path, nil
}

// ExportTTM writes every TTM metric for a ticker to <TICKER>_ttm.csv.
func (s *Service) ExportTTM(ctx context.Context, ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	records, err := s.listTTM(ctx, ticker)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := WriteTTMCSV(&buf, records); err != nil {
		return "", err
	}
	path, err := s.write(ticker+"_ttm.csv", buf.Bytes())
	if err != nil {
		return "", err
	}

	s.logger.Info().Str("ticker", ticker).Int("rows", len(records)).Str("path", path).Msg("Exported TTM records")
	return path, nil
}

// ChartTTM renders a ticker's TTM series to <TICKER>_ttm.png.
func (s *Service) ChartTTM(ctx context.Context, ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	records, err := s.listTTM(ctx, ticker)
	if err != nil {
		return "", err
	}

	png, err := RenderTTMChart(ticker+" trailing twelve months", records)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ticker, err)
	}
	path, err := s.write(ticker+"_ttm.png", png)
	if err != nil {
		return "", err
	}

	s.logger.Info().Str("ticker", ticker).Int("points", len(records)).Str("path", path).Msg("Rendered TTM chart")
	return path, nil
}

func (s *Service) listTTM(ctx context.Context, ticker string) ([]models.TTMRecord, error) {
	var records []models.TTMRecord
	for _, c := range ttm.Concepts {
		rs, err := s.ttm.ListTTM(ctx, ticker, c.MetricName())
		if err != nil {
			return nil, fmt.Errorf("failed to list %s for %s: %w", c.MetricName(), ticker, err)
		}
		records = append(records, rs...)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no TTM records stored for %s: %w", ticker, models.ErrNotFound)
	}
	return records, nil
}

func (s *Service) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(s.outputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
