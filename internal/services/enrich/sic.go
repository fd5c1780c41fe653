// Package enrich maps SEC filer metadata to sector and industry tags.
package enrich

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/pitfacts/internal/models"
)

// SICRange assigns a sector to an inclusive band of SIC codes.
type SICRange struct {
	Start         int    `yaml:"start"`
	End           int    `yaml:"end"`
	Sector        string `yaml:"sector"`
	IndustryGroup string `yaml:"industry_group"`
}

type sicFile struct {
	Ranges []SICRange `yaml:"ranges"`
}

var knownSectors = map[string]bool{
	models.SectorTechnology:     true,
	models.SectorFinance:        true,
	models.SectorRetail:         true,
	models.SectorHealthcare:     true,
	models.SectorEnergy:         true,
	models.SectorMining:         true,
	models.SectorIndustrial:     true,
	models.SectorTelecom:        true,
	models.SectorUtilities:      true,
	models.SectorRealEstate:     true,
	models.SectorTransportation: true,
	models.SectorUnknown:        true,
}

// DefaultSICRanges returns the built-in SIC to sector table. Narrow bands override the
// broad division they sit in.
func DefaultSICRanges() []SICRange {
	return []SICRange{
		{1000, 1499, models.SectorMining, "Mining"},
		{1311, 1389, models.SectorEnergy, "Oil & Gas Extraction"},
		{1500, 1799, models.SectorIndustrial, "Construction"},
		{2000, 3999, models.SectorIndustrial, "Manufacturing"},
		{2830, 2836, models.SectorHealthcare, "Pharmaceuticals"},
		{2900, 2999, models.SectorEnergy, "Petroleum Refining"},
		{3570, 3579, models.SectorTechnology, "Computer Equipment"},
		{3600, 3699, models.SectorTechnology, "Electronic Equipment"},
		{3670, 3679, models.SectorTechnology, "Semiconductors"},
		{3840, 3851, models.SectorHealthcare, "Medical Devices"},
		{4000, 4799, models.SectorTransportation, "Transportation"},
		{4800, 4899, models.SectorTelecom, "Communications"},
		{4900, 4999, models.SectorUtilities, "Electric, Gas & Sanitary Services"},
		{5000, 5199, models.SectorIndustrial, "Wholesale Trade"},
		{5200, 5999, models.SectorRetail, "Retail Trade"},
		{6000, 6499, models.SectorFinance, "Finance & Insurance"},
		{6500, 6599, models.SectorRealEstate, "Real Estate"},
		{6798, 6798, models.SectorRealEstate, "Real Estate Investment Trusts"},
		{7000, 8999, models.SectorIndustrial, "Services"},
		{7370, 7379, models.SectorTechnology, "Computer Services & Software"},
		{8000, 8099, models.SectorHealthcare, "Health Services"},
	}
}

// LoadSICRanges reads a YAML file of the form {ranges: [{start, end, sector, industry_group}]}.
// An empty path returns the defaults.
func LoadSICRanges(path string) ([]SICRange, error) {
	if path == "" {
		return DefaultSICRanges(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SIC ranges %s: %w", path, err)
	}
	var f sicFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse SIC ranges %s: %w", path, err)
	}
	if len(f.Ranges) == 0 {
		return nil, fmt.Errorf("SIC ranges %s: no ranges defined", path)
	}
	return f.Ranges, nil
}

// SICMapper resolves SIC codes against a range table.
type SICMapper struct {
	ranges []SICRange
}

// NewSICMapper validates ranges and returns a mapper.
func NewSICMapper(ranges []SICRange) (*SICMapper, error) {
	for i, r := range ranges {
		if r.Start > r.End {
			return nil, fmt.Errorf("SIC range %d: start %d after end %d", i, r.Start, r.End)
		}
		if !knownSectors[r.Sector] {
			return nil, fmt.Errorf("SIC range %d-%d: unknown sector %q", r.Start, r.End, r.Sector)
		}
	}
	return &SICMapper{ranges: append([]SICRange(nil), ranges...)}, nil
}

// Lookup returns (sector, industry_group) for the narrowest range containing sic.
// Codes that are unparseable or fall outside every range return ("Unknown", "").
func (m *SICMapper) Lookup(sic string) (string, string) {
	code, err := strconv.Atoi(strings.TrimSpace(sic))
	if err != nil {
		return models.SectorUnknown, ""
	}

	var best *SICRange
	for i := range m.ranges {
		r := &m.ranges[i]
		if code < r.Start || code > r.End {
			continue
		}
		if best == nil || r.End-r.Start < best.End-best.Start {
			best = r
		}
	}
	if best == nil {
		return models.SectorUnknown, ""
	}
	return best.Sector, best.IndustryGroup
}

// Company builds an enriched profile from a submissions payload. Industry is the SEC's
// SIC description when present, otherwise the range's industry group.
func (m *SICMapper) Company(ticker string, sub *models.Submission) models.Company {
	c := models.Company{Ticker: ticker, Sector: models.SectorUnknown}
	if sub == nil {
		return c
	}
	sector, group := m.Lookup(sub.SIC)
	c.CIK = sub.CIK.Padded()
	c.EntityName = sub.Name
	c.SICCode = sub.SIC
	c.Sector = sector
	c.Industry = sub.SICDescription
	if c.Industry == "" {
		c.Industry = group
	}
	return c
}
