package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/rgehrsitz/isrmx/internal/calculation"
	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed tables/mx_2024_monthly.yaml
var reference2024 []byte

// DefaultYear is the fiscal year of the embedded reference tables.
const DefaultYear = 2024

// amount decodes a YAML scalar into an exact decimal. The literal
// "unbounded" marks the open end of the final row.
type amount struct {
	decimal.Decimal
}

func (a *amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar amount", node.Line)
	}
	v := strings.TrimSpace(node.Value)
	if strings.EqualFold(v, "unbounded") {
		a.Decimal = domain.Unbounded
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q", node.Line, node.Value)
	}
	a.Decimal = d
	return nil
}

type isrRowFile struct {
	LowerLimit   amount `yaml:"lower_limit"`
	UpperLimit   amount `yaml:"upper_limit"`
	FixedQuota   amount `yaml:"fixed_quota"`
	MarginalRate amount `yaml:"marginal_rate"`
}

type subsidyRowFile struct {
	LowerLimit amount `yaml:"lower_limit"`
	UpperLimit amount `yaml:"upper_limit"`
	Subsidy    amount `yaml:"subsidy"`
}

type contributionFile struct {
	Rate                 amount `yaml:"rate"`
	MaxContributableBase amount `yaml:"max_contributable_base"`
}

// tablesFile mirrors the on-disk layout of a fiscal table file.
type tablesFile struct {
	Year         int              `yaml:"year"`
	Jurisdiction string           `yaml:"jurisdiction"`
	Period       string           `yaml:"period"`
	ISR          []isrRowFile     `yaml:"isr"`
	Subsidy      []subsidyRowFile `yaml:"employment_subsidy"`
	IMSS         contributionFile `yaml:"imss"`
}

func (f tablesFile) toDomain() domain.FiscalTables {
	ft := domain.FiscalTables{
		Year:         f.Year,
		Jurisdiction: f.Jurisdiction,
		Period:       f.Period,
		Contribution: domain.ContributionRule{
			Rate:                 f.IMSS.Rate.Decimal,
			MaxContributableBase: f.IMSS.MaxContributableBase.Decimal,
		},
	}
	for _, r := range f.ISR {
		ft.ISR = append(ft.ISR, domain.BracketRow{
			LowerLimit:   r.LowerLimit.Decimal,
			UpperLimit:   r.UpperLimit.Decimal,
			FixedQuota:   r.FixedQuota.Decimal,
			MarginalRate: r.MarginalRate.Decimal,
		})
	}
	for _, r := range f.Subsidy {
		ft.Subsidy = append(ft.Subsidy, domain.SubsidyRow{
			LowerLimit: r.LowerLimit.Decimal,
			UpperLimit: r.UpperLimit.Decimal,
			Subsidy:    r.Subsidy.Decimal,
		})
	}
	return ft
}

// TablesParser loads fiscal tables from YAML.
type TablesParser struct{}

// NewTablesParser creates a new tables parser
func NewTablesParser() *TablesParser {
	return &TablesParser{}
}

// LoadDefault returns the embedded 2024 monthly reference tables.
func (tp *TablesParser) LoadDefault() (*calculation.Tables, error) {
	return tp.LoadFromBytes(reference2024)
}

// LoadFromFile loads and validates fiscal tables from a YAML file.
func (tp *TablesParser) LoadFromFile(filename string) (*calculation.Tables, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	tables, err := tp.LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return tables, nil
}

// LoadFromBytes parses and validates fiscal tables. Structural problems in
// the rows are reported as domain.ErrMalformedTable.
func (tp *TablesParser) LoadFromBytes(data []byte) (*calculation.Tables, error) {
	var file tablesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if file.Year <= 0 {
		return nil, fmt.Errorf("%w: fiscal year is required", domain.ErrMalformedTable)
	}
	tables, err := calculation.NewTables(file.toDomain())
	if err != nil {
		return nil, fmt.Errorf("tables validation failed: %w", err)
	}
	return tables, nil
}

// Load picks the file when a path is given, otherwise the embedded tables.
func (tp *TablesParser) Load(path string) (*calculation.Tables, error) {
	if path == "" {
		return tp.LoadDefault()
	}
	return tp.LoadFromFile(path)
}

// ReferenceTablesYAML returns the embedded reference file, for `isrmx table --format yaml`.
func ReferenceTablesYAML() []byte {
	return append([]byte(nil), reference2024...)
}
