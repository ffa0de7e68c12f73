package excel

import (
	"encoding/json"
	"os"

	"github.com/orestischaral/water-temp-analysis/internal/errors"
)

// SourceConfig describes one temperature logger export. Column indices
// are 0-based positions within the sheet.
type SourceConfig struct {
	Location  string `json:"location"`
	Series    string `json:"series"`
	ExcelFile string `json:"excel_file"`
	SheetName string `json:"sheet_name"`
	DtCol     int    `json:"dt_col"`
	TempCol   int    `json:"temp_col"`

	// Some exports carry a light sensor column. It is accepted for
	// config compatibility but not ingested; only temperature is
	// analyzed.
	LuxCol *int `json:"lux_col,omitempty"`
}

// ShipsConfig describes the port authority schedule workbook. The
// schedule layout is fixed: ship name, ETA, ETD in consecutive columns.
type ShipsConfig struct {
	File    string `json:"ships_file"`
	Sheet   string `json:"ships_sheet"`
	NameCol int    `json:"name_col"`
	ETACol  int    `json:"eta_col"`
	ETDCol  int    `json:"etd_col"`
}

// DataSourcesConfig is the on-disk layout of data_sources_config.json.
type DataSourcesConfig struct {
	Sources []SourceConfig `json:"sources"`
	Ships   ShipsConfig    `json:"ships"`
}

// DefaultShipsConfig returns the standard schedule sheet layout.
func DefaultShipsConfig() ShipsConfig {
	return ShipsConfig{
		Sheet:   "schedule",
		NameCol: 1,
		ETACol:  2,
		ETDCol:  3,
	}
}

// LoadDataSourcesConfig reads and validates the data sources file.
func LoadDataSourcesConfig(path string) (*DataSourcesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read data sources config %s", path)
	}

	cfg := &DataSourcesConfig{Ships: DefaultShipsConfig()}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse data sources config %s", path)
	}

	if len(cfg.Sources) == 0 {
		return nil, errors.ConfigInvalid("data sources config lists no sources")
	}
	for i, src := range cfg.Sources {
		if src.Location == "" {
			return nil, errors.ConfigInvalid("source entry missing location")
		}
		if src.ExcelFile == "" {
			return nil, errors.ConfigInvalid("source entry missing excel_file for " + src.Location)
		}
		if src.SheetName == "" {
			cfg.Sources[i].SheetName = "Sheet1"
		}
		if src.DtCol < 0 || src.TempCol < 0 {
			return nil, errors.ConfigInvalid("column indices must be non-negative for " + src.Location)
		}
	}
	return cfg, nil
}
