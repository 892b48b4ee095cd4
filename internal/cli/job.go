package cli

import (
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/erpimport/internal/core"
	"github.com/JonMunkholm/erpimport/internal/sheet"
)

// Job is a reusable import description read from YAML:
//
//	kind: partners
//	sheet: Clients
//	delimiter: ";"
//	columns:
//	  Raison sociale: name
//	  Pays: country_name
//	types:
//	  stock_qty: float
//	options:
//	  create_bank: false
type Job struct {
	Kind      string                `yaml:"kind"`
	Sheet     string                `yaml:"sheet"`
	Delimiter string                `yaml:"delimiter"`
	Columns   map[string]string     `yaml:"columns"`
	Types     map[string]sheet.Type `yaml:"types"`
	Options   core.OptionOverrides  `yaml:"options"`
}

// LoadJob reads and checks a job file.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parse job file %s: %w", path, err)
	}
	if err := job.validate(); err != nil {
		return nil, fmt.Errorf("job file %s: %w", path, err)
	}
	return &job, nil
}

func (j *Job) validate() error {
	if j.Kind != "" {
		if _, ok := core.Get(j.Kind); !ok {
			return fmt.Errorf("%w: %s", core.ErrUnknownKind, j.Kind)
		}
	}
	if utf8.RuneCountInString(j.Delimiter) > 1 {
		return fmt.Errorf("delimiter %q must be a single character", j.Delimiter)
	}
	for field, t := range j.Types {
		switch t {
		case sheet.String, sheet.Bool, sheet.Int, sheet.Float:
		default:
			return fmt.Errorf("unknown type %q for %s", t, field)
		}
	}
	return nil
}

// SheetOptions returns the spreadsheet reading options of the job.
func (j *Job) SheetOptions() sheet.Options {
	opts := sheet.Options{Sheet: j.Sheet, Columns: j.Columns, Types: j.Types}
	if j.Delimiter != "" {
		opts.Delimiter, _ = utf8.DecodeRuneInString(j.Delimiter)
	}
	return opts
}
