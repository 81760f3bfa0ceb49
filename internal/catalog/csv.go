package catalog

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// CSVLoadArgs control how CSV files are parsed.
type CSVLoadArgs struct {
	Delimiter   string            `yaml:"delimiter"`
	NAValues    []string          `yaml:"na_values"`
	DetectTypes *bool             `yaml:"detect_types"`
	Types       map[string]string `yaml:"types"`
	// AsSeries loads a single column file as a series.Series.
	AsSeries bool `yaml:"as_series"`
}

type CSVSaveArgs struct {
	Delimiter string `yaml:"delimiter"`
}

var defaultNAValues = []string{"NA", "NaN", "<nil>", ""}

// CSVDataset reads one or more CSV files into a dataframe. Path may be a glob,
// in which case all matching files are concatenated in lexical order and the
// dataset is read only.
type CSVDataset struct {
	Path     string
	LoadArgs CSVLoadArgs
	SaveArgs CSVSaveArgs
}

func NewCSVDataset(path string, loadArgs CSVLoadArgs, saveArgs CSVSaveArgs) *CSVDataset {
	return &CSVDataset{Path: path, LoadArgs: loadArgs, SaveArgs: saveArgs}
}

func (d *CSVDataset) Load() (any, error) {
	files, err := d.files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files match %s", ErrEmptyDataset, d.Path)
	}

	opts, err := d.loadOptions()
	if err != nil {
		return nil, err
	}

	var df dataframe.DataFrame
	for i, file := range files {
		part, err := readCSV(file, opts)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			df = part
			continue
		}
		df = df.RBind(part)
		if df.Err != nil {
			return nil, fmt.Errorf("concatenate %s: %w", file, df.Err)
		}
	}

	if d.LoadArgs.AsSeries {
		if df.Ncol() != 1 {
			return nil, fmt.Errorf("load %s as series: expected 1 column, got %d", d.Path, df.Ncol())
		}
		return df.Col(df.Names()[0]), nil
	}
	return df, nil
}

func readCSV(path string, opts []dataframe.LoadOption) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(bufio.NewReader(f), opts...)
	if df.Err != nil {
		return df, fmt.Errorf("read %s: %w", path, df.Err)
	}
	return df, nil
}

func (d *CSVDataset) loadOptions() ([]dataframe.LoadOption, error) {
	naValues := append([]string{}, defaultNAValues...)
	naValues = append(naValues, d.LoadArgs.NAValues...)
	opts := []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.NaNValues(naValues),
	}

	if d.LoadArgs.Delimiter != "" {
		delim, err := delimiterRune(d.LoadArgs.Delimiter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, dataframe.WithDelimiter(delim))
	}
	if d.LoadArgs.DetectTypes != nil {
		opts = append(opts, dataframe.DetectTypes(*d.LoadArgs.DetectTypes))
	}
	if len(d.LoadArgs.Types) > 0 {
		types := make(map[string]series.Type, len(d.LoadArgs.Types))
		for col, name := range d.LoadArgs.Types {
			t, err := ParseColumnType(name)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			types[col] = t
		}
		opts = append(opts, dataframe.WithTypes(types))
	}
	return opts, nil
}

// ParseColumnType maps a type name to a gota series type.
func ParseColumnType(name string) (series.Type, error) {
	switch strings.ToLower(name) {
	case "string", "str":
		return series.String, nil
	case "int", "int64":
		return series.Int, nil
	case "float", "float64":
		return series.Float, nil
	case "bool":
		return series.Bool, nil
	default:
		return "", fmt.Errorf("unsupported column type %q", name)
	}
}

func delimiterRune(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r[0], nil
}

// Save writes a dataframe, or a series as a single column frame.
func (d *CSVDataset) Save(data any) error {
	if isGlob(d.Path) {
		return fmt.Errorf("cannot save to glob path %s", d.Path)
	}

	var df dataframe.DataFrame
	switch v := data.(type) {
	case dataframe.DataFrame:
		df = v
	case series.Series:
		df = dataframe.New(v)
	default:
		return fmt.Errorf("csv dataset %s cannot save %T", d.Path, data)
	}
	if df.Err != nil {
		return df.Err
	}

	if err := os.MkdirAll(filepath.Dir(d.Path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(d.Path)
	if err != nil {
		return err
	}

	if err := d.write(f, df); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", d.Path, err)
	}
	return f.Close()
}

func (d *CSVDataset) write(w io.Writer, df dataframe.DataFrame) error {
	if d.SaveArgs.Delimiter == "" {
		return df.WriteCSV(w)
	}
	delim, err := delimiterRune(d.SaveArgs.Delimiter)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = delim
	return cw.WriteAll(df.Records())
}

func (d *CSVDataset) Exists() bool {
	files, err := d.files()
	return err == nil && len(files) > 0
}

func (d *CSVDataset) Describe() map[string]any {
	return map[string]any{"type": TypeCSV, "filepath": d.Path}
}

func (d *CSVDataset) files() ([]string, error) {
	return FindLocalFiles([]string{d.Path})
}
