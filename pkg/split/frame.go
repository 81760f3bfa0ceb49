package split

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/ibis-project/kedro-ibis-tutorial/pkg/core"
)

// FrameKeys renders the natural key of every row of df from keyColumns.
func FrameKeys(df dataframe.DataFrame, keyColumns []string) ([]string, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidInput, df.Err)
	}
	if df.Nrow() == 0 {
		return nil, fmt.Errorf("%w: no rows to partition", core.ErrInvalidInput)
	}
	if len(keyColumns) == 0 {
		return nil, fmt.Errorf("%w: no key columns", core.ErrInvalidInput)
	}

	names := df.Names()
	columns := make([]series.Series, len(keyColumns))
	for i, name := range keyColumns {
		if !slices.Contains(names, name) {
			return nil, fmt.Errorf("%w: key column %q not found", core.ErrInvalidInput, name)
		}
		columns[i] = df.Col(name)
	}

	keys := make([]string, df.Nrow())
	fields := make([]string, len(columns))
	for row := range keys {
		for i, col := range columns {
			elem := col.Elem(row)
			if elem.IsNA() {
				return nil, fmt.Errorf("%w: row %d: key column %q is null", core.ErrInvalidInput, row, keyColumns[i])
			}
			fields[i] = keyField(elem, col.Type())
		}
		key, err := NaturalKey(fields...)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		keys[row] = key
	}
	return keys, nil
}

func keyField(elem series.Element, t series.Type) string {
	if t == series.Float {
		return strconv.FormatFloat(elem.Float(), 'f', -1, 64)
	}
	return elem.String()
}

// Frame splits df by the natural key built from keyColumns. The results are
// new frames with the same columns as df; row order is preserved.
func Frame(df dataframe.DataFrame, keyColumns []string, opts Options) (train, test dataframe.DataFrame, err error) {
	keys, err := FrameKeys(df, keyColumns)
	if err != nil {
		return train, test, err
	}
	isTrain, err := Assign(keys, opts)
	if err != nil {
		return train, test, err
	}

	trainIdx := make([]int, 0, len(keys))
	testIdx := make([]int, 0, len(keys)/2)
	for i, ok := range isTrain {
		if ok {
			trainIdx = append(trainIdx, i)
		} else {
			testIdx = append(testIdx, i)
		}
	}

	train = df.Subset(trainIdx)
	if train.Err != nil {
		return train, test, fmt.Errorf("subset train rows: %w", train.Err)
	}
	test = df.Subset(testIdx)
	if test.Err != nil {
		return train, test, fmt.Errorf("subset test rows: %w", test.Err)
	}
	return train, test, nil
}
