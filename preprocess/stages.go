package preprocess

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// DropColumns removes whichever of names are present and returns the ones it
// removed. Absent names are ignored, so a second call is a no-op.
func DropColumns(t *Table, names ...string) ([]string, error) {
	var present []string
	for _, name := range names {
		if t.Has(name) {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return nil, nil
	}
	if err := t.drop(present); err != nil {
		return nil, err
	}
	return present, nil
}

// ImputeRandom fills every missing cell of column with a label drawn
// uniformly from labels. Draws are taken in row order. It returns the number
// of cells filled; an absent column fills nothing.
func ImputeRandom(t *Table, column string, labels []string, rng *rand.Rand) (int, error) {
	values, missing, ok := t.Column(column)
	if !ok || len(labels) == 0 {
		return 0, nil
	}

	filled := 0
	for i := range values {
		if !missing[i] {
			continue
		}
		values[i] = labels[rng.IntN(len(labels))]
		missing[i] = false
		filled++
	}
	if filled == 0 {
		return 0, nil
	}
	return filled, t.setColumn(column, values, missing)
}

// ImputeMeanCeil fills every missing cell of column with the mean of its
// numeric cells rounded up to an integer. Cells that are present but not
// numeric are skipped by the mean and left as they are. A column with no
// numeric cells is left untouched. It returns the fill value and the number
// of cells filled.
func ImputeMeanCeil(t *Table, column string) (float64, int, error) {
	values, missing, ok := t.Column(column)
	if !ok {
		return 0, 0, nil
	}

	var nums []float64
	for i, v := range values {
		if missing[i] {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) {
			continue
		}
		nums = append(nums, f)
	}
	if len(nums) == 0 {
		return 0, 0, nil
	}

	fill := math.Ceil(stat.Mean(nums, nil))
	text := strconv.FormatFloat(fill, 'f', -1, 64)

	filled := 0
	for i := range values {
		if missing[i] {
			values[i] = text
			missing[i] = false
			filled++
		}
	}
	if filled == 0 {
		return fill, 0, nil
	}
	return fill, filled, t.setColumn(column, values, missing)
}

// Encode replaces each value of m.Column with its integer code. Values m
// does not recognize become missing and are reported as *UnmappedLabelError,
// joined into the returned error. Missing cells stay missing. An absent
// column is a no-op.
func Encode(t *Table, m LabelMap) error {
	values, missing, ok := t.Column(m.Column)
	if !ok {
		return nil
	}

	var errs []error
	for i, v := range values {
		if missing[i] {
			continue
		}
		code, err := m.Encode(v)
		if err != nil {
			errs = append(errs, &UnmappedLabelError{Column: m.Column, Row: i, Value: v})
			values[i] = ""
			missing[i] = true
			continue
		}
		values[i] = strconv.Itoa(code)
	}

	if err := t.setColumn(m.Column, values, missing); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return errors.Join(errs...)
}
