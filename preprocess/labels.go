package preprocess

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnmappedLabel is wrapped by every error returned for a value outside a
// LabelMap.
var ErrUnmappedLabel = errors.New("unmapped label")

// UnmappedLabelError records one cell whose value has no code. Row is the
// zero-based data row.
type UnmappedLabelError struct {
	Column string
	Row    int
	Value  string
}

func (e *UnmappedLabelError) Error() string {
	return fmt.Sprintf("column %q row %d: %v: %q", e.Column, e.Row, ErrUnmappedLabel, e.Value)
}

func (e *UnmappedLabelError) Unwrap() error { return ErrUnmappedLabel }

// LabelMap is a fixed label to integer code mapping for one column.
type LabelMap struct {
	Column string
	Codes  map[string]int

	// Normalize, when set, is applied to a cell before lookup.
	Normalize func(string) string
}

// Encode returns the code for value, or an error wrapping ErrUnmappedLabel.
func (m LabelMap) Encode(value string) (int, error) {
	key := value
	if m.Normalize != nil {
		key = m.Normalize(value)
	}
	if code, ok := m.Codes[key]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnmappedLabel, value)
}

// StringToBinary converts the tokens "true" and "false" (case-insensitive,
// leading/trailing whitespace ignored) into 1 and 0. Numeric 1 and 0, in any
// decimal form ("1", "1.0", "0.00"), map the same way.
// Any other value returns an error.
func StringToBinary(val string) (int, error) {
	return OnlineClassesMap.Encode(val)
}

func normalizeBool(val string) string {
	s := strings.TrimSpace(strings.ToLower(val))
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		switch f {
		case 1:
			return "true"
		case 0:
			return "false"
		}
	}
	return s
}

/* Recognized columns ------------------------------------------------------ */

const (
	ColStudentID         = "StudentID"
	ColName              = "Name"
	ColGender            = "Gender"
	ColStudyHours        = "Study Hours"
	ColAttendancePct     = "Attendance (%)"
	ColParentalSupport   = "ParentalSupport"
	ColOnlineClasses     = "Online Classes Taken"
	ColAttendanceRate    = "AttendanceRate"
	ColStudyHoursPerWeek = "StudyHoursPerWeek"
	ColPreviousGrade     = "PreviousGrade"
	ColFinalGrade        = "FinalGrade"
)

// DroppedColumns are removed before any imputation or encoding.
//
// Gender, Study Hours and Attendance (%) are also named by the numeric and
// encoding stages; since they are dropped first those later steps never see
// them. Output depends on this, so keep both lists as they are.
var DroppedColumns = []string{ColStudentID, ColName, ColGender, ColStudyHours, ColAttendancePct}

// NumericColumns are filled with the ceiling of their mean.
var NumericColumns = []string{
	ColAttendanceRate,
	ColStudyHoursPerWeek,
	ColPreviousGrade,
	ColFinalGrade,
	ColStudyHours,
	ColAttendancePct,
}

// Label sets drawn from when a categorical cell is missing.
var (
	ParentalSupportLabels = []string{"Low", "Medium", "High"}
	OnlineClassesLabels   = []string{"true", "false"}
)

var (
	ParentalSupportMap = LabelMap{
		Column: ColParentalSupport,
		Codes:  map[string]int{"Low": 0, "Medium": 1, "High": 2},
	}
	OnlineClassesMap = LabelMap{
		Column:    ColOnlineClasses,
		Codes:     map[string]int{"false": 0, "true": 1},
		Normalize: normalizeBool,
	}
	GenderMap = LabelMap{
		Column: ColGender,
		Codes:  map[string]int{"Male": 0, "Female": 1},
	}
)

// EncodedColumns lists the label maps in the order they are applied.
var EncodedColumns = []LabelMap{ParentalSupportMap, OnlineClassesMap, GenderMap}
