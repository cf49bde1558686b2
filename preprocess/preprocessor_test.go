package preprocess

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(t *testing.T, tbl *Table) [][]string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))
	all, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	return all
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, DefaultSeed, opts.Seed)
	assert.Equal(t, uint64(42), opts.Seed)
	assert.Nil(t, opts.HTTPClient)
}

func TestPreprocessScenario(t *testing.T) {
	in := writeTempCSV(t, [][]string{
		{"StudentID", "Gender", "ParentalSupport", "AttendanceRate"},
		{"1", "Male", "Low", "80"},
		{"2", "Female", "", "91"},
		{"3", "Male", "High", ""},
	})

	got := New().Preprocess(context.Background(), in)

	// Gender is in the drop set, so it never reaches encoding.
	assert.Equal(t, []string{"ParentalSupport", "AttendanceRate"}, got.Columns())
	assert.False(t, got.Has(ColGender))
	assert.Equal(t, 3, got.Rows())

	support := column(t, got, ColParentalSupport)
	assert.Equal(t, "0", support[0])
	assert.Contains(t, []string{"0", "1", "2"}, support[1])
	assert.Equal(t, "2", support[2])

	assert.Equal(t, []string{"80", "91", "86"}, column(t, got, ColAttendanceRate))
}

func TestPreprocessReproducible(t *testing.T) {
	input := [][]string{
		{"StudentID", "Name", "ParentalSupport", "Online Classes Taken", "StudyHoursPerWeek", "PreviousGrade", "FinalGrade"},
	}
	for i := 0; i < 50; i++ {
		support := []string{"Low", "Medium", "High", ""}[i%4]
		online := []string{"True", "", "False"}[i%3]
		hours := ""
		if i%5 != 0 {
			hours = fmt.Sprintf("%d", 5+i%7)
		}
		input = append(input, []string{fmt.Sprint(i), fmt.Sprintf("s%d", i), support, online, hours, "70", fmt.Sprint(60 + i%30)})
	}
	in := writeTempCSV(t, input)

	first := records(t, New().Preprocess(context.Background(), in))
	second := records(t, New().Preprocess(context.Background(), in))
	assert.Equal(t, first, second)

	// The same Preprocessor gives the same result on repeated calls.
	p := New()
	assert.Equal(t, records(t, p.Preprocess(context.Background(), in)), records(t, p.Preprocess(context.Background(), in)))

	require.Len(t, first, 51)
	assert.Equal(t, []string{"ParentalSupport", "Online Classes Taken", "StudyHoursPerWeek", "PreviousGrade", "FinalGrade"}, first[0])
	for i, row := range first[1:] {
		assert.Contains(t, []string{"0", "1", "2"}, row[0], "row %d", i)
		assert.Contains(t, []string{"0", "1"}, row[1], "row %d", i)
		assert.NotEmpty(t, row[2], "row %d", i)
	}
}

func TestPreprocessSeedChangesDraws(t *testing.T) {
	input := [][]string{{"ParentalSupport", "x"}}
	for i := 0; i < 64; i++ {
		input = append(input, []string{"", fmt.Sprint(i)})
	}
	in := writeTempCSV(t, input)

	a := records(t, New().Preprocess(context.Background(), in))
	b := records(t, New(WithSeed(7)).Preprocess(context.Background(), in))
	assert.NotEqual(t, a, b)
}

func TestPreprocessInvariants(t *testing.T) {
	input := [][]string{
		{"Name", "Attendance (%)", "Online Classes Taken", "Study Hours", "ParentalSupport", "FinalGrade", "Extra"},
		{"A", "", "True", "", "Medium", "", "keep"},
		{"B", "90", "maybe", "2", "Low", "77", ""},
		{"C", "80", "", "3", "", "78", "x"},
	}
	in := writeTempCSV(t, input)

	got := New().Preprocess(context.Background(), in)

	assert.Equal(t, len(input)-1, got.Rows())
	assert.Equal(t, []string{"Online Classes Taken", "ParentalSupport", "FinalGrade", "Extra"}, got.Columns())
	for _, col := range got.Columns() {
		assert.NotContains(t, DroppedColumns, col)
	}

	online, missing, _ := got.Column(ColOnlineClasses)
	assert.Equal(t, "1", online[0])
	assert.True(t, missing[1], "unmapped value becomes missing")
	assert.Contains(t, []string{"0", "1"}, online[2])

	assert.Equal(t, []string{"78", "77", "78"}, column(t, got, ColFinalGrade))
	assert.Equal(t, []string{"keep", "", "x"}, column(t, got, "Extra"))
}

func TestPreprocessLoadFailure(t *testing.T) {
	cases := []struct {
		name   string
		source func(t *testing.T) string
	}{
		{
			name: "missing file",
			source: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope.csv")
			},
		},
		{
			name: "row longer than header",
			source: func(t *testing.T) string {
				return writeRaw(t, "a,b\n1,2\n3,4,5\n")
			},
		},
		{
			name: "no header",
			source: func(t *testing.T) string {
				return writeRaw(t, "")
			},
		},
		{
			name: "unterminated quote",
			source: func(t *testing.T) string {
				return writeRaw(t, "a,b\n\"1,2\n")
			},
		},
		{
			name: "http error status",
			source: func(t *testing.T) string {
				srv := httptest.NewServer(http.NotFoundHandler())
				t.Cleanup(srv.Close)
				return srv.URL + "/data.csv"
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var logs bytes.Buffer
			p := New(WithLogger(zerolog.New(&logs)))

			got := p.Preprocess(context.Background(), tc.source(t))

			assert.True(t, got.IsEmpty())
			assert.Equal(t, 0, got.Rows())
			assert.Empty(t, got.Columns())
			assert.Contains(t, logs.String(), "failed to load dataset")
		})
	}
}

func TestPreprocessRemoteSource(t *testing.T) {
	body := "StudentID,ParentalSupport,FinalGrade\n1,High,90\n2,Low,\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	got := New(WithHTTPClient(srv.Client())).Preprocess(context.Background(), srv.URL+"/uc?id=abc")

	assert.Equal(t, [][]string{
		{"ParentalSupport", "FinalGrade"},
		{"2", "90"},
		{"0", "90"},
	}, records(t, got))
}

func TestPreprocessCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "a\n1\n")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := New().Preprocess(ctx, srv.URL)
	assert.True(t, got.IsEmpty())
}

func TestPreprocessLogsStages(t *testing.T) {
	in := writeTempCSV(t, [][]string{{"Gender", "ParentalSupport"}, {"Male", "Sometimes"}, {"Female", "Low"}})

	var logs bytes.Buffer
	New(WithLogger(zerolog.New(&logs))).Preprocess(context.Background(), in)

	out := logs.String()
	for _, msg := range []string{
		"1. dataset loaded",
		"2. identifier columns removed",
		"3. categorical values imputed",
		"4. numeric values imputed",
		"5. categorical values encoded",
		"6. preprocessing complete",
		"unmapped labels set to missing",
	} {
		assert.Contains(t, out, msg)
	}
	assert.Equal(t, 7, strings.Count(out, "\n"))
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://drive.google.com/uc?id=1"))
	assert.True(t, IsRemote("HTTP://example.com/a.csv"))
	assert.False(t, IsRemote("data/students.csv"))
	assert.False(t, IsRemote("/tmp/https.csv"))
}

func TestPreprocessNumericBooleans(t *testing.T) {
	in := writeRaw(t, "Online Classes Taken,FinalGrade\n1,80\n0,90\n1.0,70\n0.0,60\n")

	got := New().Preprocess(context.Background(), in)

	assert.Equal(t, [][]string{
		{"Online Classes Taken", "FinalGrade"},
		{"1", "80"},
		{"0", "90"},
		{"1", "70"},
		{"0", "60"},
	}, records(t, got))
}

func TestPreprocessShortRowsPadded(t *testing.T) {
	in := writeRaw(t, "a,FinalGrade,ParentalSupport\n1,80,Low\n2,91\n3\n")

	got := New().Preprocess(context.Background(), in)
	require.False(t, got.IsEmpty())
	assert.Equal(t, 3, got.Rows())

	_, missing, _ := got.Column("a")
	assert.Equal(t, []bool{false, false, false}, missing)

	// The padded cells are filled by the imputation stages.
	assert.Equal(t, []string{"80", "91", "86"}, column(t, got, ColFinalGrade))
	support := column(t, got, ColParentalSupport)
	assert.Equal(t, "0", support[0])
	assert.Contains(t, []string{"0", "1", "2"}, support[1])
	assert.Contains(t, []string{"0", "1", "2"}, support[2])
}

// Pins the draws of the default seed. ParentalSupport is filled first, then
// Online Classes Taken, each in row order.
func TestPreprocessSeedDraws(t *testing.T) {
	in := writeRaw(t, "ParentalSupport,Online Classes Taken,FinalGrade\n"+
		",,1\n"+
		",,2\n"+
		",,3\n"+
		",,4\n"+
		",True,5\n"+
		",False,6\n")

	got := New().Preprocess(context.Background(), in)

	assert.Equal(t, []string{"1", "1", "1", "1", "2", "0"}, column(t, got, ColParentalSupport))
	assert.Equal(t, []string{"1", "0", "0", "0", "1", "0"}, column(t, got, ColOnlineClasses))
}
