package predict

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Batch is a parsed input CSV: the original header and rows are kept so
// the result file can reproduce the input with prediction columns
// appended.
type Batch struct {
	Header  []string
	Rows    [][]string
	Records []Record
}

// ReadBatch parses an input CSV, requiring all 16 raw input columns.
// Extra columns are carried through untouched.
func ReadBatch(r io.Reader) (*Batch, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("CSV is missing required columns: %s", strings.Join(missing, ", "))
	}

	batch := &Batch{Header: header}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}

		rec, err := rowToRecord(row, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		batch.Rows = append(batch.Rows, row)
		batch.Records = append(batch.Records, rec)
	}
	return batch, nil
}

// WriteResults writes the input rows with predicted_term_deposit and
// prediction_probability columns appended.
func WriteResults(w io.Writer, batch *Batch, labels []string, probabilities []float64) error {
	writer := csv.NewWriter(w)

	header := append(append([]string{}, batch.Header...), "predicted_term_deposit", "prediction_probability")
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write results header: %w", err)
	}

	for i, row := range batch.Rows {
		out := append(append([]string{}, row...),
			labels[i],
			strconv.FormatFloat(probabilities[i], 'f', -1, 64),
		)
		if err := writer.Write(out); err != nil {
			return fmt.Errorf("write results row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func rowToRecord(row []string, index map[string]int) (Record, error) {
	field := func(name string) string {
		i := index[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	num := func(name string) (int, error) {
		v, err := strconv.Atoi(field(name))
		if err != nil {
			return 0, fmt.Errorf("column %s: %q is not a number", name, field(name))
		}
		return v, nil
	}

	var rec Record
	var err error
	if rec.Age, err = num("age"); err != nil {
		return rec, err
	}
	if rec.Balance, err = num("balance"); err != nil {
		return rec, err
	}
	if rec.Day, err = num("day"); err != nil {
		return rec, err
	}
	if rec.Duration, err = num("duration"); err != nil {
		return rec, err
	}
	if rec.Campaign, err = num("campaign"); err != nil {
		return rec, err
	}
	if rec.Pdays, err = num("pdays"); err != nil {
		return rec, err
	}
	if rec.Previous, err = num("previous"); err != nil {
		return rec, err
	}

	rec.Job = field("job")
	rec.Marital = field("marital")
	rec.Education = field("education")
	rec.Default = field("default")
	rec.Housing = field("housing")
	rec.Loan = field("loan")
	rec.Contact = field("contact")
	rec.Month = field("month")
	rec.Poutcome = field("poutcome")
	return rec, nil
}
