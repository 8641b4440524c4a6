package bundle

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	apperrors "espresso/internal/errors"
	"espresso/pkg/contracts/domain"
)

// columnProvider is the common shape of the two row types: everything the
// codec writes comes through the named-column accessor, so the CSV layout
// and the row structs cannot drift apart.
type columnProvider interface {
	Column(col string) (interface{}, bool)
}

// tableColumns builds the full column set for a table: the fixed schema,
// then Tube1..TubeN for the widest tube configuration, then the added
// labels in attachment order.
func tableColumns(fixed []string, maxTubes int, labels []string) []string {
	cols := append([]string(nil), fixed...)
	for n := 1; n <= maxTubes; n++ {
		cols = append(cols, fmt.Sprintf("%s%d", domain.TubePrefix, n))
	}
	return append(cols, labels...)
}

func encodeTable(w io.Writer, cols []string, rows []columnProvider) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	record := make([]string, len(cols))
	for _, row := range rows {
		for i, col := range cols {
			v, ok := row.Column(col)
			if !ok {
				record[i] = ""
				continue
			}
			record[i] = domain.FormatColumnValue(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeFeeds(w io.Writer, feeds []domain.FeedEvent, labels []string) error {
	maxTubes := 0
	rows := make([]columnProvider, len(feeds))
	for i, event := range feeds {
		rows[i] = event
		if len(event.Tubes) > maxTubes {
			maxTubes = len(event.Tubes)
		}
	}
	return encodeTable(w, tableColumns(domain.FeedColumns, maxTubes, labels), rows)
}

func encodeFlies(w io.Writer, flies []domain.Fly, labels []string) error {
	maxTubes := 0
	rows := make([]columnProvider, len(flies))
	for i, fly := range flies {
		rows[i] = fly
		if len(fly.Tubes) > maxTubes {
			maxTubes = len(fly.Tubes)
		}
	}
	return encodeTable(w, tableColumns(domain.FlyColumns, maxTubes, labels), rows)
}

// table is a header-mapped view over one decoded CSV table.
type table struct {
	name string
	cols map[string]int
	tube []int // tube column indexes in tube-number order
	rows [][]string
}

func decodeTable(r io.Reader, name string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("bundle table %s", name), err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("bundle table %s is empty", name), nil)
	}

	t := &table{name: name, cols: make(map[string]int, len(records[0])), rows: records[1:]}
	type tubeCol struct{ number, index int }
	var tubes []tubeCol
	for i, col := range records[0] {
		col = strings.TrimPrefix(col, "\uFEFF")
		t.cols[col] = i
		if !strings.HasPrefix(col, domain.TubePrefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(col, domain.TubePrefix)); err == nil && n >= 1 {
			tubes = append(tubes, tubeCol{number: n, index: i})
		}
	}
	sort.Slice(tubes, func(i, j int) bool { return tubes[i].number < tubes[j].number })
	for _, tc := range tubes {
		t.tube = append(t.tube, tc.index)
	}
	return t, nil
}

func (t *table) cell(row []string, col string) string {
	idx, ok := t.cols[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (t *table) floatCell(row []string, col string) (float64, error) {
	s := t.cell(row, col)
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.NewParsingError(
			fmt.Sprintf("bundle table %s column %s: %q is not a number", t.name, col, s), err)
	}
	return v, nil
}

func (t *table) intCell(row []string, col string) (int, error) {
	s := t.cell(row, col)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.NewParsingError(
			fmt.Sprintf("bundle table %s column %s: %q is not an integer", t.name, col, s), err)
	}
	return v, nil
}

func (t *table) boolCell(row []string, col string) (bool, error) {
	s := t.cell(row, col)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, apperrors.NewParsingError(
			fmt.Sprintf("bundle table %s column %s: %q is not a boolean", t.name, col, s), err)
	}
	return v, nil
}

// tubes collects the row's tube labels in tube order, dropping trailing
// unconfigured tubes so narrower sheets decode to their own width.
func (t *table) tubes(row []string) []string {
	out := make([]string, 0, len(t.tube))
	for _, idx := range t.tube {
		if idx < len(row) {
			out = append(out, strings.TrimSpace(row[idx]))
		} else {
			out = append(out, "")
		}
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (t *table) labels(row []string, names []string) map[string]string {
	if len(names) == 0 {
		return nil
	}
	labels := make(map[string]string, len(names))
	for _, name := range names {
		labels[name] = t.cell(row, name)
	}
	return labels
}

func decodeFeeds(r io.Reader, labelNames []string) ([]domain.FeedEvent, error) {
	t, err := decodeTable(r, feedsTable)
	if err != nil {
		return nil, err
	}

	feeds := make([]domain.FeedEvent, 0, len(t.rows))
	for _, row := range t.rows {
		if len(row) == 0 {
			continue
		}
		event := domain.FeedEvent{
			FlyID:        t.cell(row, domain.ColFlyID),
			ExperimentID: t.cell(row, domain.ColExperimentID),
			FoodChoice:   t.cell(row, domain.ColFoodChoice),
			Genotype:     t.cell(row, domain.ColGenotype),
			Status:       domain.Status(t.cell(row, domain.ColStatus)),
			Temperature:  t.cell(row, domain.ColTemperature),
			Sex:          t.cell(row, domain.ColSex),
			Tubes:        t.tubes(row),
			Labels:       t.labels(row, labelNames),
		}
		if event.ChoiceIdx, err = t.intCell(row, domain.ColChoiceIdx); err != nil {
			return nil, err
		}
		if event.RelativeTimeMs, err = t.floatCell(row, domain.ColRelativeTimeMs); err != nil {
			return nil, err
		}
		if event.RelativeTimeS, err = t.floatCell(row, domain.ColRelativeTimeS); err != nil {
			return nil, err
		}
		if event.FeedDurationMs, err = t.floatCell(row, domain.ColFeedDurationMs); err != nil {
			return nil, err
		}
		if event.FeedDurationS, err = t.floatCell(row, domain.ColFeedDurationS); err != nil {
			return nil, err
		}
		if event.FeedVolMicrolitres, err = t.floatCell(row, domain.ColFeedVolMicrol); err != nil {
			return nil, err
		}
		if event.FeedVolNanolitres, err = t.floatCell(row, domain.ColFeedVolNl); err != nil {
			return nil, err
		}
		if event.FeedSpeedNlPerS, err = t.floatCell(row, domain.ColFeedSpeedNlS); err != nil {
			return nil, err
		}
		if event.AvgFeedVolPerFly, err = t.floatCell(row, domain.ColAvgFeedVolPerFly); err != nil {
			return nil, err
		}
		if event.AvgFeedCountPerFly, err = t.floatCell(row, domain.ColAvgFeedCountPerFly); err != nil {
			return nil, err
		}
		if event.AvgFeedSpeedPerFly, err = t.floatCell(row, domain.ColAvgFeedSpeedPerFly); err != nil {
			return nil, err
		}
		if event.Valid, err = t.boolCell(row, domain.ColValid); err != nil {
			return nil, err
		}
		if event.FlyCountInChamber, err = t.intCell(row, domain.ColFlyCountInChamber); err != nil {
			return nil, err
		}
		if event.AtLeastOneFeed, err = t.boolCell(row, domain.ColAtLeastOneFeed); err != nil {
			return nil, err
		}
		feeds = append(feeds, event)
	}
	return feeds, nil
}

func decodeFlies(r io.Reader, labelNames []string) ([]domain.Fly, error) {
	t, err := decodeTable(r, fliesTable)
	if err != nil {
		return nil, err
	}

	flies := make([]domain.Fly, 0, len(t.rows))
	for _, row := range t.rows {
		if len(row) == 0 {
			continue
		}
		fly := domain.Fly{
			FlyID:        t.cell(row, domain.ColFlyID),
			ExperimentID: t.cell(row, domain.ColExperimentID),
			Genotype:     t.cell(row, domain.ColGenotype),
			Status:       domain.Status(t.cell(row, domain.ColStatus)),
			Temperature:  t.cell(row, domain.ColTemperature),
			Sex:          t.cell(row, domain.ColSex),
			Tubes:        t.tubes(row),
			Labels:       t.labels(row, labelNames),
		}
		if fly.ID, err = t.intCell(row, domain.ColID); err != nil {
			return nil, err
		}
		if fly.FlyCountInChamber, err = t.intCell(row, domain.ColFlyCountInChamber); err != nil {
			return nil, err
		}
		if fly.AtLeastOneFeed, err = t.boolCell(row, domain.ColAtLeastOneFeed); err != nil {
			return nil, err
		}
		flies = append(flies, fly)
	}
	return flies, nil
}
