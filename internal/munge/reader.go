package munge

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	apperrors "espresso/internal/errors"
	"espresso/pkg/contracts/domain"
)

// csvTable is a header-indexed view over the rows of one CSV file.
type csvTable struct {
	path   string
	cols   map[string]int
	tubes  []tubeColumn
	rows   [][]string
}

// tubeColumn records where a TubeN column sits and which tube it names.
type tubeColumn struct {
	number int // 1-based tube number parsed from the header
	index  int // column index in the row
}

func readCSVTable(path string) (*csvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to parse %s", path), err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s has no header row", path), nil)
	}

	table := &csvTable{
		path: path,
		cols: make(map[string]int, len(records[0])),
		rows: records[1:],
	}

	for i, name := range records[0] {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))
		table.cols[name] = i

		if strings.HasPrefix(name, domain.TubePrefix) {
			if number, err := strconv.Atoi(strings.TrimPrefix(name, domain.TubePrefix)); err == nil && number > 0 {
				table.tubes = append(table.tubes, tubeColumn{number: number, index: i})
			}
		}
	}

	// Tube columns may appear in any order in the sheet; the tube number in
	// the header is authoritative.
	sort.Slice(table.tubes, func(i, j int) bool {
		return table.tubes[i].number < table.tubes[j].number
	})

	return table, nil
}

// hasColumn reports whether the table's header names the column.
func (t *csvTable) hasColumn(col string) bool {
	_, ok := t.cols[col]
	return ok
}

// requireColumns returns an error naming every required column the header lacks.
func (t *csvTable) requireColumns(cols ...string) error {
	var missing []string
	for _, col := range cols {
		if !t.hasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewAppValidationError(
			fmt.Sprintf("%s is missing required columns: %s", t.path, strings.Join(missing, ", ")))
	}
	return nil
}

func (t *csvTable) cell(row []string, col string) string {
	idx, ok := t.cols[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// floatCell parses a numeric cell. Empty cells and recorded NaNs come back
// as NaN so downstream math can distinguish "not measured" from zero.
func (t *csvTable) floatCell(row []string, col string) (float64, error) {
	raw := t.cell(row, col)
	if raw == "" || strings.EqualFold(raw, "nan") || strings.EqualFold(raw, "na") {
		return math.NaN(), nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.NewParsingError(
			fmt.Sprintf("%s: column %s has non-numeric value %q", t.path, col, raw), err)
	}
	return value, nil
}

func (t *csvTable) intCell(row []string, col string) (int, error) {
	raw := t.cell(row, col)
	if value, err := strconv.Atoi(raw); err == nil {
		return value, nil
	}
	// Some sheets store integers as floats ("3.0").
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.NewParsingError(
			fmt.Sprintf("%s: column %s has non-integer value %q", t.path, col, raw), err)
	}
	return int(value), nil
}

func (t *csvTable) boolCell(row []string, col string) (bool, error) {
	raw := t.cell(row, col)
	value, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		return false, apperrors.NewParsingError(
			fmt.Sprintf("%s: column %s has non-boolean value %q", t.path, col, raw), err)
	}
	return value, nil
}

// feedLogColumns are the columns every FeedLog CSV must carry.
var feedLogColumns = []string{
	domain.ColFlyID,
	domain.ColChoiceIdx,
	domain.ColRelativeTimeMs,
	domain.ColFeedDurationMs,
	domain.ColFeedVolMicrol,
	domain.ColValid,
}

// metaDataColumns are the columns every MetaData CSV must carry. At least
// one Tube column is additionally required; Sex is optional.
var metaDataColumns = []string{
	domain.ColID,
	domain.ColGenotype,
	domain.ColTemperature,
	domain.ColFlyCountInChamber,
}

// CheckFeedLogColumns verifies the file parses as CSV and carries every
// required FeedLog column, without materializing any rows.
func CheckFeedLogColumns(path string) error {
	table, err := readCSVTable(path)
	if err != nil {
		return err
	}
	return table.requireColumns(feedLogColumns...)
}

// CheckMetadataColumns verifies the file parses as CSV, carries every
// required MetaData column and configures at least one food tube.
func CheckMetadataColumns(path string) error {
	table, err := readCSVTable(path)
	if err != nil {
		return err
	}
	if err := table.requireColumns(metaDataColumns...); err != nil {
		return err
	}
	if len(table.tubes) == 0 {
		return apperrors.NewAppValidationError(
			fmt.Sprintf("%s has no Tube columns; at least one food tube must be configured", path))
	}
	return nil
}

// CheckFeedStatsColumns verifies the file parses as CSV and carries the
// duration column.
func CheckFeedStatsColumns(path string) error {
	table, err := readCSVTable(path)
	if err != nil {
		return err
	}
	return table.requireColumns(domain.ColMinutes)
}

// ReadFeedLog reads one raw FeedLog CSV and returns its events with the raw
// columns populated. Fly identifiers are globalized with the triplet's
// datetime token; derived columns are filled in by the column derivers.
func ReadFeedLog(path, experimentID string) ([]domain.FeedEvent, error) {
	table, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}
	if err := table.requireColumns(feedLogColumns...); err != nil {
		return nil, err
	}

	events := make([]domain.FeedEvent, 0, len(table.rows))
	for _, row := range table.rows {
		if len(row) == 0 {
			continue
		}

		flyNumber, err := table.intCell(row, domain.ColFlyID)
		if err != nil {
			return nil, err
		}
		choiceIdx, err := table.intCell(row, domain.ColChoiceIdx)
		if err != nil {
			return nil, err
		}
		relativeTimeMs, err := table.floatCell(row, domain.ColRelativeTimeMs)
		if err != nil {
			return nil, err
		}
		durationMs, err := table.floatCell(row, domain.ColFeedDurationMs)
		if err != nil {
			return nil, err
		}
		volumeMicrol, err := table.floatCell(row, domain.ColFeedVolMicrol)
		if err != nil {
			return nil, err
		}
		valid, err := table.boolCell(row, domain.ColValid)
		if err != nil {
			return nil, err
		}

		events = append(events, domain.FeedEvent{
			FlyID:              domain.MakeFlyID(experimentID, flyNumber),
			ExperimentID:       experimentID,
			ChoiceIdx:          choiceIdx,
			RelativeTimeMs:     relativeTimeMs,
			FeedDurationMs:     durationMs,
			FeedVolMicrolitres: volumeMicrol,
			Valid:              valid,
		})
	}

	slog.Debug("Read feed log",
		slog.String("path", path),
		slog.String("experiment_id", experimentID),
		slog.Int("event_count", len(events)))

	return events, nil
}

// ReadMetadata reads one MetaData CSV and returns its flies. Genotypes are
// returned as recorded; normalization happens during experiment assembly so
// combined experiments normalize consistently.
func ReadMetadata(path, experimentID string) ([]domain.Fly, error) {
	table, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}
	if err := table.requireColumns(metaDataColumns...); err != nil {
		return nil, err
	}
	if len(table.tubes) == 0 {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("%s has no Tube columns; at least one food tube must be configured", path))
	}

	flies := make([]domain.Fly, 0, len(table.rows))
	for _, row := range table.rows {
		if len(row) == 0 {
			continue
		}

		id, err := table.intCell(row, domain.ColID)
		if err != nil {
			return nil, err
		}
		flyCount, err := table.intCell(row, domain.ColFlyCountInChamber)
		if err != nil {
			return nil, err
		}

		tubes := make([]string, len(table.tubes))
		for i, tube := range table.tubes {
			if tube.index < len(row) {
				tubes[i] = strings.TrimSpace(row[tube.index])
			}
		}

		flies = append(flies, domain.Fly{
			FlyID:             domain.MakeFlyID(experimentID, id),
			ExperimentID:      experimentID,
			ID:                id,
			Genotype:          table.cell(row, domain.ColGenotype),
			Temperature:       table.cell(row, domain.ColTemperature),
			Sex:               table.cell(row, domain.ColSex),
			FlyCountInChamber: flyCount,
			Tubes:             tubes,
			AtLeastOneFeed:    true,
		})
	}

	slog.Debug("Read metadata",
		slog.String("path", path),
		slog.String("experiment_id", experimentID),
		slog.Int("fly_count", len(flies)))

	return flies, nil
}

// ReadExperimentDuration reads one FeedStats CSV and returns the recorded
// experiment duration in minutes. Stats files log one row per sampling tick,
// so the duration is the largest Minutes value seen.
func ReadExperimentDuration(path string) (float64, error) {
	table, err := readCSVTable(path)
	if err != nil {
		return 0, err
	}
	if err := table.requireColumns(domain.ColMinutes); err != nil {
		return 0, err
	}

	duration := math.NaN()
	for _, row := range table.rows {
		if len(row) == 0 {
			continue
		}
		minutes, err := table.floatCell(row, domain.ColMinutes)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(minutes) {
			continue
		}
		if math.IsNaN(duration) || minutes > duration {
			duration = minutes
		}
	}

	if math.IsNaN(duration) {
		return 0, apperrors.NewParsingError(
			fmt.Sprintf("%s records no experiment duration", path), nil)
	}

	return duration, nil
}
