package experiment

import (
	"fmt"
	"math"
	"strings"

	apperrors "espresso/internal/errors"
	"espresso/pkg/contracts/domain"
)

// AttachLabel adds a user-defined categorical column to both tables. A fixed
// spec assigns one value to every row; a derived spec joins the named
// metadata columns per row, skipping unrecorded components. Re-attaching an
// existing added label replaces its values; colliding with a core column is
// an error. The aggregate is unchanged when an error is returned.
func (e *Experiment) AttachLabel(name string, spec domain.LabelSpec) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.NewUserInputError("label name must not be empty")
	}
	if isReservedColumn(name) {
		return apperrors.NewUserInputError(
			fmt.Sprintf("%s is a core column and cannot be used as a label name", name))
	}
	if err := spec.Validate(); err != nil {
		return apperrors.NewUserInputError(fmt.Sprintf("invalid label %s: %v", name, err))
	}

	if spec.Kind == domain.LabelDerived {
		for _, col := range spec.Columns {
			if !e.metadataHasColumn(col) {
				return apperrors.NewUserInputError(
					fmt.Sprintf("%s is not found in the metadata", col))
			}
		}
	}

	sep := spec.Separator
	if sep == "" {
		sep = domain.DefaultLabelSeparator
	}

	for i := range e.flies {
		value := spec.Value
		if spec.Kind == domain.LabelDerived {
			value = joinColumns(e.flies[i], spec.Columns, sep)
		}
		if e.flies[i].Labels == nil {
			e.flies[i].Labels = make(map[string]string)
		}
		e.flies[i].Labels[name] = value
	}
	for i := range e.feeds {
		value := spec.Value
		if spec.Kind == domain.LabelDerived {
			value = joinColumns(e.feeds[i], spec.Columns, sep)
		}
		if e.feeds[i].Labels == nil {
			e.feeds[i].Labels = make(map[string]string)
		}
		e.feeds[i].Labels[name] = value
	}

	if !e.isAddedLabel(name) {
		e.addedLabels = append(e.addedLabels, name)
	}
	return nil
}

// RemoveLabels drops previously attached labels from both tables. Every name
// must be an added label; nothing is removed otherwise.
func (e *Experiment) RemoveLabels(names ...string) error {
	if len(names) == 0 {
		return apperrors.NewUserInputError("no label names given")
	}
	if len(e.addedLabels) == 0 {
		return apperrors.NewUserInputError("no labels have been added to this experiment")
	}

	var unknown []string
	for _, name := range names {
		if !e.isAddedLabel(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return apperrors.NewUserInputError(
			fmt.Sprintf("%s is not an added label", strings.Join(unknown, ", ")))
	}

	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
	}

	for i := range e.flies {
		for name := range drop {
			delete(e.flies[i].Labels, name)
		}
		if len(e.flies[i].Labels) == 0 {
			e.flies[i].Labels = nil
		}
	}
	for i := range e.feeds {
		for name := range drop {
			delete(e.feeds[i].Labels, name)
		}
		if len(e.feeds[i].Labels) == 0 {
			e.feeds[i].Labels = nil
		}
	}

	kept := e.addedLabels[:0]
	for _, name := range e.addedLabels {
		if !drop[name] {
			kept = append(kept, name)
		}
	}
	e.addedLabels = kept
	if len(e.addedLabels) == 0 {
		e.addedLabels = nil
	}
	return nil
}

// RemoveAllLabels drops every attached label and returns the removed names.
func (e *Experiment) RemoveAllLabels() ([]string, error) {
	if len(e.addedLabels) == 0 {
		return nil, apperrors.NewUserInputError("no labels have been added to this experiment")
	}
	removed := e.AddedLabels()
	if err := e.RemoveLabels(removed...); err != nil {
		return nil, err
	}
	return removed, nil
}

func (e *Experiment) isAddedLabel(name string) bool {
	for _, label := range e.addedLabels {
		if label == name {
			return true
		}
	}
	return false
}

// metadataHasColumn reports whether a derived-label source column resolves
// on at least one fly. Tube counts may differ between sheets, so a column
// missing on some flies is fine; those components are skipped per row.
func (e *Experiment) metadataHasColumn(col string) bool {
	for _, fly := range e.flies {
		if _, ok := fly.Column(col); ok {
			return true
		}
	}
	return false
}

// columnRow is the common shape of the two table row types for per-row
// column resolution.
type columnRow interface {
	Column(col string) (interface{}, bool)
}

// joinColumns builds a derived label value for one row: the row's values for
// the given columns joined by sep, with unrecorded components (missing
// columns, NaN, empty cells) skipped.
func joinColumns(row columnRow, cols []string, sep string) string {
	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		v, ok := row.Column(col)
		if !ok {
			continue
		}
		if f, isFloat := v.(float64); isFloat && math.IsNaN(f) {
			continue
		}
		s := domain.FormatColumnValue(v)
		if s == "" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, sep)
}

// isReservedColumn reports whether a name belongs to the fixed table schema.
func isReservedColumn(name string) bool {
	for _, col := range domain.FeedColumns {
		if col == name {
			return true
		}
	}
	for _, col := range domain.FlyColumns {
		if col == name {
			return true
		}
	}
	return domain.IsTubeColumn(name)
}
