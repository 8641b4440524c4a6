package domain

import (
	"fmt"
	"strings"
)

// Status classifies a fly by its genotype lineage.
type Status string

const (
	StatusSibling   Status = "Sibling"
	StatusOffspring Status = "Offspring"
)

// StatusOrder is the fixed ordered category set for Status.
var StatusOrder = []string{string(StatusSibling), string(StatusOffspring)}

// Fly represents one row of the fly metadata table.
type Fly struct {
	// FlyID is the globally unique fly identifier, see MakeFlyID.
	FlyID string `json:"fly_id" csv:"FlyID" validate:"required"`

	// ExperimentID is the datetime_exptname token of the source triplet.
	ExperimentID string `json:"experiment_id" csv:"ExperimentID" validate:"required"`

	// ID is the fly number within its experiment, as recorded by the rig.
	ID int `json:"id" csv:"ID" validate:"min=0"`

	// Genotype is the normalized genotype string, see NormalizeGenotype.
	Genotype string `json:"genotype" csv:"Genotype" validate:"required"`

	// Status is derived from the genotype, see StatusFromGenotype.
	Status Status `json:"status" csv:"Status"`

	Temperature string `json:"temperature" csv:"Temperature"`
	Sex         string `json:"sex" csv:"Sex"`

	// FlyCountInChamber is the number of flies sharing this fly's chamber,
	// used to normalize per-fly feed attribution.
	FlyCountInChamber int `json:"fly_count_in_chamber" csv:"FlyCountInChamber" validate:"min=1"`

	// Tubes holds the food labels of the fly's tubes in tube order:
	// Tubes[0] is Tube1, Tubes[1] is Tube2, and so on. An empty string
	// marks an unconfigured tube.
	Tubes []string `json:"tubes"`

	// AtLeastOneFeed is false for flies with no valid feed event across
	// the observation window.
	AtLeastOneFeed bool `json:"at_least_one_feed" csv:"AtLeastOneFeed"`

	// Labels holds user-attached categorical label values, keyed by label
	// name. Nil until a label is attached.
	Labels map[string]string `json:"labels,omitempty"`
}

// MakeFlyID builds the globally unique fly identifier from the triplet's
// datetime_exptname token and the fly's rig-assigned number.
func MakeFlyID(experimentID string, id int) string {
	return fmt.Sprintf("%s_Fly%d", experimentID, id)
}

// NormalizeGenotype canonicalizes rig-entered genotype strings. Historical
// logs mix 'W' and 'w' for the white gene and spell out '111' as 'iii'.
func NormalizeGenotype(genotype string) string {
	g := strings.ReplaceAll(genotype, "W", "w")
	return strings.ReplaceAll(g, "iii", "111")
}

// StatusFromGenotype derives the lineage status from a normalized genotype.
// Genotypes on the w1118 background are sibling controls.
func StatusFromGenotype(genotype string) Status {
	if strings.HasPrefix(genotype, "w1118") {
		return StatusSibling
	}
	return StatusOffspring
}

// FoodChoice returns the food label of the tube with the given zero-based
// choice index. The index must be within the fly's configured tubes.
func (f Fly) FoodChoice(choiceIdx int) (string, error) {
	if choiceIdx < 0 || choiceIdx >= len(f.Tubes) {
		return "", fmt.Errorf("fly %s has no tube %d (%d tubes configured)",
			f.FlyID, choiceIdx+1, len(f.Tubes))
	}
	label := f.Tubes[choiceIdx]
	if label == "" {
		return "", fmt.Errorf("fly %s tube %d has no food label", f.FlyID, choiceIdx+1)
	}
	return label, nil
}

// Clone returns a deep copy of the fly, including tubes and label values.
func (f Fly) Clone() Fly {
	out := f
	if f.Tubes != nil {
		out.Tubes = append([]string(nil), f.Tubes...)
	}
	if f.Labels != nil {
		out.Labels = make(map[string]string, len(f.Labels))
		for k, v := range f.Labels {
			out.Labels[k] = v
		}
	}
	return out
}
