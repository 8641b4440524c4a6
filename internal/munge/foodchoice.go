package munge

import (
	"fmt"

	apperrors "espresso/internal/errors"
	"espresso/pkg/contracts/domain"
)

// AssignFoodChoice resolves every event's recorded ChoiceIdx to the food
// label configured for that tube in the fly's metadata. An event for a fly
// the metadata does not know, or an index beyond the fly's configured tubes,
// is malformed input and fails the load; it never falls back to a default.
func AssignFoodChoice(events []domain.FeedEvent, flies []domain.Fly) ([]domain.FeedEvent, error) {
	byID, err := indexFlies(flies)
	if err != nil {
		return nil, err
	}

	for i := range events {
		fly, ok := byID[events[i].FlyID]
		if !ok {
			return nil, apperrors.NewDataIntegrityError(
				fmt.Sprintf("feed event references fly %s which has no metadata row", events[i].FlyID), nil)
		}

		label, err := fly.FoodChoice(events[i].ChoiceIdx)
		if err != nil {
			return nil, apperrors.NewDataIntegrityError("food choice assignment failed", err)
		}
		events[i].FoodChoice = label
	}

	return events, nil
}

// indexFlies builds a FlyID lookup, rejecting duplicate identifiers. A
// duplicate FlyID would make every downstream group-by silently ambiguous,
// so it is a load-time failure.
func indexFlies(flies []domain.Fly) (map[string]domain.Fly, error) {
	byID := make(map[string]domain.Fly, len(flies))
	for _, fly := range flies {
		if _, exists := byID[fly.FlyID]; exists {
			return nil, apperrors.NewDataIntegrityError(
				fmt.Sprintf("duplicate fly identifier %s in metadata", fly.FlyID), nil)
		}
		byID[fly.FlyID] = fly
	}
	return byID, nil
}
