package munge

import (
	"fmt"

	apperrors "espresso/internal/errors"
	"espresso/pkg/contracts/domain"
)

// Categories holds the ordered categorical axes of one experiment, built
// once at load time from the observed values. Status is the exception: its
// Sibling < Offspring order is semantic, not lexical.
type Categories struct {
	Genotype    *domain.Category
	Temperature *domain.Category
	Sex         *domain.Category
	FoodChoice  *domain.Category
	Status      *domain.Category
}

// BuildCategories derives the categorical axes from the loaded tables. Fly
// axes come from the metadata rows; food choice comes from the event rows
// because only events carry resolved labels.
func BuildCategories(flies []domain.Fly, events []domain.FeedEvent) (*Categories, error) {
	genotypes := make([]string, 0, len(flies))
	temperatures := make([]string, 0, len(flies))
	sexes := make([]string, 0, len(flies))
	for _, fly := range flies {
		genotypes = append(genotypes, fly.Genotype)
		temperatures = append(temperatures, fly.Temperature)
		sexes = append(sexes, fly.Sex)
	}

	choices := make([]string, 0, len(events))
	for _, event := range events {
		choices = append(choices, event.FoodChoice)
	}

	status, err := domain.NewFixedCategory(domain.ColStatus, domain.StatusOrder)
	if err != nil {
		return nil, apperrors.NewDataIntegrityError("building status category", err)
	}

	return &Categories{
		Genotype:    domain.NewCategory(domain.ColGenotype, genotypes),
		Temperature: domain.NewCategory(domain.ColTemperature, temperatures),
		Sex:         domain.NewCategory(domain.ColSex, sexes),
		FoodChoice:  domain.NewCategory(domain.ColFoodChoice, choices),
		Status:      status,
	}, nil
}

// Validate checks that every row's categorical values are members of the
// experiment's axes. A non-member can only appear if rows were mutated after
// the axes were built, so this is a data-integrity failure.
func (c *Categories) Validate(flies []domain.Fly, events []domain.FeedEvent) error {
	for _, fly := range flies {
		if _, err := c.Genotype.Ordinal(fly.Genotype); err != nil {
			return apperrors.NewDataIntegrityError(fmt.Sprintf("fly %s", fly.FlyID), err)
		}
		if _, err := c.Status.Ordinal(string(fly.Status)); err != nil {
			return apperrors.NewDataIntegrityError(fmt.Sprintf("fly %s", fly.FlyID), err)
		}
	}
	for _, event := range events {
		if _, err := c.FoodChoice.Ordinal(event.FoodChoice); err != nil {
			return apperrors.NewDataIntegrityError(fmt.Sprintf("feed event of fly %s", event.FlyID), err)
		}
	}
	return nil
}

// Union merges two experiments' categorical axes, used when combining
// experiments. The result is re-sorted, matching how the axes would have
// been built had both experiments been loaded together.
func (c *Categories) Union(other *Categories) (*Categories, error) {
	if other == nil {
		return c, nil
	}

	status, err := domain.NewFixedCategory(domain.ColStatus, domain.StatusOrder)
	if err != nil {
		return nil, apperrors.NewDataIntegrityError("building status category", err)
	}

	return &Categories{
		Genotype:    c.Genotype.Union(other.Genotype),
		Temperature: c.Temperature.Union(other.Temperature),
		Sex:         c.Sex.Union(other.Sex),
		FoodChoice:  c.FoodChoice.Union(other.FoodChoice),
		Status:      status,
	}, nil
}
