package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/mejd2001/ai-analyzer/internal/models"
)

// Audience gender codes used by the ad platform.
const (
	AdGenderMale   = 1
	AdGenderFemale = 2
)

const (
	defaultAgeMin = 18
	defaultAgeMax = 65
)

// AdTargetingService proposes an audience for each forecast product.
type AdTargetingService interface {
	Suggest(ctx context.Context, forecasts []models.ProductForecast) ([]models.AdSuggestion, error)
}

// RuleTargeting targets the dominant gender and age band of past buyers in
// a single region.
type RuleTargeting struct {
	Region string
}

func (r RuleTargeting) Suggest(ctx context.Context, forecasts []models.ProductForecast) ([]models.AdSuggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]models.AdSuggestion, 0, len(forecasts))
	for _, fc := range forecasts {
		gender := AdGenderFemale
		if fc.MalePct > fc.FemalePct {
			gender = AdGenderMale
		}
		ageMin, ageMax := ageRange(fc.TopAgeGroup)
		out = append(out, models.AdSuggestion{
			Product: fc.Product,
			Targeting: models.Targeting{
				Genders: []int{gender},
				AgeMin:  ageMin,
				AgeMax:  ageMax,
				Regions: []models.RegionKey{{Key: r.Region}},
			},
		})
	}
	return out, nil
}

// ageRange parses bands like "25-34". Anything else targets 18 to 65.
func ageRange(group string) (int, int) {
	lo, hi, ok := strings.Cut(group, "-")
	if !ok {
		return defaultAgeMin, defaultAgeMax
	}
	from, err1 := strconv.Atoi(strings.TrimSpace(lo))
	to, err2 := strconv.Atoi(strings.TrimSpace(hi))
	if err1 != nil || err2 != nil {
		return defaultAgeMin, defaultAgeMax
	}
	return from, to
}
