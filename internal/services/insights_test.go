package services

import (
	"context"
	"strings"
	"testing"

	"github.com/mejd2001/ai-analyzer/internal/models"
)

func TestTemplateInsights_Generate(t *testing.T) {
	g := NewTemplateInsights("TND")
	g.Pick = func(int) int { return 0 }

	got, err := g.Generate(context.Background(), SummaryStats{KPIs: models.KPIs{
		TotalRevenue:          12345.6,
		TotalOrders:           10,
		MostProfitableProduct: "laptop",
		TopCategory:           "electronics",
		BestDay:               "Monday",
	}})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d insights, want 5", len(got))
	}

	checks := []string{"TND 12,346", "10 orders", "TND 1,235"}
	for _, c := range checks {
		if !strings.Contains(got[0], c) {
			t.Errorf("overview %q does not contain %q", got[0], c)
		}
	}
	if !strings.Contains(got[1], "Laptop is your #1") {
		t.Errorf("unexpected product line: %q", got[1])
	}
	if !strings.Contains(got[2], "Electronics category") {
		t.Errorf("unexpected category line: %q", got[2])
	}
	if !strings.Contains(got[3], "Mondays") {
		t.Errorf("unexpected weekday line: %q", got[3])
	}
	if got[4] != growthTips[0] {
		t.Errorf("tip = %q, want %q", got[4], growthTips[0])
	}
}

func TestTemplateInsights_NoOrders(t *testing.T) {
	g := &TemplateInsights{Currency: "EUR"}
	got, err := g.Generate(context.Background(), SummaryStats{KPIs: ComputeKPIs(&models.Table{})})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(got[0], "EUR 0 from 0 orders") {
		t.Errorf("unexpected overview: %q", got[0])
	}
}

func TestRuleTargeting_Suggest(t *testing.T) {
	got, err := RuleTargeting{Region: "TN"}.Suggest(context.Background(), []models.ProductForecast{
		{Product: "Tea", MalePct: 70, FemalePct: 30, TopAgeGroup: "25-34"},
		{Product: "Cup", MalePct: 50, FemalePct: 50, TopAgeGroup: "45+"},
		{Product: "Mug", MalePct: 10, FemalePct: 90, TopAgeGroup: "Unknown"},
	})
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}

	tests := []struct {
		product        string
		gender         int
		ageMin, ageMax int
	}{
		{"Tea", AdGenderMale, 25, 34},
		{"Cup", AdGenderFemale, 18, 65},
		{"Mug", AdGenderFemale, 18, 65},
	}
	for i, tt := range tests {
		s := got[i]
		if s.Product != tt.product {
			t.Errorf("[%d] product = %q, want %q", i, s.Product, tt.product)
		}
		if len(s.Targeting.Genders) != 1 || s.Targeting.Genders[0] != tt.gender {
			t.Errorf("[%d] genders = %v, want [%d]", i, s.Targeting.Genders, tt.gender)
		}
		if s.Targeting.AgeMin != tt.ageMin || s.Targeting.AgeMax != tt.ageMax {
			t.Errorf("[%d] ages = %d-%d, want %d-%d", i, s.Targeting.AgeMin, s.Targeting.AgeMax, tt.ageMin, tt.ageMax)
		}
		if len(s.Targeting.Regions) != 1 || s.Targeting.Regions[0].Key != "TN" {
			t.Errorf("[%d] regions = %v", i, s.Targeting.Regions)
		}
	}
}
