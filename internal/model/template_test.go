package model

import (
	"math"
	"testing"
)

func TestNewFormulationTemplate(t *testing.T) {
	ingredients := []Ingredient{
		{Name: "Isomalt", Percentage: 60},
		{Name: "PEG 400", Percentage: 40},
	}
	tmpl := NewFormulationTemplate("Lozenge", "test base", ingredients)

	if tmpl.ProductType != "Lozenge" {
		t.Errorf("expected product type Lozenge, got %q", tmpl.ProductType)
	}
	if tmpl.ID == "" {
		t.Error("expected non-empty ID")
	}
	if tmpl.CreatedAt == "" || tmpl.UpdatedAt != tmpl.CreatedAt {
		t.Errorf("unexpected timestamps %q %q", tmpl.CreatedAt, tmpl.UpdatedAt)
	}
	if tmpl.TotalPercentage() != 100 {
		t.Errorf("expected total 100, got %f", tmpl.TotalPercentage())
	}

	// Template owns its own copy of the ingredients.
	ingredients[0].Percentage = 1
	if tmpl.Ingredients[0].Percentage != 60 {
		t.Error("template shares the caller's ingredient slice")
	}
}

func TestDefaultTemplateStoreSumsToHundred(t *testing.T) {
	ts := DefaultTemplateStore()
	if len(ts.Templates) != 4 {
		t.Fatalf("expected 4 built-in templates, got %d", len(ts.Templates))
	}
	limits := DefaultAPILimits()
	for _, tmpl := range ts.Templates {
		if math.Abs(tmpl.TotalPercentage()-100) > 1e-9 {
			t.Errorf("%s sums to %f, want 100", tmpl.ProductType, tmpl.TotalPercentage())
		}
		if _, ok := limits[tmpl.ProductType]; !ok {
			t.Errorf("%s has no API limit", tmpl.ProductType)
		}
	}
}

func TestTemplateStoreAddRemoveFind(t *testing.T) {
	ts := NewTemplateStore()
	a := NewFormulationTemplate("A", "", nil)
	b := NewFormulationTemplate("B", "", nil)
	ts.Add(a)
	ts.Add(b)

	if got := ts.FindByID(b.ID); got == nil || got.ProductType != "B" {
		t.Errorf("FindByID(%s) = %v", b.ID, got)
	}
	if got := ts.FindByProductType("A"); got == nil || got.ID != a.ID {
		t.Errorf("FindByProductType(A) = %v", got)
	}
	if ts.FindByID("missing") != nil {
		t.Error("expected nil for missing ID")
	}

	if !ts.Remove(a.ID) {
		t.Error("Remove returned false for existing template")
	}
	if ts.Remove(a.ID) {
		t.Error("Remove returned true for removed template")
	}
	names := ts.ProductTypes()
	if len(names) != 1 || names[0] != "B" {
		t.Errorf("unexpected product types %v", names)
	}
}

func TestTemplateStoreUpsertKeepsIdentity(t *testing.T) {
	ts := NewTemplateStore()
	orig := NewFormulationTemplate("Fast Melt", "v1", []Ingredient{{Name: "Mannitol", Percentage: 100}})
	ts.Add(orig)

	updated := NewFormulationTemplate("Fast Melt", "v2", []Ingredient{{Name: "Isomalt", Percentage: 100}})
	ts.Upsert(updated)

	if len(ts.Templates) != 1 {
		t.Fatalf("expected upsert to replace, got %d templates", len(ts.Templates))
	}
	got := ts.Templates[0]
	if got.ID != orig.ID || got.CreatedAt != orig.CreatedAt {
		t.Error("upsert should keep the existing ID and creation time")
	}
	if got.Description != "v2" || got.Ingredients[0].Name != "Isomalt" {
		t.Errorf("upsert did not replace content: %+v", got)
	}

	ts.Upsert(NewFormulationTemplate("Gummy", "", nil))
	if len(ts.Templates) != 2 {
		t.Errorf("expected new product type to be added, got %d", len(ts.Templates))
	}
}
