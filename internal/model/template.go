package model

import (
	"time"
)

// Ingredient is one excipient line of a base formulation.
type Ingredient struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"` // Percent of the excipient base
}

// FormulationTemplate is the reusable excipient base for a product type.
type FormulationTemplate struct {
	ID          string       `json:"id"`
	ProductType string       `json:"product_type"`
	Description string       `json:"description"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
	Ingredients []Ingredient `json:"ingredients"`
}

// NewFormulationTemplate creates a template with a fresh ID and timestamps.
func NewFormulationTemplate(productType, description string, ingredients []Ingredient) FormulationTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return FormulationTemplate{
		ID:          NewJobID(),
		ProductType: productType,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Ingredients: copyIngredients(ingredients),
	}
}

// TotalPercentage sums the ingredient percentages.
func (t FormulationTemplate) TotalPercentage() float64 {
	var total float64
	for _, in := range t.Ingredients {
		total += in.Percentage
	}
	return total
}

// TemplateStore holds a collection of formulation templates.
type TemplateStore struct {
	Templates []FormulationTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []FormulationTemplate{},
	}
}

// DefaultTemplateStore returns the built-in base formulations.
func DefaultTemplateStore() TemplateStore {
	ts := NewTemplateStore()
	ts.Add(NewFormulationTemplate("Rapid Dissolve Tablet (RDT)", "Mannitol/PVP base", []Ingredient{
		{Name: "Mannitol", Percentage: 45},
		{Name: "PVP K30", Percentage: 20},
		{Name: "PEG 400", Percentage: 20},
		{Name: "Sucralose", Percentage: 5},
		{Name: "Magnesium Stearate", Percentage: 5},
		{Name: "Peppermint Flavour", Percentage: 5},
	}))
	ts.Add(NewFormulationTemplate("Fast Melt", "Mannitol SD base", []Ingredient{
		{Name: "Mannitol (SD 200)", Percentage: 60},
		{Name: "Crospovidone", Percentage: 15},
		{Name: "PVP K30", Percentage: 10},
		{Name: "PEG 400", Percentage: 10},
		{Name: "Flavour", Percentage: 3},
		{Name: "Sucralose", Percentage: 2},
	}))
	ts.Add(NewFormulationTemplate("Lozenge", "Isomalt/xylitol base", []Ingredient{
		{Name: "Isomalt", Percentage: 40},
		{Name: "Xylitol", Percentage: 20},
		{Name: "Methocel E4M", Percentage: 15},
		{Name: "FLOCEL", Percentage: 10},
		{Name: "PEG 400", Percentage: 10},
		{Name: "Flavour + Sucralose", Percentage: 5},
	}))
	ts.Add(NewFormulationTemplate("Biphasic Tablet", "HPMC/MCC base", []Ingredient{
		{Name: "Methocel K100M", Percentage: 40},
		{Name: "Microcrystalline Cellulose", Percentage: 40},
		{Name: "PEG 400", Percentage: 15},
		{Name: "Magnesium Stearate", Percentage: 5},
	}))
	return ts
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t FormulationTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Upsert replaces the template for the same product type, or adds it.
func (ts *TemplateStore) Upsert(t FormulationTemplate) {
	for i := range ts.Templates {
		if ts.Templates[i].ProductType == t.ProductType {
			t.ID = ts.Templates[i].ID
			t.CreatedAt = ts.Templates[i].CreatedAt
			t.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
			ts.Templates[i] = t
			return
		}
	}
	ts.Add(t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *FormulationTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// FindByProductType returns a pointer to the first template for the
// product type, or nil.
func (ts *TemplateStore) FindByProductType(productType string) *FormulationTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ProductType == productType {
			return &ts.Templates[i]
		}
	}
	return nil
}

// ProductTypes returns the product types in store order.
func (ts *TemplateStore) ProductTypes() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.ProductType
	}
	return names
}

func copyIngredients(in []Ingredient) []Ingredient {
	if in == nil {
		return []Ingredient{}
	}
	cp := make([]Ingredient, len(in))
	copy(cp, in)
	return cp
}
