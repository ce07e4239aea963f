package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/tabletpath/internal/formulation"
)

func TestLoadFormulationsCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "formulations.json")

	catalog, err := LoadFormulations(path)
	if err != nil {
		t.Fatalf("LoadFormulations failed: %v", err)
	}
	if len(catalog) != len(formulation.Catalog()) {
		t.Errorf("expected built-in catalog, got %d entries", len(catalog))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected default catalog to be saved: %v", err)
	}

	again, err := LoadFormulations(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	f, ok := formulation.LookupIn(again, "bupropion")
	if !ok || !f.DualHead() {
		t.Errorf("expected dual-head bupropion after reload, got %+v", f)
	}
}

func TestImportFormulationsSkipsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.json")
	extra := []formulation.Formulation{
		{API: "MELATONIN", Heads: []formulation.Head{{Density: 2}}},
		{API: "Estriol", Heads: []formulation.Head{{Density: 1, DryLoading: 5, LineWidth: 0.8, LayerHeight: 0.4}}},
	}
	if err := SaveFormulations(path, extra); err != nil {
		t.Fatal(err)
	}

	merged, err := ImportFormulations(path, formulation.Catalog())
	if err != nil {
		t.Fatalf("ImportFormulations failed: %v", err)
	}
	if len(merged) != len(formulation.Catalog())+1 {
		t.Fatalf("expected one new entry, got %d total", len(merged))
	}
	m, _ := formulation.LookupIn(merged, "melatonin")
	if m.Heads[0].Density == 2 {
		t.Error("existing melatonin entry was overwritten")
	}
}

func TestImportFormulationsMissingFile(t *testing.T) {
	existing := formulation.Catalog()
	out, err := ImportFormulations(filepath.Join(t.TempDir(), "none.json"), existing)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(out) != len(existing) {
		t.Error("existing catalog should be returned unchanged")
	}
}
