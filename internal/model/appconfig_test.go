package model

import "testing"

func TestDefaultAppConfigMatchesDefaultSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultSettings()

	if cfg.DefaultSettings != defaults {
		t.Errorf("DefaultSettings mismatch: config=%+v settings=%+v", cfg.DefaultSettings, defaults)
	}
	if cfg.DensityMgPerML != 1200 {
		t.Errorf("expected density 1200, got %f", cfg.DensityMgPerML)
	}
	if cfg.RecentJobs == nil {
		t.Error("RecentJobs should not be nil")
	}
}

func TestAPILimitFallback(t *testing.T) {
	cfg := DefaultAppConfig()
	if got := cfg.APILimit("Fast Melt"); got != 0.15 {
		t.Errorf("expected Fast Melt limit 0.15, got %f", got)
	}
	if got := cfg.APILimit("Gummy"); got != 0.25 {
		t.Errorf("expected fallback 0.25, got %f", got)
	}
}

func TestApplyToJob(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultSettings.HeadMode = HeadDual
	cfg.DefaultSettings.Spacing = 30
	cfg.DefaultShape = ShapeCaplet

	var j Job
	cfg.ApplyToJob(&j)

	if j.Settings.HeadMode != HeadDual || j.Settings.Spacing != 30 {
		t.Errorf("settings not applied: %+v", j.Settings)
	}
	if j.Shape != ShapeCaplet || j.ShapeParams.Resolution != 8 {
		t.Errorf("default shape not applied: %s %+v", j.Shape, j.ShapeParams)
	}
	if j.Quantity != 30 {
		t.Errorf("expected default quantity 30, got %d", j.Quantity)
	}

	// An explicit shape is kept.
	k := Job{Shape: ShapeOval, ShapeParams: DefaultShapeParams(ShapeOval), Quantity: 4}
	cfg.ApplyToJob(&k)
	if k.Shape != ShapeOval || k.Quantity != 4 {
		t.Errorf("explicit job fields overwritten: %+v", k)
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := DefaultAppConfig()
	cp := cfg.Clone()
	cp.APILimits["Lozenge"] = 0.5
	cp.AvailableAPIs[0] = "changed"
	cp.RecentJobs = append(cp.RecentJobs, "job.yaml")

	if cfg.APILimits["Lozenge"] != 0.20 {
		t.Error("Clone shares the limits map")
	}
	if cfg.AvailableAPIs[0] == "changed" {
		t.Error("Clone shares the API picklist")
	}
	if len(cfg.RecentJobs) != 0 {
		t.Error("Clone shares recent jobs")
	}
}
