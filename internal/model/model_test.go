package model

import (
	"errors"
	"math"
	"testing"
)

func TestOutlinePerimeterAndClose(t *testing.T) {
	square := Outline{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if square.IsClosed() {
		t.Fatal("open square reported as closed")
	}

	closed := square.Close()
	if !closed.IsClosed() {
		t.Fatal("Close() did not close the outline")
	}
	if len(closed) != 5 {
		t.Errorf("expected 5 points, got %d", len(closed))
	}
	if closed.Segments() != 4 {
		t.Errorf("expected 4 segments, got %d", closed.Segments())
	}
	if math.Abs(closed.Perimeter()-40) > 1e-12 {
		t.Errorf("expected perimeter 40, got %f", closed.Perimeter())
	}
	if len(square) != 4 {
		t.Error("Close() must not modify the receiver")
	}

	// Closing twice is a no-op.
	if len(closed.Close()) != 5 {
		t.Error("Close() on a closed outline added a point")
	}
}

func TestOutlineSignedAreaWinding(t *testing.T) {
	ccw := Outline{{0, 0}, {4, 0}, {4, 2}, {0, 2}, {0, 0}}
	if a := ccw.SignedArea(); math.Abs(a-8) > 1e-12 {
		t.Errorf("expected area 8 for CCW rectangle, got %f", a)
	}

	cw := Outline{{0, 0}, {0, 2}, {4, 2}, {4, 0}, {0, 0}}
	if a := cw.SignedArea(); math.Abs(a+8) > 1e-12 {
		t.Errorf("expected area -8 for CW rectangle, got %f", a)
	}
}

func TestOutlineTranslateAndBoundingBox(t *testing.T) {
	o := Outline{{-1, -2}, {3, -2}, {3, 4}, {-1, -2}}
	moved := o.Translate(24, 48)

	min, max := moved.BoundingBox()
	if min != (Point2D{23, 46}) || max != (Point2D{27, 52}) {
		t.Errorf("unexpected bounding box %v %v", min, max)
	}
	if o[0] != (Point2D{-1, -2}) {
		t.Error("Translate must not modify the receiver")
	}
	if !moved.IsClosed() {
		t.Error("translation should preserve closure")
	}
}

func TestOutlineDegenerate(t *testing.T) {
	var empty Outline
	if empty.Segments() != 0 || empty.Perimeter() != 0 || empty.IsClosed() {
		t.Error("empty outline should have no segments and no perimeter")
	}
	single := Outline{{1, 1}}
	if single.Segments() != 0 {
		t.Errorf("expected 0 segments, got %d", single.Segments())
	}
}

func TestParseShapeKind(t *testing.T) {
	tests := []struct {
		in   string
		want ShapeKind
	}{
		{"circle", ShapeCircle},
		{"Round", ShapeCircle},
		{" cylinder ", ShapeCircle},
		{"DISC", ShapeCircle},
		{"oval", ShapeOval},
		{"Caplet", ShapeCaplet},
		{"dxf", ShapeCustom},
	}
	for _, tt := range tests {
		got, err := ParseShapeKind(tt.in)
		if err != nil {
			t.Errorf("ParseShapeKind(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseShapeKind(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	_, err := ParseShapeKind("triangle")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Field != "shape" {
		t.Errorf("expected field shape, got %s", cfgErr.Field)
	}
}

func TestParseHeadMode(t *testing.T) {
	for in, want := range map[string]HeadMode{
		"":            HeadSingle,
		"single":      HeadSingle,
		"Single Head": HeadSingle,
		"dual":        HeadDual,
		"Dual Head":   HeadDual,
		"2":           HeadDual,
	} {
		got, err := ParseHeadMode(in)
		if err != nil || got != want {
			t.Errorf("ParseHeadMode(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := ParseHeadMode("triple"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
	if HeadDual.String() != "Dual Head" || HeadSingle.String() != "Single Head" {
		t.Error("unexpected head mode labels")
	}
}

func TestDefaultSettingsValid(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings should validate: %v", err)
	}
	if s.LayerHeight != 0.3 || s.TabletHeight != 3.6 || s.LineWidth != 0.6 || s.Spacing != 24 {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if s.Profile != "CraftHealth" {
		t.Errorf("expected CraftHealth profile, got %s", s.Profile)
	}
}

func TestJobValidate(t *testing.T) {
	base := NewJob("melatonin 3mg", 10, 500, ShapeCircle)
	if err := base.Validate(); err != nil {
		t.Fatalf("valid job rejected: %v", err)
	}
	if base.ID == "" || len(base.ID) != 8 {
		t.Errorf("expected 8-char job ID, got %q", base.ID)
	}

	tests := []struct {
		name  string
		mut   func(j *Job)
		field string
	}{
		{"zero quantity", func(j *Job) { j.Quantity = 0 }, "quantity"},
		{"negative volume", func(j *Job) { j.TargetVolume = -1 }, "target_volume"},
		{"NaN volume", func(j *Job) { j.TargetVolume = math.NaN() }, "target_volume"},
		{"zero layer height", func(j *Job) { j.Settings.LayerHeight = 0 }, "layer_height"},
		{"zero tablet height", func(j *Job) { j.Settings.TabletHeight = 0 }, "tablet_height"},
		{"zero line width", func(j *Job) { j.Settings.LineWidth = 0 }, "line_width"},
		{"negative spacing", func(j *Job) { j.Settings.Spacing = -1 }, "spacing"},
		{"bad head mode", func(j *Job) { j.Settings.HeadMode = "triple" }, "head_mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := base
			tt.mut(&j)
			err := j.Validate()
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, cfgErr.Field)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Error("ConfigurationError should match ErrConfiguration")
			}
		})
	}
}

func TestPrintSettingsRejectNonFinite(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	tests := []struct {
		name  string
		mut   func(s *PrintSettings)
		field string
	}{
		{"NaN layer height", func(s *PrintSettings) { s.LayerHeight = nan }, "layer_height"},
		{"Inf layer height", func(s *PrintSettings) { s.LayerHeight = inf }, "layer_height"},
		{"NaN tablet height", func(s *PrintSettings) { s.TabletHeight = nan }, "tablet_height"},
		{"Inf tablet height", func(s *PrintSettings) { s.TabletHeight = inf }, "tablet_height"},
		{"NaN line width", func(s *PrintSettings) { s.LineWidth = nan }, "line_width"},
		{"Inf line width", func(s *PrintSettings) { s.LineWidth = inf }, "line_width"},
		{"NaN spacing", func(s *PrintSettings) { s.Spacing = nan }, "spacing"},
		{"Inf spacing", func(s *PrintSettings) { s.Spacing = inf }, "spacing"},
		{"negative Inf spacing", func(s *PrintSettings) { s.Spacing = math.Inf(-1) }, "spacing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mut(&s)
			err := s.Validate()
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestZeroSpacingIsValid(t *testing.T) {
	s := DefaultSettings()
	s.Spacing = 0
	if err := s.Validate(); err != nil {
		t.Errorf("zero spacing should be accepted: %v", err)
	}
}

func TestDefaultShapeParams(t *testing.T) {
	if p := DefaultShapeParams(ShapeCircle); p.Radius != 6 || p.Segments != 16 {
		t.Errorf("unexpected circle defaults %+v", p)
	}
	if p := DefaultShapeParams(ShapeOval); p.Length != 12 || p.Width != 6 || p.Segments != 24 {
		t.Errorf("unexpected oval defaults %+v", p)
	}
	if p := DefaultShapeParams(ShapeCaplet); p.Length != 12 || p.Width != 6 || p.Resolution != 8 {
		t.Errorf("unexpected caplet defaults %+v", p)
	}
}

func TestGetProfile(t *testing.T) {
	p := GetProfile("NCC")
	if p.Name != "NCC" || p.CoordDecimals != 3 || p.RetractPrimary != 1 {
		t.Errorf("unexpected NCC profile: %+v", p)
	}

	fallback := GetProfile("NonExistent")
	if fallback.Name != "CraftHealth" {
		t.Errorf("expected CraftHealth fallback, got %s", fallback.Name)
	}

	names := GetProfileNames()
	if len(names) != len(FirmwareProfiles) {
		t.Errorf("expected %d names, got %d", len(FirmwareProfiles), len(names))
	}
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := &ConfigurationError{Field: "quantity", Value: 0, Reason: "must be positive"}
	if got := err.Error(); got != "invalid quantity 0: must be positive" {
		t.Errorf("unexpected message %q", got)
	}
	noValue := &ConfigurationError{Field: "apis", Reason: "at least one API is required"}
	if got := noValue.Error(); got != "invalid apis: at least one API is required" {
		t.Errorf("unexpected message %q", got)
	}
}
