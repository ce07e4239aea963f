package model

// FirmwareProfile defines the command dialect of one printer controller.
// The literals are parsed by the firmware and must be emitted verbatim.
type FirmwareProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// Startup codes
	Title     string   `json:"title"`      // First comment line of every program
	StartCode []string `json:"start_code"` // Units, positioning, homing, extruder mode
	MotionSet []string `json:"motion_set"` // Acceleration, feed-rate and jerk limits

	// Motion
	LinearMove    string  `json:"linear_move"`    // G1 or equivalent
	PrimaryAxis   string  `json:"primary_axis"`   // Extrusion axis of head 0
	SecondaryAxis string  `json:"secondary_axis"` // Extrusion axis of head 1
	LayerFeed     float64 `json:"layer_feed"`     // Feed for the per-layer Z move, mm/min

	// Retraction after each layer, and axis resets
	RetractPrimary   float64  `json:"retract_primary"`   // mm
	RetractSecondary float64  `json:"retract_secondary"` // mm
	RetractFeed      float64  `json:"retract_feed"`      // mm/min
	ResetCode        []string `json:"reset_code"`        // Zero both extrusion counters

	// Unit separation
	LiftZ    float64 `json:"lift_z"`    // Absolute Z after a unit, mm
	LiftFeed float64 `json:"lift_feed"` // mm/min

	// Template injection mode
	ToolSelect []string `json:"tool_select"` // Head-select opcodes, T0 then T1
	InjectFeed     string   `json:"inject_feed"`     // Feed directive issued after a head select
	InjectPreamble []string `json:"inject_preamble"` // Mode codes ahead of an injected template

	// End codes
	EndCode []string `json:"end_code"`

	// Comment style
	CommentPrefix string `json:"comment_prefix"`

	// Number formatting
	CoordDecimals     int `json:"coord_decimals"`     // X/Y places
	ZDecimals         int `json:"z_decimals"`         // Layer Z places
	ExtrusionDecimals int `json:"extrusion_decimals"` // E/D places
}

// Built-in firmware profiles.
var FirmwareProfiles = []FirmwareProfile{
	{
		Name:        "CraftHealth",
		Description: "Craft Health dual-syringe paste printer",
		Title:       "; Craft Health G-code",
		StartCode:   []string{"G21", "G90", "G28", "M83"},
		MotionSet: []string{
			"M201 E8000 D8000 X1000 Y1000 Z200 W200",
			"M203 X100000 Y100000 E8000 D8000",
			"M204 P4000 R4000 T1000",
			"J11 W1 Z1",
		},
		LinearMove:        "G1",
		PrimaryAxis:       "E",
		SecondaryAxis:     "D",
		LayerFeed:         1500,
		RetractPrimary:    2,
		RetractSecondary:  2,
		RetractFeed:       1800,
		ResetCode:         []string{"G92 E0", "G92 D0"},
		LiftZ:             5,
		LiftFeed:          3000,
		ToolSelect:        []string{"T0", "T1"},
		InjectFeed:        "G1 F900",
		InjectPreamble:    []string{"G21", "G90", "M83"},
		EndCode:           []string{"M104 S0", "M140 S0", "M84"},
		CommentPrefix:     ";",
		CoordDecimals:     2,
		ZDecimals:         2,
		ExtrusionDecimals: 3,
	},
	{
		Name:        "NCC",
		Description: "NCC production dialect: homing first, 3-decimal coordinates, short retraction",
		Title:       "; NCC G-code Generator",
		StartCode:   []string{"G28", "M83", "G21", "G90"},
		MotionSet: []string{
			"M201 E8000 D8000 X1000 Y1000 Z200 W200",
			"M203 X100000 Y100000 E8000 D8000",
			"M204 P4000 R4000 T1000",
			"J11 W1 Z1",
		},
		LinearMove:        "G1",
		PrimaryAxis:       "E",
		SecondaryAxis:     "D",
		LayerFeed:         1500,
		RetractPrimary:    1,
		RetractSecondary:  1,
		RetractFeed:       1800,
		ResetCode:         []string{"G92 E0", "G92 D0"},
		LiftZ:             5,
		LiftFeed:          3000,
		ToolSelect:        []string{"T0", "T1"},
		InjectFeed:        "G1 F900",
		InjectPreamble:    []string{"G21", "G90", "M83"},
		EndCode:           []string{"M104 S0", "M140 S0", "M84"},
		CommentPrefix:     ";",
		CoordDecimals:     3,
		ZDecimals:         2,
		ExtrusionDecimals: 3,
	},
}

// GetProfile returns a firmware profile by name, or the CraftHealth
// profile if not found.
func GetProfile(name string) FirmwareProfile {
	for _, p := range FirmwareProfiles {
		if p.Name == name {
			return p
		}
	}
	return FirmwareProfiles[0]
}

// GetProfileNames returns a list of all available profile names.
func GetProfileNames() []string {
	var names []string
	for _, p := range FirmwareProfiles {
		names = append(names, p.Name)
	}
	return names
}
