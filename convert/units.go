package convert

import "math"

// DXF $INSUNITS 代码
const (
	UnitUnitless    = 0
	UnitInches      = 1
	UnitFeet        = 2
	UnitMiles       = 3
	UnitMillimeters = 4
	UnitCentimeters = 5
	UnitMeters      = 6
	UnitKilometers  = 7
	UnitMicroinches = 8
	UnitMils        = 9
	UnitYards       = 10
	UnitAngstroms   = 11
	UnitNanometers  = 12
	UnitMicrons     = 13
	UnitDecimeters  = 14
	UnitDecameters  = 15
	UnitHectometers = 16
	UnitGigameters  = 17
	UnitAU          = 18
	UnitLightYears  = 19
	UnitParsecs     = 20
)

// millimetersPerUnit 每个绘图单位对应的毫米数
var millimetersPerUnit = map[int]float64{
	UnitInches:      25.4,
	UnitFeet:        304.8,
	UnitMiles:       1609344,
	UnitMillimeters: 1,
	UnitCentimeters: 10,
	UnitMeters:      1000,
	UnitKilometers:  1e6,
	UnitMicroinches: 25.4e-6,
	UnitMils:        25.4e-3,
	UnitYards:       914.4,
	UnitAngstroms:   1e-7,
	UnitNanometers:  1e-6,
	UnitMicrons:     1e-3,
	UnitDecimeters:  100,
	UnitDecameters:  1e4,
	UnitHectometers: 1e5,
	UnitGigameters:  1e12,
	UnitAU:          1.495978707e14,
	UnitLightYears:  9.4607304725808e18,
	UnitParsecs:     3.0856775814913673e19,
}

// MillimetersPerUnit 未知或无单位按毫米处理
func MillimetersPerUnit(units int) float64 {
	if mm, ok := millimetersPerUnit[units]; ok {
		return mm
	}
	return 1
}

// ResolveScale 一个 DXF 绘图单位对应的像素数
func ResolveScale(units int, pxPerMM float64) (float64, error) {
	if pxPerMM <= 0 || math.IsNaN(pxPerMM) || math.IsInf(pxPerMM, 0) {
		return 0, invalidConfig("pixels per mm must be a positive number, got %v", pxPerMM)
	}
	return MillimetersPerUnit(units) * pxPerMM, nil
}

var unitNames = map[int]string{
	UnitUnitless:    "unitless",
	UnitInches:      "inches",
	UnitFeet:        "feet",
	UnitMiles:       "miles",
	UnitMillimeters: "millimeters",
	UnitCentimeters: "centimeters",
	UnitMeters:      "meters",
	UnitKilometers:  "kilometers",
	UnitMicroinches: "microinches",
	UnitMils:        "mils",
	UnitYards:       "yards",
	UnitAngstroms:   "angstroms",
	UnitNanometers:  "nanometers",
	UnitMicrons:     "microns",
	UnitDecimeters:  "decimeters",
	UnitDecameters:  "decameters",
	UnitHectometers: "hectometers",
	UnitGigameters:  "gigameters",
	UnitAU:          "astronomical units",
	UnitLightYears:  "light years",
	UnitParsecs:     "parsecs",
}

func unitName(units int) string {
	if name, ok := unitNames[units]; ok {
		return name
	}
	return "unknown"
}
