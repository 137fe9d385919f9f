package storage

import (
	"encoding/json"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/sim"
)

type ExportData struct {
	Preset      string             `json:"preset"`
	Integrator  string             `json:"integrator"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Steps       int                `json:"steps"`
	Bodies      []string           `json:"bodies"`
	Times       []float64          `json:"times"`
	Positions   [][]*mgl64.Vec3    `json:"positions"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run as indented JSON. Removed bodies appear as null
// since JSON has no NaN.
func ExportJSON(w io.Writer, meta *RunMetadata, result *sim.Result) error {
	data := ExportData{
		Preset:      meta.Preset,
		Integrator:  meta.Integrator,
		Dt:          meta.Dt,
		Duration:    meta.Duration,
		Steps:       result.StepsTaken,
		Bodies:      result.Names,
		Times:       result.Times,
		Positions:   make([][]*mgl64.Vec3, len(result.Positions)),
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}

	for i, row := range result.Positions {
		data.Positions[i] = make([]*mgl64.Vec3, len(row))
		for j := range row {
			if math.IsNaN(row[j][0]) {
				continue
			}
			data.Positions[i][j] = &row[j]
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
