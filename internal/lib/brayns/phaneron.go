package brayns

import (
	"context"
)

// ShadingMode is the Phaneron material shader.
type ShadingMode int

const (
	ShadingNone ShadingMode = iota
	ShadingDiffuse
	ShadingElectron
	ShadingCartoon
	ShadingElectronTransparency
	ShadingPerlin
	ShadingDiffuseTransparency
	ShadingChecker
)

// ParseShadingMode maps the names accepted by the material endpoint. Names
// are matched exactly; anything else, "Diffuse" included, gives ShadingNone.
func ParseShadingMode(name string) ShadingMode {
	switch name {
	case "diffuse":
		return ShadingDiffuse
	case "electron":
		return ShadingElectron
	case "cartoon":
		return ShadingCartoon
	default:
		return ShadingNone
	}
}

// ClippingMode values of a Phaneron material.
const (
	ClippingNone = 0
)

// Material holds the parameters of the "set-material" call.
type Material struct {
	ModelID            int64       `json:"modelId"`
	MaterialID         int64       `json:"materialId"`
	DiffuseColor       []float64   `json:"diffuseColor"`
	SpecularColor      []float64   `json:"specularColor"`
	SpecularExponent   float64     `json:"specularExponent"`
	ReflectionIndex    float64     `json:"reflectionIndex"`
	Opacity            float64     `json:"opacity"`
	RefractionIndex    float64     `json:"refractionIndex"`
	Emission           float64     `json:"emission"`
	Glossiness         float64     `json:"glossiness"`
	SimulationDataCast bool        `json:"simulationDataCast"`
	ShadingMode        ShadingMode `json:"shadingMode"`
	ClippingMode       int         `json:"clippingMode"`
	UserParameter      float64     `json:"userParameter"`
}

// NewMaterial returns a material with the CircuitExplorer defaults:
// white specular, exponent 20, opaque, not glossy.
func NewMaterial(modelID, materialID int64, diffuse []float64, mode ShadingMode) Material {
	return Material{
		ModelID:            modelID,
		MaterialID:         materialID,
		DiffuseColor:       diffuse,
		SpecularColor:      []float64{1, 1, 1},
		SpecularExponent:   20,
		ReflectionIndex:    0,
		Opacity:            1,
		RefractionIndex:    1,
		Emission:           0,
		Glossiness:         0,
		SimulationDataCast: true,
		ShadingMode:        mode,
		ClippingMode:       ClippingNone,
		UserParameter:      1,
	}
}

// CircuitExplorer wraps the Phaneron/CircuitExplorer plugin entry points.
type CircuitExplorer struct {
	rpc Requester
}

func NewCircuitExplorer(rpc Requester) *CircuitExplorer {
	return &CircuitExplorer{rpc: rpc}
}

// SetMaterialExtraAttributes enables the extended material attributes of a
// model. It must be called before SetMaterial.
func (ce *CircuitExplorer) SetMaterialExtraAttributes(ctx context.Context, modelID int64) error {
	return ce.rpc.Request(ctx, "set-material-extra-attributes", map[string]int64{"modelId": modelID}, nil)
}

func (ce *CircuitExplorer) SetMaterial(ctx context.Context, m Material) error {
	return ce.rpc.Request(ctx, "set-material", m, nil)
}
