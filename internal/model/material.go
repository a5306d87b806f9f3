package model

// SetMaterialRequest changes one material of a Brayns model. Fields are
// checked in declaration order, the first missing one is reported.
type SetMaterialRequest struct {
	Host         *string   `json:"host" validate:"required"`
	ModelID      *int64    `json:"modelId" validate:"required"`
	MaterialID   *int64    `json:"materialId" validate:"required"`
	DiffuseColor []float64 `json:"diffuseColor" validate:"required"`
	ShadingMode  *string   `json:"shadingMode" validate:"required"`
	Glossiness   *float64  `json:"glossiness,omitempty"`
	Opacity      *float64  `json:"opacity,omitempty"`
}

func (r *SetMaterialRequest) Validate() error {
	return validateStruct(r)
}
