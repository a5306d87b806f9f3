package model

type ListTargetsRequest struct {
	CircuitPath *string `json:"circuitPath" validate:"required"`
}

func (r *ListTargetsRequest) Validate() error {
	return validateStruct(r)
}

type ListGIDsRequest struct {
	CircuitPath *string  `json:"circuitPath" validate:"required"`
	Targets     []string `json:"targets" validate:"required"`
}

func (r *ListGIDsRequest) Validate() error {
	return validateStruct(r)
}

// ConnectivityRequest is shared by the afferent and efferent queries.
type ConnectivityRequest struct {
	CircuitPath *string `json:"circuitPath" validate:"required"`
	SourcesGIDs []int64 `json:"sourcesGIDs" validate:"required"`
}

func (r *ConnectivityRequest) Validate() error {
	return validateStruct(r)
}

type ImportConnectomeRequest struct {
	CircuitPath *string `json:"circuitPath" validate:"required"`
	File        *string `json:"file" validate:"required"`
}

func (r *ImportConnectomeRequest) Validate() error {
	return validateStruct(r)
}
