package model

// Graph node labels.
const (
	LabelVRF         = "VRF"
	LabelRouteTarget = "RouteTarget"
	LabelPrefix      = "Prefix"
)

// Graph edge types. IMPORTS and EXPORTS point VRF -> RouteTarget,
// BELONGS_TO points Prefix -> VRF.
const (
	EdgeImports   = "IMPORTS"
	EdgeExports   = "EXPORTS"
	EdgeBelongsTo = "BELONGS_TO"
)

// DefaultNamespace is used when a VRF is created without a namespace.
const DefaultNamespace = "default"

// VRF is a routing instance, unique by (Namespace, Name) and by RD.
type VRF struct {
	ID        string `json:"-"`
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	RD        string `json:"rd"`
}

// RouteTarget is shared between VRFs and never deleted.
type RouteTarget struct {
	ID string `json:"-"`
	RT string `json:"rt"`
}

// Prefix belongs to exactly one VRF.
type Prefix struct {
	ID   string `json:"-"`
	CIDR string `json:"cidr"`
}

// VRFRecord is a VRF with its relationships resolved to flat lists.
type VRFRecord struct {
	Name      string   `json:"name"`
	Namespace string   `json:"namespace"`
	RD        string   `json:"rd"`
	Imports   []string `json:"imports"`
	Exports   []string `json:"exports"`
	Prefixes  []string `json:"prefixes"`
}

// NewVRFRecord returns a record for v with empty relationship lists.
func NewVRFRecord(v *VRF) *VRFRecord {
	return &VRFRecord{
		Name:      v.Name,
		Namespace: v.Namespace,
		RD:        v.RD,
		Imports:   []string{},
		Exports:   []string{},
		Prefixes:  []string{},
	}
}
