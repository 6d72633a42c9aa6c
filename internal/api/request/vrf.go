package request

type CreateVRF struct {
	Name      string `json:"name" validate:"required"`
	Namespace string `json:"namespace"`
	RD        string `json:"rd" validate:"required,rdrt"`
}

type RouteTarget struct {
	RT string `json:"rt" validate:"required,rdrt"`
}

type Prefix struct {
	CIDR string `json:"cidr" validate:"required,cidrnet"`
}
