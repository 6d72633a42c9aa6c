package core

import "github.com/edvin/routemanager/internal/graph"

type Services struct {
	Inventory *Inventory
	VRF       *VRFService
}

func NewServices(store graph.Store) *Services {
	inv := NewInventory(store)
	return &Services{
		Inventory: inv,
		VRF:       NewVRFService(inv),
	}
}
