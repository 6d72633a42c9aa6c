package handler

import (
	"net/http"

	"github.com/edvin/routemanager/internal/api/request"
	"github.com/edvin/routemanager/internal/api/response"
	"github.com/edvin/routemanager/internal/core"
)

type VRF struct {
	svc *core.VRFService
}

func NewVRF(svc *core.VRFService) *VRF {
	return &VRF{svc: svc}
}

// List returns every VRF, filtered by the namespace query parameter when
// it is set.
func (h *VRF) List(w http.ResponseWriter, r *http.Request) {
	vrfs, err := h.svc.List(r.Context(), r.URL.Query().Get("namespace"))
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, vrfs)
}

func (h *VRF) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateVRF
	if err := request.Decode(r, &req); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	vrf, err := h.svc.Create(r.Context(), req.Name, req.Namespace, req.RD)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, vrf)
}

func (h *VRF) Get(w http.ResponseWriter, r *http.Request) {
	namespace, name := vrfKey(r)

	vrf, err := h.svc.Get(r.Context(), namespace, name)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, vrf)
}

func (h *VRF) Delete(w http.ResponseWriter, r *http.Request) {
	namespace, name := vrfKey(r)

	if err := h.svc.Delete(r.Context(), namespace, name); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteMessage(w, "VRF deleted")
}
