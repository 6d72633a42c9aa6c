package handler

import (
	"net/http"

	"github.com/edvin/routemanager/internal/api/request"
	"github.com/edvin/routemanager/internal/api/response"
	"github.com/edvin/routemanager/internal/core"
)

type Prefix struct {
	svc *core.VRFService
}

func NewPrefix(svc *core.VRFService) *Prefix {
	return &Prefix{svc: svc}
}

func (h *Prefix) Add(w http.ResponseWriter, r *http.Request) {
	var req request.Prefix
	if err := request.Decode(r, &req); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	namespace, name := vrfKey(r)
	if err := h.svc.AddPrefix(r.Context(), namespace, name, req.CIDR); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteMessage(w, "Prefix "+req.CIDR+" added")
}

// Remove takes the CIDR from a JSON body on DELETE.
func (h *Prefix) Remove(w http.ResponseWriter, r *http.Request) {
	var req request.Prefix
	if err := request.Decode(r, &req); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	namespace, name := vrfKey(r)
	if err := h.svc.RemovePrefix(r.Context(), namespace, name, req.CIDR); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteMessage(w, "Prefix "+req.CIDR+" removed")
}
