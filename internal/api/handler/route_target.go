package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/edvin/routemanager/internal/api/request"
	"github.com/edvin/routemanager/internal/api/response"
	"github.com/edvin/routemanager/internal/core"
)

type RouteTarget struct {
	svc *core.VRFService
}

func NewRouteTarget(svc *core.VRFService) *RouteTarget {
	return &RouteTarget{svc: svc}
}

func (h *RouteTarget) AddImport(w http.ResponseWriter, r *http.Request) {
	h.add(w, r, "Import", h.svc.AddImportRT)
}

func (h *RouteTarget) AddExport(w http.ResponseWriter, r *http.Request) {
	h.add(w, r, "Export", h.svc.AddExportRT)
}

func (h *RouteTarget) RemoveImport(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "Import", h.svc.RemoveImportRT)
}

func (h *RouteTarget) RemoveExport(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "Export", h.svc.RemoveExportRT)
}

type rtOp func(ctx context.Context, namespace, name, rt string) error

func (h *RouteTarget) add(w http.ResponseWriter, r *http.Request, direction string, op rtOp) {
	var req request.RouteTarget
	if err := request.Decode(r, &req); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	namespace, name := vrfKey(r)
	if err := op(r.Context(), namespace, name, req.RT); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteMessage(w, fmt.Sprintf("%s RT %s added", direction, req.RT))
}

func (h *RouteTarget) remove(w http.ResponseWriter, r *http.Request, direction string, op rtOp) {
	namespace, name := vrfKey(r)
	rt := pathParam(r, "rt")

	if err := op(r.Context(), namespace, name, rt); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteMessage(w, fmt.Sprintf("%s RT %s removed", direction, rt))
}
