package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/edvin/routemanager/internal/graph"
	"github.com/edvin/routemanager/internal/model"
	"github.com/edvin/routemanager/internal/validate"
)

// VRFService implements the route-management operations on top of an
// Inventory. It holds no state of its own.
//
// Every multi-step operation is a sequence of independent storage calls
// with no enclosing transaction or lock. Two concurrent Create calls for the
// same (namespace, name) or RD can both pass the duplicate checks; the same
// holds for AddPrefix and per-VRF CIDR uniqueness. Every store closes the
// first two races once Inventory.InstallConstraints has run: postgres and
// sqlite with unique indexes, memory with in-process checks. Nothing closes
// the third.
type VRFService struct {
	inv *Inventory
}

func NewVRFService(inv *Inventory) *VRFService {
	return &VRFService{inv: inv}
}

// Create checks (namespace, name) first and RD second, then stores the VRF.
// An empty namespace means model.DefaultNamespace.
func (s *VRFService) Create(ctx context.Context, name, namespace, rd string) (*model.VRFRecord, error) {
	if err := validate.Required("name", name); err != nil {
		return nil, err
	}
	if err := validate.RouteDistinguisher(rd); err != nil {
		return nil, err
	}
	if namespace == "" {
		namespace = model.DefaultNamespace
	}

	existing, err := s.inv.FindVRF(ctx, namespace, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateNameNamespace(namespace, name)
	}
	existing, err = s.inv.FindVRFByRD(ctx, rd)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateRD(rd)
	}

	vrf, err := s.inv.CreateVRF(ctx, name, namespace, rd)
	if err != nil {
		if errors.Is(err, graph.ErrConstraint) {
			return nil, s.raceConflict(ctx, namespace, name, rd)
		}
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("namespace", namespace).
		Str("vrf", name).
		Str("rd", rd).
		Msg("vrf created")
	return model.NewVRFRecord(vrf), nil
}

// raceConflict names the invariant a concurrent writer got to first.
func (s *VRFService) raceConflict(ctx context.Context, namespace, name, rd string) error {
	existing, err := s.inv.FindVRF(ctx, namespace, name)
	if err == nil && existing != nil {
		return duplicateNameNamespace(namespace, name)
	}
	return duplicateRD(rd)
}

// List returns every VRF, or those in namespace when it is non-empty, with
// relationships resolved.
func (s *VRFService) List(ctx context.Context, namespace string) ([]model.VRFRecord, error) {
	vrfs, err := s.inv.ListVRFs(ctx, namespace)
	if err != nil {
		return nil, err
	}
	records := make([]model.VRFRecord, 0, len(vrfs))
	for i := range vrfs {
		rec, err := s.resolve(ctx, &vrfs[i])
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (s *VRFService) Get(ctx context.Context, namespace, name string) (*model.VRFRecord, error) {
	vrf, err := s.mustFindVRF(ctx, namespace, name)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, vrf)
}

// Delete removes the VRF's prefixes one by one and then the VRF itself.
// Route targets it referenced are left in place.
func (s *VRFService) Delete(ctx context.Context, namespace, name string) error {
	vrf, err := s.mustFindVRF(ctx, namespace, name)
	if err != nil {
		return err
	}
	prefixes, err := s.inv.ListPrefixesOfVRF(ctx, vrf)
	if err != nil {
		return err
	}
	for i := range prefixes {
		if err := s.inv.DeletePrefix(ctx, &prefixes[i]); err != nil {
			return err
		}
	}
	if err := s.inv.DeleteVRF(ctx, vrf); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("namespace", namespace).
		Str("vrf", name).
		Int("prefixes", len(prefixes)).
		Msg("vrf deleted")
	return nil
}

func (s *VRFService) AddImportRT(ctx context.Context, namespace, name, rt string) error {
	return s.addRT(ctx, namespace, name, rt, model.EdgeImports)
}

func (s *VRFService) AddExportRT(ctx context.Context, namespace, name, rt string) error {
	return s.addRT(ctx, namespace, name, rt, model.EdgeExports)
}

// RemoveImportRT succeeds without change when the route target does not
// exist or is not imported by the VRF.
func (s *VRFService) RemoveImportRT(ctx context.Context, namespace, name, rt string) error {
	return s.removeRT(ctx, namespace, name, rt, model.EdgeImports)
}

// RemoveExportRT is the export-side counterpart of RemoveImportRT.
func (s *VRFService) RemoveExportRT(ctx context.Context, namespace, name, rt string) error {
	return s.removeRT(ctx, namespace, name, rt, model.EdgeExports)
}

func (s *VRFService) addRT(ctx context.Context, namespace, name, rt, edgeType string) error {
	if err := validate.RouteTarget(rt); err != nil {
		return err
	}
	vrf, err := s.mustFindVRF(ctx, namespace, name)
	if err != nil {
		return err
	}
	target, err := s.getOrCreateRouteTarget(ctx, rt)
	if err != nil {
		return err
	}

	connected, err := s.isConnected(ctx, vrf, target, edgeType)
	if err != nil {
		return err
	}
	if connected {
		return nil
	}
	if edgeType == model.EdgeImports {
		err = s.inv.ConnectImport(ctx, vrf, target)
	} else {
		err = s.inv.ConnectExport(ctx, vrf, target)
	}
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("namespace", namespace).
		Str("vrf", name).
		Str("rt", rt).
		Str("edge", edgeType).
		Msg("route target attached")
	return nil
}

func (s *VRFService) removeRT(ctx context.Context, namespace, name, rt, edgeType string) error {
	vrf, err := s.mustFindVRF(ctx, namespace, name)
	if err != nil {
		return err
	}
	target, err := s.inv.FindRouteTarget(ctx, rt)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}

	connected, err := s.isConnected(ctx, vrf, target, edgeType)
	if err != nil {
		return err
	}
	if !connected {
		return nil
	}
	if edgeType == model.EdgeImports {
		err = s.inv.DisconnectImport(ctx, vrf, target)
	} else {
		err = s.inv.DisconnectExport(ctx, vrf, target)
	}
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("namespace", namespace).
		Str("vrf", name).
		Str("rt", rt).
		Str("edge", edgeType).
		Msg("route target detached")
	return nil
}

// getOrCreateRouteTarget re-reads the route target when a concurrent writer
// created it between the lookup and the insert.
func (s *VRFService) getOrCreateRouteTarget(ctx context.Context, rt string) (*model.RouteTarget, error) {
	target, err := s.inv.FindRouteTarget(ctx, rt)
	if err != nil || target != nil {
		return target, err
	}
	target, err = s.inv.CreateRouteTarget(ctx, rt)
	if errors.Is(err, graph.ErrConstraint) {
		target, err = s.inv.FindRouteTarget(ctx, rt)
		if err == nil && target == nil {
			err = storageErr("create route target", errors.New("route target vanished after constraint violation"))
		}
	}
	return target, err
}

func (s *VRFService) isConnected(ctx context.Context, vrf *model.VRF, rt *model.RouteTarget, edgeType string) (bool, error) {
	if edgeType == model.EdgeImports {
		return s.inv.IsImportConnected(ctx, vrf, rt)
	}
	return s.inv.IsExportConnected(ctx, vrf, rt)
}

// AddPrefix rejects a CIDR string the VRF already holds. The comparison is
// on the string as given, so "10.0.0.5/24" and "10.0.0.0/24" are distinct.
func (s *VRFService) AddPrefix(ctx context.Context, namespace, name, cidr string) error {
	if err := validate.CIDR(cidr); err != nil {
		return err
	}
	vrf, err := s.mustFindVRF(ctx, namespace, name)
	if err != nil {
		return err
	}
	prefixes, err := s.inv.ListPrefixesOfVRF(ctx, vrf)
	if err != nil {
		return err
	}
	for _, p := range prefixes {
		if p.CIDR == cidr {
			return duplicatePrefix()
		}
	}

	prefix, err := s.inv.CreatePrefix(ctx, cidr)
	if err != nil {
		return err
	}
	if err := s.inv.ConnectPrefixToVRF(ctx, prefix, vrf); err != nil {
		// Best effort: do not leave an unattached prefix behind.
		_ = s.inv.DeletePrefix(ctx, prefix)
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("namespace", namespace).
		Str("vrf", name).
		Str("cidr", cidr).
		Msg("prefix added")
	return nil
}

// RemovePrefix deletes the first prefix of the VRF whose CIDR string equals
// cidr. A missing prefix is not an error.
func (s *VRFService) RemovePrefix(ctx context.Context, namespace, name, cidr string) error {
	if err := validate.CIDR(cidr); err != nil {
		return err
	}
	vrf, err := s.mustFindVRF(ctx, namespace, name)
	if err != nil {
		return err
	}
	prefixes, err := s.inv.ListPrefixesOfVRF(ctx, vrf)
	if err != nil {
		return err
	}
	for i := range prefixes {
		if prefixes[i].CIDR != cidr {
			continue
		}
		if err := s.inv.DeletePrefix(ctx, &prefixes[i]); err != nil {
			return err
		}
		zerolog.Ctx(ctx).Debug().
			Str("namespace", namespace).
			Str("vrf", name).
			Str("cidr", cidr).
			Msg("prefix removed")
		return nil
	}
	return nil
}

func (s *VRFService) mustFindVRF(ctx context.Context, namespace, name string) (*model.VRF, error) {
	vrf, err := s.inv.FindVRF(ctx, namespace, name)
	if err != nil {
		return nil, err
	}
	if vrf == nil {
		return nil, vrfNotFound(namespace, name)
	}
	return vrf, nil
}

func (s *VRFService) resolve(ctx context.Context, vrf *model.VRF) (*model.VRFRecord, error) {
	rec := model.NewVRFRecord(vrf)

	imports, err := s.inv.ListImports(ctx, vrf)
	if err != nil {
		return nil, err
	}
	for _, rt := range imports {
		rec.Imports = append(rec.Imports, rt.RT)
	}

	exports, err := s.inv.ListExports(ctx, vrf)
	if err != nil {
		return nil, err
	}
	for _, rt := range exports {
		rec.Exports = append(rec.Exports, rt.RT)
	}

	prefixes, err := s.inv.ListPrefixesOfVRF(ctx, vrf)
	if err != nil {
		return nil, err
	}
	for _, p := range prefixes {
		rec.Prefixes = append(rec.Prefixes, p.CIDR)
	}
	return rec, nil
}
