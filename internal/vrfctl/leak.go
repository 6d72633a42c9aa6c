package vrfctl

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ParseVRFRef splits "namespace/name". A bare name is in "default".
func ParseVRFRef(ref string) (namespace, name string, err error) {
	namespace, name, found := strings.Cut(ref, "/")
	if !found {
		namespace, name = "default", ref
	}
	if namespace == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid VRF reference %q, want namespace/name", ref)
	}
	return namespace, name, nil
}

// Leak makes the destination VRF import the first export RT of the source
// VRF, so routes exported by the source become visible in the destination.
// With revoke it removes that import instead. It returns the RT used.
func Leak(ctx context.Context, client *Client, from, to string, revoke bool, out io.Writer) (string, error) {
	srcNS, srcName, err := ParseVRFRef(from)
	if err != nil {
		return "", err
	}
	dstNS, dstName, err := ParseVRFRef(to)
	if err != nil {
		return "", err
	}

	src, err := client.GetVRF(ctx, srcNS, srcName)
	if err != nil {
		return "", fmt.Errorf("source vrf %s/%s: %w", srcNS, srcName, err)
	}
	if len(src.Exports) == 0 {
		return "", fmt.Errorf("source vrf %s/%s has no export route targets", srcNS, srcName)
	}
	rt := src.Exports[0]

	if revoke {
		if err := client.RemoveRouteTarget(ctx, dstNS, dstName, "import", rt); err != nil {
			return "", fmt.Errorf("remove import %s from %s/%s: %w", rt, dstNS, dstName, err)
		}
		fmt.Fprintf(out, "%s/%s no longer imports %s from %s/%s\n", dstNS, dstName, rt, srcNS, srcName)
		return rt, nil
	}

	if err := client.AddRouteTarget(ctx, dstNS, dstName, "import", rt); err != nil {
		return "", fmt.Errorf("add import %s to %s/%s: %w", rt, dstNS, dstName, err)
	}
	fmt.Fprintf(out, "%s/%s now imports %s from %s/%s\n", dstNS, dstName, rt, srcNS, srcName)
	return rt, nil
}
