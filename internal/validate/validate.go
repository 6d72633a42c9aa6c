// Package validate holds the shape rules for route distinguishers, route
// targets and prefixes. Both the REST layer and the core service apply them
// before any storage access.
package validate

import (
	"fmt"
	"net"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
)

// rdrtRegex matches ASN:NN or A.B.C.D:NN. The administrator part is not
// bound-checked beyond the digit pattern; dotted quads are limited to 0-255.
var rdrtRegex = regexp.MustCompile(`^([0-9]+|(((25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?))):([0-9]+)$`)

// Error is a field-level validation failure.
type Error struct {
	Field   string
	Value   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsRDRT reports whether v has the ASN:NN or IP:NN shape.
func IsRDRT(v string) bool {
	return rdrtRegex.MatchString(v)
}

// RouteDistinguisher validates an RD value.
func RouteDistinguisher(v string) error {
	if !IsRDRT(v) {
		return &Error{
			Field:   "rd",
			Value:   v,
			Message: "Invalid RD format. Expected ASN:NN or IP:NN (e.g., 65000:100 or 192.168.1.1:100)",
		}
	}
	return nil
}

// RouteTarget validates an RT value.
func RouteTarget(v string) error {
	if !IsRDRT(v) {
		return &Error{
			Field:   "rt",
			Value:   v,
			Message: "Invalid RT format. Expected ASN:NN or IP:NN (e.g., 65000:100 or 192.168.1.1:100)",
		}
	}
	return nil
}

// CIDR validates a prefix in non-strict mode.
func CIDR(v string) error {
	if _, err := ParseNetwork(v); err != nil {
		return &Error{Field: "cidr", Value: v, Message: "Invalid CIDR format"}
	}
	return nil
}

// Required rejects empty values.
func Required(field, v string) error {
	if v == "" {
		return &Error{Field: field, Value: v, Message: "field required"}
	}
	return nil
}

// IsCIDR reports whether v parses as a network in non-strict mode.
func IsCIDR(v string) bool {
	_, err := ParseNetwork(v)
	return err == nil
}

// ParseNetwork parses an IPv4 or IPv6 network without requiring the host
// bits to be zero. A bare address is a host network (/32 or /128) and an
// IPv4 prefix may also be written as a dotted netmask or hostmask. The
// returned prefix is masked.
func ParseNetwork(v string) (netip.Prefix, error) {
	addrPart, lenPart, hasLen := strings.Cut(v, "/")

	addr, err := netip.ParseAddr(addrPart)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("parse address %q: %w", addrPart, err)
	}
	if addr.Zone() != "" {
		return netip.Prefix{}, fmt.Errorf("address %q: zones are not allowed", addrPart)
	}

	if !hasLen {
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}

	bits, err := parsePrefixLen(addr, lenPart)
	if err != nil {
		return netip.Prefix{}, err
	}

	return netip.PrefixFrom(addr, bits).Masked(), nil
}

func parsePrefixLen(addr netip.Addr, s string) (int, error) {
	if s != "" && strings.Trim(s, "0123456789") == "" {
		n, err := strconv.Atoi(s)
		if err != nil || n > addr.BitLen() {
			return 0, fmt.Errorf("prefix length %q out of range", s)
		}
		return n, nil
	}

	if !addr.Is4() {
		return 0, fmt.Errorf("invalid prefix length %q", s)
	}

	mask, err := netip.ParseAddr(s)
	if err != nil || !mask.Is4() {
		return 0, fmt.Errorf("invalid netmask %q", s)
	}
	raw := mask.As4()
	if ones, bits := net.IPMask(raw[:]).Size(); bits != 0 {
		return ones, nil
	}
	for i := range raw {
		raw[i] = ^raw[i]
	}
	if ones, bits := net.IPMask(raw[:]).Size(); bits != 0 {
		return ones, nil
	}
	return 0, fmt.Errorf("invalid netmask %q", s)
}
