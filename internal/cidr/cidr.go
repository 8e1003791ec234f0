// Package cidr answers network-prefix containment questions for webhook
// admission control. All parse failures report false: admission decisions
// built on this package fail closed.
package cidr

import "net/netip"

// Contains reports whether addr falls inside the slash-notation block.
// Both IPv4 and IPv6 are supported. A bare address is treated as a
// single-host block. Malformed input yields false.
func Contains(block, addr string) bool {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	ip = ip.Unmap()

	prefix, err := netip.ParsePrefix(block)
	if err != nil {
		// Allow "3.82.123.96" as shorthand for "3.82.123.96/32".
		single, err2 := netip.ParseAddr(block)
		if err2 != nil {
			return false
		}
		single = single.Unmap()
		prefix = netip.PrefixFrom(single, single.BitLen())
	}

	if prefix.Addr().Is4() != ip.Is4() {
		return false
	}
	return prefix.Contains(ip)
}

// ContainsAny reports whether addr is inside at least one of the blocks.
func ContainsAny(blocks []string, addr string) bool {
	for _, b := range blocks {
		if Contains(b, addr) {
			return true
		}
	}
	return false
}
