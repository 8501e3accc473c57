// Package privacy keeps raw client addresses out of logs and audit events.
package privacy

import (
	"fmt"
	"net"
)

// AnonymizeIP truncates an IP address to its network prefix: IPv4 keeps /24
// ("203.0.113.5" -> "203.0.113.0"), IPv6 keeps /48.
//
// Returns "unknown" for empty input or the client-identity sentinel and
// "invalid" for anything that does not parse.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}
