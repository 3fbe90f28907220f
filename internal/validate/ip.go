// Package validate implements the IP/CIDR validator capability the connector
// registers with the host for its hunt ip parameter.
package validate

import (
	"net"
	"strconv"
	"strings"
)

// breakIPAddress splits "addr/prefix" into its parts. A bare address gets an
// implied prefix of zero.
func breakIPAddress(cidr string) (string, int, error) {
	if !strings.Contains(cidr, "/") {
		return cidr, 0, nil
	}
	parts := strings.SplitN(cidr, "/", 2)
	prefix, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, err
	}
	return parts[0], prefix, nil
}

// IsIP reports whether the input is a valid IPv4/IPv6 address, optionally
// followed by a prefix length. Prefix range is 0-32 for IPv4 and 0-128 for
// IPv6.
func IsIP(cidr string) bool {
	addr, prefix, err := breakIPAddress(cidr)
	if err != nil {
		return false
	}
	if net.ParseIP(addr) == nil {
		return false
	}
	if strings.Contains(addr, ":") {
		return prefix >= 0 && prefix <= 128
	}
	return prefix >= 0 && prefix <= 32
}
