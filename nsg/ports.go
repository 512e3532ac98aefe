package nsg

import (
	"net"
	"strconv"

	"acitools/aci"
)

// ACI service names that are missing from the services database or spelled
// differently there.
var extraPortNumbers = map[string]string{
	"ftpData": "20",
	"dns":     "53",
	"rtsp":    "554",
}

const (
	lowestPort  = "1"
	highestPort = "65535"
)

// ResolvePorts turns a filter entry's destination port bounds into numbers.
// An unspecified bound opens the range to its end.
func ResolvePorts(network string, from, to aci.Port) PortRange {
	return PortRange{
		Min: portNumber(network, from, lowestPort),
		Max: portNumber(network, to, highestPort),
	}
}

func portNumber(network string, p aci.Port, open string) string {
	if p.IsAny() {
		return open
	}
	if n, err := net.LookupPort(network, p.Name()); err == nil {
		return strconv.Itoa(n)
	}
	if n, ok := extraPortNumbers[p.Name()]; ok {
		return n
	}
	return p.Name()
}
