package nsg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"acitools/aci"
)

func TestResolvePorts(t *testing.T) {
	for _, tc := range []struct {
		from, to string
		want     PortRange
	}{
		{"unspecified", "unspecified", PortRange{"1", "65535"}},
		{"ftpData", "ftpData", PortRange{"20", "20"}},
		{"http", "https", PortRange{"80", "443"}},
		{"8080", "8090", PortRange{"8080", "8090"}},
		{"unspecified", "1024", PortRange{"1", "1024"}},
		{"dns", "dns", PortRange{"53", "53"}},
		{"bogusService", "bogusService", PortRange{"bogusService", "bogusService"}},
	} {
		got := ResolvePorts("tcp", aci.ParsePort(tc.from), aci.ParsePort(tc.to))
		assert.Equal(t, tc.want, got, "%s-%s", tc.from, tc.to)
	}
}
