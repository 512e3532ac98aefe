// Package nsg translates ACI contracts into OCI network security group rules
// and writes them as Terraform JSON.
package nsg

import (
	"github.com/tidwall/sjson"
)

type Direction string

const (
	Ingress Direction = "INGRESS"
	Egress  Direction = "EGRESS"
)

// Protocol numbers as expected by oci_core_network_security_group_security_rule.
const (
	ProtoTCP  = "6"
	ProtoUDP  = "17"
	ProtoICMP = "1"
	ProtoAll  = "all"
)

const (
	anyCIDR        = "0.0.0.0/0"
	typeCIDR       = "CIDR_BLOCK"
	typeGroup      = "NETWORK_SECURITY_GROUP"
	resourcePrefix = "aci_exported_nsg_"
)

// ResourceName is the Terraform resource name of the group.
func ResourceName(group string) string {
	return resourcePrefix + group
}

// GroupRef is the interpolation resolving to the OCID of the group.
func GroupRef(group string) string {
	return "${oci_core_network_security_group." + ResourceName(group) + ".id}"
}

// Endpoint is the other end of a rule: any address or another group.
type Endpoint struct {
	group string
}

// AnyEndpoint matches every address.
var AnyEndpoint = Endpoint{}

// GroupEndpoint refers to the group created for the EPG with the given ID.
func GroupEndpoint(id string) Endpoint {
	return Endpoint{group: id}
}

func (e Endpoint) IsAny() bool { return e.group == "" }

// Group returns the EPG ID the endpoint refers to, empty for any.
func (e Endpoint) Group() string { return e.group }

func (e Endpoint) address() string {
	if e.IsAny() {
		return anyCIDR
	}
	return GroupRef(e.group)
}

func (e Endpoint) addressType() string {
	if e.IsAny() {
		return typeCIDR
	}
	return typeGroup
}

type PortRange struct {
	Min string
	Max string
}

// Rule is one security rule of the group named Group.
type Rule struct {
	Group     string
	Direction Direction
	Protocol  string
	Ports     *PortRange
	Peer      Endpoint
	Stateless bool
}

type field struct {
	path  string
	value string
}

// MarshalJSON renders the rule as a security rule resource body. Ingress rules
// name their peer as source, egress rules as destination.
func (r Rule) MarshalJSON() ([]byte, error) {
	peer, peerType := "destination", "destination_type"
	if r.Direction == Ingress {
		peer, peerType = "source", "source_type"
	}
	stateless := "false"
	if r.Stateless {
		stateless = "true"
	}
	fields := []field{
		{"network_security_group_id", GroupRef(r.Group)},
		{"direction", string(r.Direction)},
		{"protocol", r.Protocol},
	}
	if r.Ports != nil {
		options := "udp_options"
		if r.Protocol == ProtoTCP {
			options = "tcp_options"
		}
		fields = append(fields,
			field{options + ".destination_port_range.min", r.Ports.Min},
			field{options + ".destination_port_range.max", r.Ports.Max},
		)
	}
	fields = append(fields,
		field{peer, r.Peer.address()},
		field{"stateless", stateless},
		field{peerType, r.Peer.addressType()},
	)
	var err error
	res := []byte(`{}`)
	for _, f := range fields {
		if res, err = sjson.SetBytes(res, f.path, f.value); err != nil {
			return nil, err
		}
	}
	return res, nil
}
