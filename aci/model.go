package aci

import "strings"

const unspecified = "unspecified"

// Protocol is the IP protocol declared on a filter entry.
type Protocol struct {
	kind protoKind
	name string
}

type protoKind int

const (
	protoOther protoKind = iota
	protoTCP
	protoUDP
	protoICMP
	protoUnspecified
)

// ParseProtocol maps the "prot" attribute of a vzEntry.
func ParseProtocol(name string) Protocol {
	switch strings.ToLower(name) {
	case "tcp":
		return Protocol{protoTCP, name}
	case "udp":
		return Protocol{protoUDP, name}
	case "icmp":
		return Protocol{protoICMP, name}
	case unspecified:
		return Protocol{protoUnspecified, name}
	}
	return Protocol{protoOther, name}
}

func (p Protocol) IsTCP() bool         { return p.kind == protoTCP }
func (p Protocol) IsUDP() bool         { return p.kind == protoUDP }
func (p Protocol) IsICMP() bool        { return p.kind == protoICMP }
func (p Protocol) IsUnspecified() bool { return p.kind == protoUnspecified }

// String returns the name as found in the tenant export.
func (p Protocol) String() string { return p.name }

// Port is a destination port bound. The zero value means any port.
type Port struct {
	name string
}

// ParsePort maps the dFromPort/dToPort attributes of a vzEntry.
func ParsePort(s string) Port {
	if s == unspecified || s == "" {
		return Port{}
	}
	return Port{name: s}
}

// IsAny reports whether the bound is unspecified.
func (p Port) IsAny() bool { return p.name == "" }

// Name returns the service name or number. It is empty for any port.
func (p Port) Name() string { return p.name }

func (p Port) String() string {
	if p.IsAny() {
		return unspecified
	}
	return p.name
}

// EPG is an endpoint group with the contracts it provides and consumes.
type EPG struct {
	AppProfile string
	Name       string
	Provided   []string
	Consumed   []string
}

// ID is the identifier used for the EPG outside of its application profile.
func (e EPG) ID() string {
	return e.AppProfile + "-" + e.Name
}

type AppProfile struct {
	Name string
	EPGs []EPG
}

// ContractRule is one (subject, filter) pair of a contract.
type ContractRule struct {
	Subject string
	BiDir   string
	Action  string
	Filter  string
}

type Contract struct {
	Name  string
	Rules []ContractRule
}

type FilterEntry struct {
	Name     string
	Protocol Protocol
	FromPort Port
	ToPort   Port
	Stateful bool
}

// StatefulString renders the flag the way the APIC does.
func (e FilterEntry) StatefulString() string {
	if e.Stateful {
		return "yes"
	}
	return "no"
}

type Filter struct {
	Name    string
	Entries []FilterEntry
}

// Counts holds the number of objects seen while walking the export.
type Counts struct {
	AppProfiles   int
	EPGs          int
	Contracts     int
	Filters       int
	FilterActions int
}

// Tenant is the parsed policy of one tenant. It is not modified after Parse.
type Tenant struct {
	Name        string
	AppProfiles []AppProfile
	Contracts   []Contract
	Filters     []Filter
	Counts      Counts

	contracts map[string]int
	filters   map[string]int
}

// EPGs returns every EPG of every application profile in document order.
func (t *Tenant) EPGs() []EPG {
	var res []EPG
	for _, ap := range t.AppProfiles {
		res = append(res, ap.EPGs...)
	}
	return res
}

func (t *Tenant) Contract(name string) (Contract, bool) {
	i, ok := t.contracts[name]
	if !ok {
		return Contract{}, false
	}
	return t.Contracts[i], true
}

func (t *Tenant) Filter(name string) (Filter, bool) {
	i, ok := t.filters[name]
	if !ok {
		return Filter{}, false
	}
	return t.Filters[i], true
}
