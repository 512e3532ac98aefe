package aci

import (
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Class names of the tenant subtree objects the parser understands.
const (
	ClassTenant       = "fvTenant"
	ClassContract     = "vzBrCP"
	ClassSubject      = "vzSubj"
	ClassSubjFiltAtt  = "vzRsSubjFiltAtt"
	ClassInTerm       = "vzInTerm"
	ClassOutTerm      = "vzOutTerm"
	ClassFiltAtt      = "vzRsFiltAtt"
	ClassFilter       = "vzFilter"
	ClassEntry        = "vzEntry"
	ClassAppProfile   = "fvAp"
	ClassEPG          = "fvAEPg"
	ClassRsCons       = "fvRsCons"
	ClassRsProv       = "fvRsProv"
	contractNameField = "tnVzBrCPName"
	filterNameField   = "tnVzFilterName"
)

// Node is one decoded child of the fvTenant object.
type Node interface {
	Class() string
}

type ContractNode struct {
	Contract Contract
	Actions  int
}

type FilterNode struct {
	Filter Filter
}

type AppProfileNode struct {
	AppProfile AppProfile
}

// SkippedNode is a tenant child of a class the parser ignores.
type SkippedNode struct {
	class string
}

func (ContractNode) Class() string   { return ClassContract }
func (FilterNode) Class() string     { return ClassFilter }
func (AppProfileNode) Class() string { return ClassAppProfile }
func (n SkippedNode) Class() string  { return n.class }

// Parse reads a tenant export as returned by the APIC class query
// (imdata[0].fvTenant).
func Parse(data []byte) (*Tenant, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("tenant export is not valid JSON")
	}
	return ParseTenant(gjson.GetBytes(data, "imdata.0."+ClassTenant))
}

// ParseTenant builds a Tenant from an fvTenant object body.
func ParseTenant(body gjson.Result) (*Tenant, error) {
	if !body.Exists() {
		return nil, errors.New("tenant export has no fvTenant object")
	}
	t := &Tenant{
		Name:      body.Get("attributes.name").String(),
		contracts: make(map[string]int),
		filters:   make(map[string]int),
	}
	for _, child := range body.Get("children").Array() {
		node, err := DecodeNode(child)
		if err != nil {
			return nil, errors.Wrapf(err, "tenant %s", t.Name)
		}
		t.add(node)
	}
	return t, nil
}

func (t *Tenant) add(node Node) {
	switch n := node.(type) {
	case ContractNode:
		t.Counts.Contracts++
		t.Counts.FilterActions += n.Actions
		if i, ok := t.contracts[n.Contract.Name]; ok {
			t.Contracts[i].Rules = append(t.Contracts[i].Rules, n.Contract.Rules...)
			return
		}
		t.contracts[n.Contract.Name] = len(t.Contracts)
		t.Contracts = append(t.Contracts, n.Contract)
	case FilterNode:
		t.Counts.Filters++
		if i, ok := t.filters[n.Filter.Name]; ok {
			t.Filters[i] = n.Filter
			return
		}
		t.filters[n.Filter.Name] = len(t.Filters)
		t.Filters = append(t.Filters, n.Filter)
	case AppProfileNode:
		t.Counts.AppProfiles++
		t.Counts.EPGs += len(n.AppProfile.EPGs)
		t.AppProfiles = append(t.AppProfiles, n.AppProfile)
	}
}

// DecodeNode decodes a single-key object such as {"vzBrCP": {...}}.
func DecodeNode(obj gjson.Result) (Node, error) {
	class, body := unwrap(obj)
	switch class {
	case ClassContract:
		return decodeContract(body)
	case ClassFilter:
		return decodeFilter(body)
	case ClassAppProfile:
		return decodeAppProfile(body)
	}
	return SkippedNode{class: class}, nil
}

func unwrap(obj gjson.Result) (class string, body gjson.Result) {
	obj.ForEach(func(key, value gjson.Result) bool {
		class, body = key.String(), value
		return false
	})
	return
}

func children(body gjson.Result) []gjson.Result {
	return body.Get("children").Array()
}

func attr(class string, body gjson.Result, name string) (string, error) {
	v := body.Get("attributes." + name)
	if !v.Exists() {
		return "", errors.Errorf("%s: missing attribute %q", class, name)
	}
	return v.String(), nil
}

func attrs(class string, body gjson.Result, names ...string) ([]string, error) {
	res := make([]string, len(names))
	for i, name := range names {
		v, err := attr(class, body, name)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

func decodeContract(body gjson.Result) (ContractNode, error) {
	name, err := attr(ClassContract, body, "name")
	if err != nil {
		return ContractNode{}, err
	}
	n := ContractNode{Contract: Contract{Name: name}}
	for _, child := range children(body) {
		class, subj := unwrap(child)
		if class != ClassSubject {
			continue
		}
		v, err := attrs(ClassSubject, subj, "name", "revFltPorts")
		if err != nil {
			return n, errors.Wrapf(err, "contract %s", name)
		}
		subject, biDir := v[0], v[1]
		add := func(class string, body gjson.Result) error {
			v, err := attrs(class, body, "action", filterNameField)
			if err != nil {
				return errors.Wrapf(err, "contract %s subject %s", name, subject)
			}
			n.Contract.Rules = append(n.Contract.Rules, ContractRule{
				Subject: subject,
				BiDir:   biDir,
				Action:  v[0],
				Filter:  v[1],
			})
			n.Actions++
			return nil
		}
		for _, sc := range children(subj) {
			class, sb := unwrap(sc)
			switch class {
			case ClassSubjFiltAtt:
				if err := add(class, sb); err != nil {
					return n, err
				}
			case ClassInTerm, ClassOutTerm:
				for _, tc := range children(sb) {
					tclass, tb := unwrap(tc)
					if tclass != ClassFiltAtt {
						continue
					}
					if err := add(tclass, tb); err != nil {
						return n, err
					}
				}
			}
		}
	}
	return n, nil
}

func decodeFilter(body gjson.Result) (FilterNode, error) {
	name, err := attr(ClassFilter, body, "name")
	if err != nil {
		return FilterNode{}, err
	}
	n := FilterNode{Filter: Filter{Name: name}}
	for _, child := range children(body) {
		class, entry := unwrap(child)
		if class != ClassEntry {
			continue
		}
		v, err := attrs(ClassEntry, entry, "name", "prot", "dFromPort", "dToPort", "stateful")
		if err != nil {
			return n, errors.Wrapf(err, "filter %s", name)
		}
		n.Filter.Entries = append(n.Filter.Entries, FilterEntry{
			Name:     v[0],
			Protocol: ParseProtocol(v[1]),
			FromPort: ParsePort(v[2]),
			ToPort:   ParsePort(v[3]),
			Stateful: v[4] == "yes",
		})
	}
	return n, nil
}

func decodeAppProfile(body gjson.Result) (AppProfileNode, error) {
	name, err := attr(ClassAppProfile, body, "name")
	if err != nil {
		return AppProfileNode{}, err
	}
	n := AppProfileNode{AppProfile: AppProfile{Name: name}}
	for _, child := range children(body) {
		class, eb := unwrap(child)
		if class != ClassEPG {
			continue
		}
		epgName, err := attr(ClassEPG, eb, "name")
		if err != nil {
			return n, errors.Wrapf(err, "application profile %s", name)
		}
		epg := EPG{AppProfile: name, Name: epgName}
		for _, rel := range children(eb) {
			class, rb := unwrap(rel)
			if class != ClassRsCons && class != ClassRsProv {
				continue
			}
			contract, err := attr(class, rb, contractNameField)
			if err != nil {
				return n, errors.Wrapf(err, "epg %s", epg.ID())
			}
			if class == ClassRsCons {
				epg.Consumed = append(epg.Consumed, contract)
			} else {
				epg.Provided = append(epg.Provided, contract)
			}
		}
		n.AppProfile.EPGs = append(n.AppProfile.EPGs, epg)
	}
	return n, nil
}
