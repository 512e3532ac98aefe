package nsg

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"acitools/aci"
)

// RuleSets maps a group display name to its rules, keeping the order in which
// groups were first seen.
type RuleSets struct {
	names []string
	rules map[string][]Rule
}

func NewRuleSets() *RuleSets {
	return &RuleSets{rules: make(map[string][]Rule)}
}

func (s *RuleSets) ensure(group string) {
	if _, ok := s.rules[group]; !ok {
		s.names = append(s.names, group)
		s.rules[group] = nil
	}
}

// Add appends a rule to the set of rule.Group.
func (s *RuleSets) Add(r Rule) {
	s.ensure(r.Group)
	s.rules[r.Group] = append(s.rules[r.Group], r)
}

// Groups returns the group names in insertion order.
func (s *RuleSets) Groups() []string {
	return append([]string(nil), s.names...)
}

func (s *RuleSets) Rules(group string) []Rule {
	return s.rules[group]
}

// Len returns the total number of rules.
func (s *RuleSets) Len() int {
	var n int
	for _, r := range s.rules {
		n += len(r)
	}
	return n
}

// Options control the translation.
type Options struct {
	// PermitAllEgressAndICMPIn replaces every contract derived rule by an
	// allow all egress rule and an ICMP ingress rule per group.
	PermitAllEgressAndICMPIn bool
	// Exclude lists EPG name markers; matching EPGs get no group and are never
	// used as a peer.
	Exclude []string
	Log     logrus.FieldLogger
}

type translator struct {
	tenant *aci.Tenant
	epgs   []aci.EPG
	opts   Options
	sets   *RuleSets
	issues []error
}

// Translate builds the security rules of every EPG of the tenant. Rules that
// cannot be built are skipped; the returned errors describe each of them and
// are all *aci.Error values.
func Translate(t *aci.Tenant, opts Options) (*RuleSets, []error) {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	tr := &translator{
		tenant: t,
		epgs:   t.EPGs(),
		opts:   opts,
		sets:   NewRuleSets(),
	}
	for _, epg := range tr.epgs {
		if aci.Excluded(epg.Name, opts.Exclude) {
			continue
		}
		if opts.PermitAllEgressAndICMPIn {
			tr.permitAll(epg)
			continue
		}
		for _, name := range epg.Consumed {
			tr.contract(epg, name, Egress)
		}
		for _, name := range epg.Provided {
			tr.contract(epg, name, Ingress)
		}
	}
	return tr.sets, tr.issues
}

func (tr *translator) permitAll(epg aci.EPG) {
	group := epg.ID()
	for _, d := range []struct {
		dir   Direction
		entry aci.FilterEntry
	}{
		{Egress, aci.FilterEntry{Protocol: aci.ParseProtocol("unspecified")}},
		{Ingress, aci.FilterEntry{Protocol: aci.ParseProtocol("icmp")}},
	} {
		r, _ := newRule(group, d.dir, d.entry, AnyEndpoint)
		tr.sets.Add(r)
	}
}

func (tr *translator) contract(epg aci.EPG, name string, dir Direction) {
	role, peerRole := "consumer", "providers"
	resolve := aci.Providers
	if dir == Ingress {
		role, peerRole = "provider", "consumers"
		resolve = aci.Consumers
	}
	log := tr.opts.Log.WithFields(logrus.Fields{
		role:       epg.ID(),
		"contract": name,
	})
	c, ok := tr.tenant.Contract(name)
	if !ok {
		log.Warn("Skipping rule. Missing contract")
		tr.issue(&aci.Error{
			Kind:     aci.ReferenceNotFound,
			EPG:      epg.ID(),
			Contract: name,
			Err:      errors.New("missing contract"),
		})
		return
	}
	peers := resolve(tr.epgs, name, tr.opts.Exclude)
	if len(peers) == 0 {
		log.Warnf("Skipping rule. No %s for contract", peerRole)
		tr.issue(&aci.Error{
			Kind:     aci.ReferenceNotFound,
			EPG:      epg.ID(),
			Contract: name,
			Err:      errors.Errorf("no %s", peerRole),
		})
		return
	}
	group := epg.ID()
	tr.sets.ensure(group)
	for _, cr := range c.Rules {
		f, ok := tr.tenant.Filter(cr.Filter)
		if !ok {
			log.WithField("filter", cr.Filter).Warn("Skipping rule. Missing filter")
			tr.issue(&aci.Error{
				Kind:     aci.ReferenceNotFound,
				EPG:      epg.ID(),
				Contract: name,
				Filter:   cr.Filter,
				Err:      errors.New("missing filter"),
			})
			continue
		}
		for _, entry := range f.Entries {
			for _, peer := range peers {
				r, ok := newRule(group, dir, entry, GroupEndpoint(peer))
				if !ok {
					log.WithFields(logrus.Fields{
						"peer":     peer,
						"filter":   f.Name,
						"entry":    entry.Name,
						"protocol": entry.Protocol.String(),
					}).Warn("Skipping rule. Protocol not recognized")
					tr.issue(&aci.Error{
						Kind:     aci.UnrecognizedProtocol,
						EPG:      epg.ID(),
						Peer:     peer,
						Contract: name,
						Filter:   f.Name,
						Err:      errors.Errorf("protocol %q", entry.Protocol.String()),
					})
					continue
				}
				tr.sets.Add(r)
			}
		}
	}
}

func (tr *translator) issue(err error) {
	tr.issues = append(tr.issues, err)
}

func newRule(group string, dir Direction, entry aci.FilterEntry, peer Endpoint) (Rule, bool) {
	r := Rule{
		Group:     group,
		Direction: dir,
		Peer:      peer,
		Stateless: !entry.Stateful,
	}
	switch p := entry.Protocol; {
	case p.IsTCP():
		r.Protocol = ProtoTCP
		ports := ResolvePorts("tcp", entry.FromPort, entry.ToPort)
		r.Ports = &ports
	case p.IsUDP():
		r.Protocol = ProtoUDP
		ports := ResolvePorts("udp", entry.FromPort, entry.ToPort)
		r.Ports = &ports
	case p.IsICMP():
		r.Protocol = ProtoICMP
	case p.IsUnspecified():
		r.Protocol = ProtoAll
	default:
		return Rule{}, false
	}
	return r, true
}
