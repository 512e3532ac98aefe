package aci

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Check compares the counters collected while walking the export with the
// built collections.
func (t *Tenant) Check() error {
	var rules int
	for _, c := range t.Contracts {
		rules += len(c.Rules)
	}
	var failed []string
	for _, c := range []struct {
		what         string
		built, found int
	}{
		{"application profiles", len(t.AppProfiles), t.Counts.AppProfiles},
		{"epgs", len(t.EPGs()), t.Counts.EPGs},
		{"contracts", len(t.Contracts), t.Counts.Contracts},
		{"filters", len(t.Filters), t.Counts.Filters},
		{"filter actions", rules, t.Counts.FilterActions},
	} {
		if c.built != c.found {
			failed = append(failed, fmt.Sprintf("%s %d/%d", c.what, c.built, c.found))
		}
	}
	if len(failed) > 0 {
		return errors.Errorf("counter mismatch: %s", strings.Join(failed, ", "))
	}
	return nil
}

// CountersTable renders the counter double check.
func CountersTable(t *Tenant) string {
	var b strings.Builder
	status := "OK"
	if t.Check() != nil {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "Double check counters: %s\n\n", status)
	fmt.Fprintf(&b, "Input file:\n#AEPg: %d\n#EPG: %d\n#Contracts: %d\n#Filters: %d\n\n",
		len(t.AppProfiles), len(t.EPGs()), len(t.Contracts), len(t.Filters))
	fmt.Fprintf(&b, "Script:\n#AEPg: %d\n#EPG: %d\n#Contracts: %d\n#Filters: %d\n",
		t.Counts.AppProfiles, t.Counts.EPGs, t.Counts.Contracts, t.Counts.Filters)
	return b.String()
}

// Display renders "unspecified" protocols and ports as "any".
func Display(s string) string {
	if s == unspecified {
		return "any"
	}
	return s
}

const contractRow = "%-24s %-25s %-7s %-8s %-21s %-22s %-7s %-8s %-8s %-8s\n"

// ContractsTable lists every contract rule down to the filter entries.
func ContractsTable(t *Tenant) string {
	var b strings.Builder
	fmt.Fprintf(&b, contractRow, "Contract Name", "Subject Name", "BiDir", "Action",
		"Filter Name", "Filter Entry Name", "Proto", "D.F.Port", "D.T.Port", "StFull")
	b.WriteString(strings.Repeat("=", 145) + "\n")
	contracts := append([]Contract(nil), t.Contracts...)
	sort.SliceStable(contracts, func(i, j int) bool {
		return contracts[i].Name < contracts[j].Name
	})
	for _, c := range contracts {
		for _, r := range c.Rules {
			f, ok := t.Filter(r.Filter)
			if !ok {
				fmt.Fprintf(&b, contractRow, c.Name, r.Subject, r.BiDir, r.Action,
					r.Filter, "na", "na", "na", "na", "na")
				continue
			}
			for _, e := range f.Entries {
				fmt.Fprintf(&b, contractRow, c.Name, r.Subject, r.BiDir, r.Action,
					r.Filter, e.Name, Display(e.Protocol.String()),
					Display(e.FromPort.String()), Display(e.ToPort.String()),
					e.StatefulString())
			}
		}
	}
	return b.String()
}

const appProfileRow = "%-25s %-25s %s %-20s \n"

// AppProfilesTable lists the contracts each EPG provides (P) and consumes (C).
func AppProfilesTable(t *Tenant) string {
	var b strings.Builder
	fmt.Fprintf(&b, appProfileRow, "AEPg Name", "EPG Name", center("Provide/Consume", 17), "Contract Name")
	b.WriteString(strings.Repeat("=", 93) + "\n")
	for _, ap := range t.AppProfiles {
		for _, e := range ap.EPGs {
			for _, c := range e.Provided {
				fmt.Fprintf(&b, appProfileRow, ap.Name, e.Name, center("P", 17), c)
			}
			for _, c := range e.Consumed {
				fmt.Fprintf(&b, appProfileRow, ap.Name, e.Name, center("C", 17), c)
			}
		}
	}
	return b.String()
}

func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
