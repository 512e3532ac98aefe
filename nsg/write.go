package nsg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"acitools/aci"
)

// DefaultRuleCeiling is the first rule number past the OCI limit of 120
// security rules per direction per group.
const DefaultRuleCeiling = 121

// FileSuffix is appended to the group name to form the output file name.
const FileSuffix = ".tf.json"

// Violation is a group direction holding more rules than allowed.
type Violation struct {
	Group     string
	Direction Direction
	Count     int
}

// Report summarizes a Write.
type Report struct {
	Files []string
	// Entries counts groups plus rules written.
	Entries int
	Ingress []Violation
	Egress  []Violation
}

// Errors returns one QuotaExceeded error per violation.
func (r *Report) Errors() []error {
	var res []error
	for _, v := range append(append([]Violation(nil), r.Ingress...), r.Egress...) {
		res = append(res, &aci.Error{
			Kind:  aci.QuotaExceeded,
			Group: v.Group,
			Err:   errors.Errorf("%d %s rules", v.Count, v.Direction),
		})
	}
	return res
}

// Writer serializes rule sets, one Terraform JSON file per group.
type Writer struct {
	Dir     string
	Ceiling int
	Log     logrus.FieldLogger
	// Summary receives the table of groups over quota.
	Summary io.Writer
}

// Write is Writer.Write with the standard logger and stdout.
func Write(sets *RuleSets, dir string, ceiling int) (*Report, error) {
	w := Writer{Dir: dir, Ceiling: ceiling}
	return w.Write(sets)
}

type groupResource struct {
	CompartmentID string `json:"compartment_id"`
	VcnID         string `json:"vcn_id"`
	DisplayName   string `json:"display_name"`
}

type document struct {
	Resource []interface{} `json:"resource"`
}

func (w Writer) Write(sets *RuleSets) (*Report, error) {
	if w.Ceiling <= 0 {
		w.Ceiling = DefaultRuleCeiling
	}
	if w.Log == nil {
		w.Log = logrus.StandardLogger()
	}
	if w.Summary == nil {
		w.Summary = os.Stdout
	}
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create export directory")
	}
	report := &Report{}
	for _, group := range sets.Groups() {
		data, err := w.render(group, sets.Rules(group), report)
		if err != nil {
			return report, errors.Wrapf(err, "render group %s", group)
		}
		fn := filepath.Join(w.Dir, group+FileSuffix)
		if err := os.WriteFile(fn, data, 0644); err != nil {
			return report, errors.Wrapf(err, "write %s", fn)
		}
		report.Files = append(report.Files, fn)
		w.Log.WithField("file", fn).Debug("Security group written")
	}
	if len(report.Ingress) >= w.Ceiling {
		w.summary("Ingress", report.Ingress)
	}
	if len(report.Egress) >= w.Ceiling {
		w.summary("Egress", report.Egress)
	}
	w.Log.Info(fmt.Sprintf("Composite rule entries: %d", report.Entries))
	return report, nil
}

func (w Writer) render(group string, rules []Rule, report *Report) ([]byte, error) {
	name := ResourceName(group)
	report.Entries++
	counters := map[Direction]int{}
	entries := []map[string]Rule{}
	for _, r := range rules {
		tag := "_security_rule_OUT_"
		if r.Direction == Ingress {
			tag = "_security_rule_IN_"
		}
		counters[r.Direction]++
		n := counters[r.Direction]
		entries = append(entries, map[string]Rule{name + tag + strconv.Itoa(n): r})
		report.Entries++
	}
	for _, dir := range []Direction{Ingress, Egress} {
		if n := counters[dir]; n >= w.Ceiling {
			v := Violation{Group: group, Direction: dir, Count: n}
			if dir == Ingress {
				report.Ingress = append(report.Ingress, v)
			} else {
				report.Egress = append(report.Egress, v)
			}
			w.Log.WithFields(logrus.Fields{
				"group":     group,
				"direction": dir,
				"rules":     n,
				"limit":     w.Ceiling - 1,
			}).Warn("Maximum number of security rules per NSG exceeded")
		}
	}
	doc := document{Resource: []interface{}{
		map[string]map[string]groupResource{
			"oci_core_network_security_group": {
				name: {
					CompartmentID: "${var.compartment_id}",
					VcnID:         "${var.vcn_id}",
					DisplayName:   group,
				},
			},
		},
		map[string][]map[string]Rule{
			"oci_core_network_security_group_security_rule": entries,
		},
	}}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w Writer) summary(direction string, violations []Violation) {
	fmt.Fprintf(w.Summary, "\n%s NSG with more than %d rules\n\n", direction, w.Ceiling-1)
	tw := tabwriter.NewWriter(w.Summary, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tRULES")
	for _, v := range violations {
		fmt.Fprintf(tw, "%s\t%d\n", ResourceName(v.Group), v.Count)
	}
	tw.Flush()
}
