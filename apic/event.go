package apic

import (
	"github.com/tidwall/gjson"
)

// Classes watched for changes by default.
const (
	ClassTenant     = "fvTenant"
	ClassAppProfile = "fvAp"
	ClassEPG        = "fvAEPg"
	ClassFault      = "faultInst"
)

// DefaultSeverities are the fault severities reported when none are configured.
var DefaultSeverities = []string{"critical", "major", "minor"}

// Event is one object change pushed over a subscription socket.
type Event struct {
	Class      string
	DN         string
	Status     string
	Attributes Result
}

// Deleted reports whether the object was removed.
func (e Event) Deleted() bool { return e.Status == "deleted" }

// MarshalJSON : marshal event attributes
func (e Event) MarshalJSON() ([]byte, error) {
	return []byte(e.Attributes.Raw), nil
}

// ParseEvents decodes a subscription message into its object changes.
func ParseEvents(data []byte) (res []Event) {
	for _, record := range gjson.GetBytes(data, "imdata").Array() {
		record.ForEach(func(class, body gjson.Result) bool {
			attrs := body.Get("attributes")
			res = append(res, Event{
				Class:      class.String(),
				DN:         attrs.Get("dn").Str,
				Status:     attrs.Get("status").Str,
				Attributes: attrs,
			})
			return false
		})
	}
	return
}

// Fault is the subset of faultInst attributes worth reporting.
type Fault struct {
	json     Result
	Code     string
	Descr    string
	DN       string
	Severity string
	Rule     string
	Type     string
	Domain   string
	Subject  string
	Cause    string
}

func NewFault(json Result) Fault {
	return Fault{
		json:     json,
		Code:     json.Get("code").Str,
		Descr:    json.Get("descr").Str,
		DN:       json.Get("dn").Str,
		Severity: json.Get("severity").Str,
		Rule:     json.Get("rule").Str,
		Type:     json.Get("type").Str,
		Domain:   json.Get("domain").Str,
		Subject:  json.Get("subject").Str,
		Cause:    json.Get("cause").Str,
	}
}

// MarshalJSON : marshal fault
func (f Fault) MarshalJSON() ([]byte, error) {
	return []byte(f.json.Raw), nil
}

// Fault returns the event as a fault. Only meaningful for faultInst events.
func (e Event) Fault() Fault {
	return NewFault(e.Attributes)
}

// Faults lists the currently raised faults, cleared ones excluded.
func (c *Client) Faults() (res []Fault, err error) {
	json, err := c.Get("/api/class/" + ClassFault)
	if err != nil {
		return
	}
	for _, record := range json.Get("imdata.#.faultInst.attributes").Array() {
		if f := NewFault(record); f.Severity != "cleared" {
			res = append(res, f)
		}
	}
	return
}
