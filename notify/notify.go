// Package notify forwards change and fault events to chat platforms.
package notify

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"acitools/apic"
)

// Notifier delivers a plain text message.
type Notifier interface {
	Notify(msg string) error
}

const (
	PlatformSlack = "slack"
	PlatformWebex = "webex_teams"
)

type SlackSettings struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

type WebexSettings struct {
	Token  string `yaml:"token"`
	RoomID string `yaml:"room_id"`
	URL    string `yaml:"url"`
}

type Settings struct {
	Platform   string        `yaml:"platform"`
	Severities []string      `yaml:"severities"`
	Slack      SlackSettings `yaml:"slack"`
	Webex      WebexSettings `yaml:"webex"`
}

// New returns the notifier for the configured platform, or nil when no
// platform is set.
func New(s Settings) (Notifier, error) {
	switch s.Platform {
	case "":
		return nil, nil
	case PlatformSlack:
		if s.Slack.Token == "" || s.Slack.Channel == "" {
			return nil, errors.New("slack requires a token and a channel")
		}
		return NewSlack(s.Slack.Token, s.Slack.Channel), nil
	case PlatformWebex:
		if s.Webex.Token == "" || s.Webex.RoomID == "" {
			return nil, errors.New("webex requires a token and a room id")
		}
		return &Webex{URL: s.Webex.URL, Token: s.Webex.Token, RoomID: s.Webex.RoomID}, nil
	}
	return nil, errors.Errorf("unknown notification platform %q", s.Platform)
}

var labels = map[string]string{
	apic.ClassTenant:     "Tenant",
	apic.ClassAppProfile: "Application Profile",
	apic.ClassEPG:        "EPG",
}

// FormatEvent renders an object change.
func FormatEvent(ev apic.Event) string {
	label, ok := labels[ev.Class]
	if !ok {
		label = ev.Class
	}
	action := "has been created/modified"
	if ev.Deleted() {
		action = "has been deleted"
	}
	return fmt.Sprintf("%s Event: %s %s", label, ev.DN, action)
}

// FormatFault renders a fault as a small block of key value lines.
func FormatFault(f apic.Fault) string {
	var b strings.Builder
	b.WriteString("Fault Event:\n")
	for _, kv := range [][2]string{
		{"Description", f.Descr},
		{"DN", f.DN},
		{"Rule", f.Rule},
		{"Severity", f.Severity},
		{"Type", f.Type},
		{"Domain", f.Domain},
		{"Subject", f.Subject},
		{"Cause", f.Cause},
	} {
		fmt.Fprintf(&b, "%-12s %s\n", kv[0]+":", kv[1])
	}
	return strings.TrimRight(b.String(), "\n")
}

// Dispatcher logs events and forwards them to a notifier.
type Dispatcher struct {
	Log        logrus.FieldLogger
	Notifier   Notifier
	Severities []string
}

func (d *Dispatcher) reportable(f apic.Fault) bool {
	severities := d.Severities
	if len(severities) == 0 {
		severities = apic.DefaultSeverities
	}
	for _, s := range severities {
		if strings.EqualFold(s, f.Severity) {
			return true
		}
	}
	return false
}

// Handle is an apic.Subscriber callback.
func (d *Dispatcher) Handle(ev apic.Event) {
	if ev.Class == apic.ClassFault {
		f := ev.Fault()
		if !d.reportable(f) {
			d.Log.WithFields(logrus.Fields{
				"code":     f.Code,
				"severity": f.Severity,
			}).Debug("Ignoring fault")
			return
		}
		d.Log.WithFields(logrus.Fields{
			"code":        f.Code,
			"severity":    f.Severity,
			"description": f.Descr,
		}).Warn("Fault raised")
		d.send(FormatFault(f))
		return
	}
	msg := FormatEvent(ev)
	d.Log.Info(msg)
	d.send(msg)
}

func (d *Dispatcher) send(msg string) {
	if d.Notifier == nil {
		return
	}
	if err := d.Notifier.Notify(msg); err != nil {
		d.Log.WithError(err).Error("Notification failed")
	}
}
