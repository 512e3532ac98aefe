package notify

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"acitools/apic"
)

type recorder struct {
	msgs []string
	err  error
}

func (r *recorder) Notify(msg string) error {
	r.msgs = append(r.msgs, msg)
	return r.err
}

func event(doc string) apic.Event {
	events := apic.ParseEvents([]byte(`{"imdata":[` + doc + `]}`))
	return events[0]
}

func TestFormatEvent(t *testing.T) {
	assert.Equal(t, "Tenant Event: uni/tn-Lab has been created/modified",
		FormatEvent(event(`{"fvTenant":{"attributes":{"dn":"uni/tn-Lab","status":"created"}}}`)))
	assert.Equal(t, "EPG Event: uni/tn-Lab/ap-App/epg-Web has been deleted",
		FormatEvent(event(`{"fvAEPg":{"attributes":{"dn":"uni/tn-Lab/ap-App/epg-Web","status":"deleted"}}}`)))
	assert.Equal(t, "Application Profile Event: uni/tn-Lab/ap-App has been created/modified",
		FormatEvent(event(`{"fvAp":{"attributes":{"dn":"uni/tn-Lab/ap-App","status":"modified"}}}`)))
}

func TestDispatcherFiltersFaults(t *testing.T) {
	logger, hook := test.NewNullLogger()
	rec := &recorder{}
	d := &Dispatcher{Log: logger, Notifier: rec}

	d.Handle(event(`{"faultInst":{"attributes":{"dn":"topology/pod-1/node-101/fault-F1","severity":"warning","code":"F1"}}}`))
	assert.Empty(t, rec.msgs)

	d.Handle(event(`{"faultInst":{"attributes":{"dn":"topology/pod-1/node-101/fault-F2","severity":"critical","code":"F2","descr":"link down","cause":"interface-down"}}}`))
	require.Len(t, rec.msgs, 1)
	assert.Contains(t, rec.msgs[0], "Fault Event:")
	assert.Contains(t, rec.msgs[0], "Description: link down")
	assert.Contains(t, rec.msgs[0], "Cause:       interface-down")
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	d.Severities = []string{"warning"}
	d.Handle(event(`{"faultInst":{"attributes":{"dn":"topology/pod-1/node-101/fault-F1","severity":"warning","code":"F1"}}}`))
	assert.Len(t, rec.msgs, 2)
}

func TestDispatcherLogsNotifierErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	d := &Dispatcher{Log: logger, Notifier: &recorder{err: errors.New("offline")}}

	d.Handle(event(`{"fvTenant":{"attributes":{"dn":"uni/tn-Lab","status":"created"}}}`))
	assert.Equal(t, "Notification failed", hook.LastEntry().Message)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestDispatcherWithoutNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	d := &Dispatcher{Log: logger}

	d.Handle(event(`{"fvTenant":{"attributes":{"dn":"uni/tn-Lab","status":"created"}}}`))
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "Tenant Event: uni/tn-Lab has been created/modified", hook.LastEntry().Message)
}

func TestWebex(t *testing.T) {
	var got gjson.Result
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = gjson.ParseBytes(body)
		auth = r.Header.Get("Authorization")
		if got.Get("roomId").String() != "room" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"id":"1"}`)
	}))
	defer srv.Close()

	w := &Webex{URL: srv.URL, Token: "tok", RoomID: "room"}
	require.NoError(t, w.Notify("hello"))
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "```\nhello\n```", got.Get("markdown").String())

	w.RoomID = "elsewhere"
	err := w.Notify("hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[404]")
}

func TestSlack(t *testing.T) {
	var channel, text string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		channel = r.FormValue("channel")
		text = r.FormValue("text")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true,"channel":"C01","ts":"1503435956.000247"}`)
	}))
	defer srv.Close()

	s := NewSlack("xoxb-test", "C01", slack.OptionAPIURL(srv.URL+"/"))
	require.NoError(t, s.Notify("hello"))
	assert.Equal(t, "C01", channel)
	assert.Equal(t, "```hello```", text)
}

func TestNew(t *testing.T) {
	n, err := New(Settings{})
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = New(Settings{Platform: PlatformWebex, Webex: WebexSettings{Token: "t", RoomID: "r"}})
	require.NoError(t, err)
	assert.IsType(t, &Webex{}, n)

	_, err = New(Settings{Platform: PlatformSlack})
	assert.Error(t, err)

	_, err = New(Settings{Platform: "irc"})
	assert.Error(t, err)
}
