package apic

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvents(t *testing.T) {
	events := ParseEvents([]byte(`{"subscriptionId":["72057611234574337"],"imdata":[
		{"fvAEPg":{"attributes":{"dn":"uni/tn-Lab/ap-App/epg-Web","status":"created","name":"Web"}}},
		{"faultInst":{"attributes":{"dn":"topology/pod-1/node-101/sys/fault-F0532","status":"modified","severity":"major","code":"F0532"}}}
	]}`))
	require.Len(t, events, 2)
	assert.Equal(t, ClassEPG, events[0].Class)
	assert.Equal(t, "uni/tn-Lab/ap-App/epg-Web", events[0].DN)
	assert.False(t, events[0].Deleted())
	assert.Equal(t, "major", events[1].Fault().Severity)
	assert.Equal(t, "F0532", events[1].Fault().Code)

	assert.Empty(t, ParseEvents([]byte(`{"imdata":[]}`)))
}

func TestSubscribe(t *testing.T) {
	fake, srv := newFakeAPIC(t)
	c, _ := newTestClient(t, srv, "secret")

	upgrader := websocket.Upgrader{}
	subscribed := make(chan string, 4)
	fake.handlers["/socket"+"token1"] = func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		<-subscribed
		conn.WriteMessage(websocket.TextMessage, []byte(`{"subscriptionId":["1"],"imdata":[
			{"fvTenant":{"attributes":{"dn":"uni/tn-New","status":"created"}}}]}`))
		conn.ReadMessage()
	}
	fake.handlers["/api/class/fvTenant.json"] = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "yes", r.URL.Query().Get("subscription"))
		subscribed <- ClassTenant
		fmt.Fprint(w, `{"subscriptionId":"1","totalCount":"0","imdata":[]}`)
	}

	require.NoError(t, c.Login())
	s, err := c.Subscribe(ClassTenant)
	require.NoError(t, err)
	s.RefreshInterval = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var events []Event
	err = s.Run(ctx, func(ev Event) {
		events = append(events, ev)
		cancel()
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "uni/tn-New", events[0].DN)
	assert.Equal(t, "created", events[0].Status)
}

func TestSubscribeSocketFailure(t *testing.T) {
	fake, srv := newFakeAPIC(t)
	c, _ := newTestClient(t, srv, "secret")

	upgrader := websocket.Upgrader{}
	fake.handlers["/sockettoken1"] = func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}

	require.NoError(t, c.Login())
	s, err := c.Subscribe()
	require.NoError(t, err)
	err = s.Run(context.Background(), func(Event) {})
	require.Error(t, err)
}
