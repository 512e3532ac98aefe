package apic

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"acitools/aci"
)

// DefaultRefreshInterval keeps both the session and the subscriptions alive.
const DefaultRefreshInterval = 30 * time.Second

// Subscriber receives object change events for a set of classes.
type Subscriber struct {
	client          *Client
	conn            *websocket.Conn
	ids             map[string]string
	RefreshInterval time.Duration
}

// Subscribe opens the event socket and registers a subscription per class.
func (c *Client) Subscribe(classes ...string) (*Subscriber, error) {
	if err := c.session(); err != nil {
		return nil, err
	}
	dialer := websocket.Dialer{
		TLSClientConfig:  c.transport.TLSClientConfig,
		Jar:              c.jar,
		HandshakeTimeout: c.cfg.RequestTimeout,
	}
	url := fmt.Sprintf("wss://%s/socket%s", c.cfg.Host, c.token)
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, &aci.Error{Kind: aci.TransportError, Err: errors.Wrap(err, "open subscription socket")}
	}
	s := &Subscriber{
		client:          c,
		conn:            conn,
		ids:             make(map[string]string),
		RefreshInterval: DefaultRefreshInterval,
	}
	for _, class := range classes {
		res, err := c.Get("/api/class/"+class, "subscription=yes")
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "subscribe to %s", class)
		}
		id := res.Get("subscriptionId").String()
		s.ids[id] = class
		c.cfg.Log.WithFields(logrus.Fields{
			"class": class,
			"id":    id,
		}).Debug("Subscribed")
	}
	return s, nil
}

func (s *Subscriber) refresh() error {
	if err := s.client.Refresh(); err != nil {
		return err
	}
	for id, class := range s.ids {
		if _, err := s.client.Get("/api/subscriptionRefresh", "id="+id); err != nil {
			return errors.Wrapf(err, "refresh subscription to %s", class)
		}
	}
	return nil
}

// Run delivers events to handle until ctx is done or the socket fails.
func (s *Subscriber) Run(ctx context.Context, handle func(Event)) error {
	msgs := make(chan []byte)
	errc := make(chan error, 1)
	go func() {
		for {
			_, data, err := s.conn.ReadMessage()
			if err != nil {
				errc <- err
				return
			}
			select {
			case msgs <- data:
			case <-ctx.Done():
				return
			}
		}
	}()
	ticker := time.NewTicker(s.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.conn.Close()
			return nil
		case err := <-errc:
			return &aci.Error{Kind: aci.TransportError, Err: errors.Wrap(err, "read subscription socket")}
		case <-ticker.C:
			if err := s.refresh(); err != nil {
				s.conn.Close()
				return err
			}
		case data := <-msgs:
			for _, ev := range ParseEvents(data) {
				handle(ev)
			}
		}
	}
}

func (s *Subscriber) Close() error {
	return s.conn.Close()
}
