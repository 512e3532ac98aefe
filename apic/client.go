// Package apic is a small client for the APIC REST API.
package apic

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"acitools/aci"
)

// DefaultReloginAfter is how long a login token is trusted before the client
// logs in again.
const DefaultReloginAfter = 55 * time.Second

type Config struct {
	// Host is the APIC address, optionally with a port.
	Host           string
	Username       string
	Password       string
	RequestTimeout time.Duration
	ReloginAfter   time.Duration
	Log            logrus.FieldLogger
}

type Client struct {
	httpClient *http.Client
	transport  *http.Transport
	jar        http.CookieJar
	cfg        Config
	token      string
	loginAt    time.Time
	now        func() time.Time
}

// Result is the body of an API response.
type Result = gjson.Result

func NewClient(cfg Config) (*Client, error) {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.ReloginAfter == 0 {
		cfg.ReloginAfter = DefaultReloginAfter
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Jar:       jar,
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		transport: transport,
		jar:       jar,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// Host returns the configured APIC address.
func (c *Client) Host() string { return c.cfg.Host }

// Token returns the token of the current session.
func (c *Client) Token() string { return c.token }

// URL builds an API URL. The uri is given without the .json suffix.
func (c *Client) URL(uri string, query ...string) string {
	res := fmt.Sprintf("https://%s%s.json", c.cfg.Host, uri)
	if len(query) > 0 {
		return fmt.Sprintf("%s?%s", res, strings.Join(query, "&"))
	}
	return res
}

func (c *Client) do(method, uri string, body []byte, query ...string) (Result, error) {
	url := c.URL(uri, query...)
	c.cfg.Log.Debug(fmt.Sprintf("%s request to %s", method, uri))
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, &aci.Error{Kind: aci.TransportError, Err: errors.Wrapf(err, "%s %s", method, uri)}
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return Result{}, &aci.Error{Kind: aci.TransportError, Err: errors.Wrapf(err, "read %s", uri)}
	}
	if err := checkStatus(res, url, data); err != nil {
		return Result{}, err
	}
	return gjson.ParseBytes(data), nil
}

func checkStatus(res *http.Response, url string, body []byte) error {
	code := res.StatusCode
	var msg string
	kind := aci.TransportError
	switch {
	case code == http.StatusOK:
		return nil
	case code >= 500:
		msg = "Server Error"
	case code == http.StatusNotFound:
		msg = fmt.Sprintf("URL not found: [%s]", url)
	case code == http.StatusUnauthorized:
		msg = "Authentication Failed"
		kind = aci.AuthFailed
	case code == http.StatusBadRequest:
		msg = "Bad Request"
	case code >= 300:
		msg = "Unexpected Redirect"
	default:
		msg = "Unexpected Error"
	}
	if text := gjson.GetBytes(body, "imdata.0.error.attributes.text").String(); text != "" {
		msg += ": " + text
	}
	return &aci.Error{Kind: kind, Err: errors.Errorf("[%d] %s", code, msg)}
}

// Login opens a new session.
func (c *Client) Login() error {
	body, err := sjson.SetBytes([]byte(`{}`), "aaaUser.attributes.name", c.cfg.Username)
	if err == nil {
		body, err = sjson.SetBytes(body, "aaaUser.attributes.pwd", c.cfg.Password)
	}
	if err != nil {
		return err
	}
	res, err := c.do(http.MethodPost, "/api/aaaLogin", body)
	if err != nil {
		if aci.IsKind(err, aci.AuthFailed) {
			return err
		}
		return &aci.Error{Kind: aci.AuthFailed, Err: err}
	}
	if text := res.Get("imdata.0.error.attributes.text").String(); text != "" {
		return aci.NewError(aci.AuthFailed, "%s", text)
	}
	c.setToken(res)
	c.cfg.Log.Info("Authentication successful.")
	return nil
}

// Refresh extends the current session.
func (c *Client) Refresh() error {
	res, err := c.do(http.MethodGet, "/api/aaaRefresh", nil)
	if err != nil {
		return err
	}
	c.setToken(res)
	return nil
}

func (c *Client) setToken(res Result) {
	if token := res.Get("imdata.0.aaaLogin.attributes.token").String(); token != "" {
		c.token = token
	}
	c.loginAt = c.now()
}

func (c *Client) session() error {
	if c.loginAt.IsZero() {
		return c.Login()
	}
	if c.now().Sub(c.loginAt) >= c.cfg.ReloginAfter {
		c.cfg.Log.Info("Expired token, re logging ...")
		return c.Login()
	}
	return nil
}

// Get queries the API within a valid session.
func (c *Client) Get(uri string, query ...string) (Result, error) {
	if err := c.session(); err != nil {
		return Result{}, err
	}
	return c.do(http.MethodGet, uri, nil, query...)
}

// Post sends a document within a valid session.
func (c *Client) Post(uri string, body []byte) (Result, error) {
	if err := c.session(); err != nil {
		return Result{}, err
	}
	return c.do(http.MethodPost, uri, body)
}
