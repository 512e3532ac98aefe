package apic

import (
	"fmt"
	"net/url"

	"github.com/pkg/errors"

	"acitools/aci"
)

// Tenants lists the names of all tenants on the fabric.
func (c *Client) Tenants() (res []string, err error) {
	json, err := c.Get("/api/node/class/fvTenant")
	if err != nil {
		return
	}
	for _, name := range json.Get("imdata.#.fvTenant.attributes.name").Array() {
		res = append(res, name.Str)
	}
	return
}

// TenantConfig downloads the full configuration subtree of one tenant. The
// document is returned as received, imdata envelope included.
func (c *Client) TenantConfig(name string) ([]byte, error) {
	filter := fmt.Sprintf(`eq(fvTenant.name,"%s")`, name)
	json, err := c.Get("/api/class/fvTenant",
		"query-target-filter="+url.QueryEscape(filter),
		"rsp-subtree=full",
		"rsp-prop-include=config-only",
	)
	if err != nil {
		return nil, err
	}
	if !json.Get("imdata.0.fvTenant").Exists() {
		return nil, &aci.Error{
			Kind: aci.ReferenceNotFound,
			Err:  errors.Errorf("tenant %q not found on %s", name, c.cfg.Host),
		}
	}
	return []byte(json.Raw), nil
}

// CreateTenant posts a tenant document, shaped as {"fvTenant":{...}}.
func (c *Client) CreateTenant(name string, body []byte) error {
	_, err := c.Post("/api/node/mo/uni/tn-"+name, body)
	return errors.Wrapf(err, "create tenant %s", name)
}

// DuplicateTenant copies the configuration of tenant src into a new tenant
// named dst.
func (c *Client) DuplicateTenant(src, dst string) error {
	export, err := c.TenantConfig(src)
	if err != nil {
		return err
	}
	body, err := aci.RenameTenant(export, dst)
	if err != nil {
		return err
	}
	c.cfg.Log.Info(fmt.Sprintf("Creating tenant %s from %s", dst, src))
	return c.CreateTenant(dst, body)
}
