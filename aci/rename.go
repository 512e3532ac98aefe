package aci

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// RenameTenant turns a tenant export into the body of a create request for a
// tenant called name. Distinguished names rooted at the old tenant are
// rewritten to the new one; nothing else is touched.
func RenameTenant(export []byte, name string) ([]byte, error) {
	tenant := gjson.GetBytes(export, "imdata.0")
	if !tenant.Get(ClassTenant).Exists() {
		return nil, errors.New("document holds no fvTenant")
	}
	old := tenant.Get(ClassTenant + ".attributes.name").String()
	if old == "" {
		return nil, errors.New("tenant has no name")
	}
	body, err := sjson.SetBytes([]byte(tenant.Raw), ClassTenant+".attributes.name", name)
	if err != nil {
		return nil, err
	}
	for _, suffix := range []string{`"`, `/`} {
		body = bytes.ReplaceAll(body,
			[]byte(`"uni/tn-`+old+suffix),
			[]byte(`"uni/tn-`+name+suffix))
	}
	return body, nil
}
