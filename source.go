package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"acitools/aci"
	"acitools/apic"
)

func newClient(cfg *Config) (*apic.Client, error) {
	cfg.credentials()
	return apic.NewClient(apic.Config{
		Host:           cfg.IP,
		Username:       cfg.Username,
		Password:       cfg.Password,
		RequestTimeout: cfg.requestTimeout(),
		ReloginAfter:   cfg.reloginAfter(),
		Log:            log,
	})
}

// loadTenant returns a tenant export and the name of the snapshot it was read
// from or saved to. Without a file or tenant flag the user is asked.
func loadTenant(cfg *Config, src TenantSource) ([]byte, string, error) {
	switch {
	case src.File != "":
		return readSnapshot(cfg.DataDir, src.File)
	case src.Tenant != "":
		return downloadTenant(cfg, src.Tenant)
	}
	snapshots, err := listSnapshots(cfg.DataDir)
	if err != nil {
		return nil, "", err
	}
	if len(snapshots) > 0 && strings.HasPrefix(strings.ToLower(input("Use static pre downloaded data (y/n):")), "y") {
		for i, fn := range snapshots {
			fmt.Printf("%3d  %s\n", i+1, fn)
		}
		n, err := strconv.Atoi(input("Select file number:"))
		if err != nil || n < 1 || n > len(snapshots) {
			return nil, "", errors.New("select a file from the list")
		}
		return readSnapshot(cfg.DataDir, snapshots[n-1])
	}
	return downloadTenant(cfg, "")
}

func downloadTenant(cfg *Config, name string) ([]byte, string, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, "", err
	}
	tenants, err := client.Tenants()
	if err != nil {
		return nil, "", err
	}
	if name == "" {
		fmt.Println(strings.Join(tenants, "\n"))
		name = input("Select tenant name:")
	}
	if !contains(tenants, name) {
		return nil, "", &aci.Error{Kind: aci.ReferenceNotFound, Err: errors.Errorf("tenant %q is not on %s", name, cfg.IP)}
	}
	data, err := client.TenantConfig(name)
	if err != nil {
		return nil, "", err
	}
	fn, err := createNewSnapshot(cfg.DataDir, cfg.IP, name, data)
	return data, fn, err
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// baseName strips directory and extension from a snapshot path.
func baseName(fn string) string {
	return strings.TrimSuffix(filepath.Base(fn), filepath.Ext(fn))
}
