package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"acitools/aci"
	"acitools/nsg"
	"acitools/xlsx"
)

func runTenants(cfg *Config) error {
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	tenants, err := client.Tenants()
	if err != nil {
		return err
	}
	for _, name := range tenants {
		fmt.Println(name)
	}
	return nil
}

func parseTenant(data []byte, fn string) (*aci.Tenant, error) {
	tenant, err := aci.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", fn)
	}
	if err := tenant.Check(); err != nil {
		log.WithError(err).Warn("Double check counters failed")
	}
	log.WithFields(logrus.Fields{
		"tenant":               tenant.Name,
		"application profiles": tenant.Counts.AppProfiles,
		"epgs":                 tenant.Counts.EPGs,
		"contracts":            tenant.Counts.Contracts,
		"filters":              tenant.Counts.Filters,
	}).Info("Tenant loaded")
	return tenant, nil
}

func runExportNSG(cfg *Config, cmd *ExportNSGCmd) error {
	start := time.Now()
	data, fn, err := loadTenant(cfg, cmd.TenantSource)
	if err != nil {
		return err
	}
	tenant, err := parseTenant(data, fn)
	if err != nil {
		return err
	}
	report, issues, err := exportNSG(tenant, cfg.nsgOptions(cmd), os.Stdout)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"groups":  len(report.Files),
		"skipped": len(issues),
		"quota":   len(report.Ingress) + len(report.Egress),
		"elapsed": time.Since(start).Round(time.Millisecond).String(),
	}).Info("NSG export complete")
	return nil
}

func exportNSG(tenant *aci.Tenant, s NSGSettings, summary io.Writer) (*nsg.Report, []error, error) {
	sets, issues := nsg.Translate(tenant, nsg.Options{
		PermitAllEgressAndICMPIn: s.PermitAll,
		Exclude:                  s.Exclude,
		Log:                      log,
	})
	w := nsg.Writer{Dir: s.ExportDir, Ceiling: s.RuleCeiling, Log: log, Summary: summary}
	report, err := w.Write(sets)
	return report, issues, err
}

func runExportXLSX(cfg *Config, cmd *ExportXLSXCmd) error {
	data, fn, err := loadTenant(cfg, cmd.TenantSource)
	if err != nil {
		return err
	}
	tenant, err := parseTenant(data, fn)
	if err != nil {
		return err
	}
	out := cmd.Output
	if out == "" {
		out = filepath.Join(filepath.Dir(fn), baseName(fn)+".xlsx")
	}
	if err := xlsx.Export(out, tenant); err != nil {
		return err
	}
	log.Info(fmt.Sprintf("Workbook saved to %s", out))
	fmt.Print(aci.CountersTable(tenant))
	return nil
}

func runReport(cfg *Config, cmd *ReportCmd) error {
	data, fn, err := loadTenant(cfg, cmd.TenantSource)
	if err != nil {
		return err
	}
	tenant, err := parseTenant(data, fn)
	if err != nil {
		return err
	}
	return report(os.Stdout, tenant, cmd.View)
}

func report(w io.Writer, tenant *aci.Tenant, view string) error {
	switch strings.ToLower(view) {
	case "", "contracts":
		fmt.Fprint(w, aci.ContractsTable(tenant))
	case "epgs":
		fmt.Fprint(w, aci.AppProfilesTable(tenant))
	default:
		return errors.Errorf("unknown view %q, use contracts or epgs", view)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, aci.CountersTable(tenant))
	return nil
}

func runDuplicate(cfg *Config, cmd *DuplicateCmd) error {
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	tenants, err := client.Tenants()
	if err != nil {
		return err
	}
	if !contains(tenants, cmd.Source) {
		return &aci.Error{Kind: aci.ReferenceNotFound, Err: errors.Errorf("tenant %q is not on %s", cmd.Source, cfg.IP)}
	}
	if contains(tenants, cmd.Target) {
		return errors.Errorf("tenant %q already exists", cmd.Target)
	}
	if err := client.DuplicateTenant(cmd.Source, cmd.Target); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"source": cmd.Source,
		"target": cmd.Target,
	}).Info("Tenant duplicated")
	return nil
}
