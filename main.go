package main

import (
	"os"

	_ "github.com/konsorten/go-windows-terminal-sequences"
	"github.com/sirupsen/logrus"

	"acitools/aci"
)

const version = "0.3.0"

// Rev is set at build time.
var Rev string

var log = logrus.StandardLogger()

func run(cfg *Config) error {
	switch {
	case cfg.Tenants != nil:
		return runTenants(cfg)
	case cfg.ExportNSG != nil:
		return runExportNSG(cfg, cfg.ExportNSG)
	case cfg.ExportXLSX != nil:
		return runExportXLSX(cfg, cfg.ExportXLSX)
	case cfg.Report != nil:
		return runReport(cfg, cfg.Report)
	case cfg.Duplicate != nil:
		return runDuplicate(cfg, cfg.Duplicate)
	case cfg.Watch != nil:
		return runWatch(cfg, cfg.Watch)
	}
	return nil
}

func main() {
	cfg := newConfigFromCLI()
	log = newLogger(cfg)
	if err := run(&cfg); err != nil {
		if aci.IsKind(err, aci.AuthFailed) {
			log.Fatal(err)
		}
		log.Error(err)
		os.Exit(1)
	}
}
