package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"acitools/apic"
	"acitools/notify"
)

var watchClasses = []string{
	apic.ClassTenant,
	apic.ClassAppProfile,
	apic.ClassEPG,
	apic.ClassFault,
}

const retryInterval = 60 * time.Second

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func loginLoop(ctx context.Context, client *apic.Client) bool {
	err := client.Login()
	for err != nil {
		log.Error(err)
		log.Info("Note, that login failures are expected on device reload.")
		log.Info("If this is the initial login, hit Ctrl-C and verify login details.")
		log.Info(fmt.Sprintf("Waiting %s before trying again...", retryInterval))
		if !sleep(ctx, retryInterval) {
			return false
		}
		err = client.Login()
	}
	return true
}

type faultsByCode = map[string][]apic.Fault

// summarizeFaults logs the faults already raised when the watch starts,
// one line per fault code unless verbose.
func summarizeFaults(faults []apic.Fault, verbose bool) {
	if len(faults) == 0 {
		log.Info("No active faults.")
		return
	}
	byCode := make(faultsByCode)
	var codes []string
	for _, f := range faults {
		if _, ok := byCode[f.Code]; !ok {
			codes = append(codes, f.Code)
		}
		byCode[f.Code] = append(byCode[f.Code], f)
	}
	log.Info(fmt.Sprintf("%d active fault(s).", len(faults)))
	if !verbose {
		log.Info("Use verbose mode to see full fault list.")
	}
	for _, code := range codes {
		faults := byCode[code]
		if verbose {
			for i, f := range faults {
				log.WithFields(logrus.Fields{
					"code":        f.Code,
					"severity":    f.Severity,
					"description": f.Descr,
					"count":       fmt.Sprintf("%d of %d", i+1, len(faults)),
				}).Info("active fault")
			}
			continue
		}
		f := faults[0]
		log.WithFields(logrus.Fields{
			"code":        f.Code,
			"severity":    f.Severity,
			"description": f.Descr,
			"count":       len(faults),
		}).Info(fmt.Sprintf("%d active %s fault(s)", len(faults), f.Code))
	}
}

func runWatch(cfg *Config, cmd *WatchCmd) error {
	settings := cfg.Notify
	if cmd.Platform != "" {
		settings.Platform = cmd.Platform
	}
	notifier, err := notify.New(settings)
	if err != nil {
		return err
	}
	if notifier == nil {
		log.Warn("No notification platform configured, events are only logged")
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	d := &notify.Dispatcher{Log: log, Notifier: notifier, Severities: settings.Severities}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Info("Running: Hit Ctrl-C to stop")
	for {
		if !loginLoop(ctx, client) {
			return nil
		}
		if faults, err := client.Faults(); err != nil {
			log.Error(err)
		} else {
			summarizeFaults(faults, cfg.Verbose)
		}
		s, err := client.Subscribe(watchClasses...)
		if err == nil {
			err = s.Run(ctx, d.Handle)
		}
		if ctx.Err() != nil {
			return nil
		}
		log.Error(err)
		log.Info(fmt.Sprintf("Waiting %s before reconnecting...", retryInterval))
		if !sleep(ctx, retryInterval) {
			return nil
		}
	}
}
