package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
)

// snapshotName is <host>-<tenant>-<YYYY-MM-DD>.json.
func snapshotName(host, tenant string, date time.Time) string {
	return fmt.Sprintf("%s-%s-%s.json", host, tenant, date.Format("2006-01-02"))
}

func createNewSnapshot(dir, host, tenant string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "create data directory")
	}
	fn := filepath.Join(dir, snapshotName(host, tenant, time.Now()))
	if err := os.WriteFile(fn, pretty.Pretty(data), 0644); err != nil {
		return "", errors.Wrapf(err, "write snapshot %s", fn)
	}
	log.Info(fmt.Sprintf("Tenant saved to %s", fn))
	return fn, nil
}

// listSnapshots returns the snapshot files of dir, sorted by name.
func listSnapshots(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var res []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			res = append(res, e.Name())
		}
	}
	sort.Strings(res)
	return res, nil
}

// readSnapshot loads fn, falling back to the data directory for bare names.
func readSnapshot(dir, fn string) ([]byte, string, error) {
	if _, err := os.Stat(fn); os.IsNotExist(err) && !filepath.IsAbs(fn) {
		fn = filepath.Join(dir, fn)
	}
	log.Info(fmt.Sprintf(`Loading snapshot "%s"...`, fn))
	data, err := os.ReadFile(fn)
	if err != nil {
		return nil, fn, errors.Wrap(err, "read snapshot")
	}
	return data, fn, nil
}
