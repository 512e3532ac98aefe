// Package xlsx writes the EPG to filter entry matrix of a tenant as a workbook.
package xlsx

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"acitools/aci"
)

const SheetName = "AEPg-to-filterEntry"

// MissingContract marks a relation to a contract absent from the tenant.
const MissingContract = "missing contract"

var Header = []string{
	"AEPg Name", "EPG Name", "Provide/Consume", "Contract Name", "Subject Name",
	"BiDir", "Action", "Filter Name", "Filter Entry Name", "Proto",
	"D.F.Port", "D.T.Port", "StFull",
}

func sorted(list []string) []string {
	res := append([]string(nil), list...)
	sort.Strings(res)
	return res
}

// Rows flattens the tenant into sheet rows, header excluded. Application
// profiles, EPGs and contracts are sorted by name; provided contracts come
// before consumed ones.
func Rows(t *aci.Tenant) [][]string {
	aps := append([]aci.AppProfile(nil), t.AppProfiles...)
	sort.SliceStable(aps, func(i, j int) bool { return aps[i].Name < aps[j].Name })
	var rows [][]string
	for _, ap := range aps {
		epgs := append([]aci.EPG(nil), ap.EPGs...)
		sort.SliceStable(epgs, func(i, j int) bool { return epgs[i].Name < epgs[j].Name })
		for _, epg := range epgs {
			for _, rel := range []struct {
				tag       string
				contracts []string
			}{
				{"P", epg.Provided},
				{"C", epg.Consumed},
			} {
				for _, name := range sorted(rel.contracts) {
					prefix := []string{ap.Name, epg.Name, rel.tag, name}
					rows = append(rows, contractRows(t, prefix, name)...)
				}
			}
		}
	}
	return rows
}

func contractRows(t *aci.Tenant, prefix []string, name string) (rows [][]string) {
	row := func(cells ...string) []string {
		return append(append([]string(nil), prefix...), cells...)
	}
	c, ok := t.Contract(name)
	if !ok {
		return [][]string{row(MissingContract, "", "", "", "", "", "", "", "")}
	}
	for _, r := range c.Rules {
		f, ok := t.Filter(r.Filter)
		if !ok {
			rows = append(rows, row(r.Subject, r.BiDir, r.Action, r.Filter, "na", "na", "na", "na", "na"))
			continue
		}
		for _, e := range f.Entries {
			rows = append(rows, row(r.Subject, r.BiDir, r.Action, r.Filter, e.Name,
				aci.Display(e.Protocol.String()),
				aci.Display(e.FromPort.String()),
				aci.Display(e.ToPort.String()),
				e.StatefulString()))
		}
	}
	return
}

// Export writes the workbook to fn.
func Export(fn string, t *aci.Tenant) error {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), SheetName)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	header := Header
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return err
	}
	for i, row := range Rows(t) {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := row
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return errors.Wrapf(err, "row %d", i+2)
		}
	}
	return errors.Wrapf(f.SaveAs(fn), "save %s", fn)
}
