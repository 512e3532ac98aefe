package aci

import "strings"

// DefaultExclusions are EPG name markers of bridge-domain and VLAN pseudo EPGs.
var DefaultExclusions = []string{"-BD", "VLAN"}

// Excluded reports whether the EPG name contains any of the markers.
func Excluded(name string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// Providers returns the IDs of the EPGs providing the contract.
func Providers(epgs []EPG, contract string, exclude []string) []string {
	return resolve(epgs, exclude, func(e EPG) []string { return e.Provided }, contract)
}

// Consumers returns the IDs of the EPGs consuming the contract.
func Consumers(epgs []EPG, contract string, exclude []string) []string {
	return resolve(epgs, exclude, func(e EPG) []string { return e.Consumed }, contract)
}

func resolve(epgs []EPG, exclude []string, rel func(EPG) []string, contract string) []string {
	var res []string
	for _, e := range epgs {
		if Excluded(e.Name, exclude) || !contains(rel(e), contract) {
			continue
		}
		res = append(res, e.ID())
	}
	return res
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
