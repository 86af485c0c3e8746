/*
 * selection.go, part of micelle.
 *
 * Copyright 2024 Raul Mera <rauldotmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package chem

import (
	"fmt"
	"strings"
)

// Select returns the indexes, in ascending order, of the atoms in top that match
// the selection string sel. Recognized selections are:
//
//	all (or the empty string)   every atom
//	protein                     atoms in standard aminoacid residues
//	not water                   every atom not in a water residue
//	resname NAME [NAME...]      atoms in residues with any of the given names
//	name NAME [NAME...]         atoms with any of the given names
//	chain ID [ID...]            atoms in any of the given chains
//
// An unknown keyword is an error. A selection that matches no atoms is not,
// it returns an empty slice.
func Select(top Atomer, sel string) ([]int, error) {
	fields := strings.Fields(sel)
	var test func(*Atom) bool
	keyword := ""
	if len(fields) > 0 {
		keyword = strings.ToLower(fields[0])
	}
	switch keyword {
	case "", "all":
		test = func(*Atom) bool { return true }
	case "protein":
		test = func(a *Atom) bool { return IsAminoacid(a.Molname) }
	case "not":
		if len(fields) != 2 || strings.ToLower(fields[1]) != "water" {
			return nil, CError{fmt.Sprintf("Unsupported selection %q", sel), []string{"Select"}}
		}
		test = func(a *Atom) bool { return !IsWater(a.Molname) }
	case "resname", "name", "chain":
		if len(fields) < 2 {
			return nil, CError{fmt.Sprintf("Selection %q needs at least one value", sel), []string{"Select"}}
		}
		values := fields[1:]
		switch keyword {
		case "resname":
			test = func(a *Atom) bool { return isInString(values, a.Molname) }
		case "name":
			test = func(a *Atom) bool { return isInString(values, a.Name) }
		default:
			test = func(a *Atom) bool { return isInString(values, a.Chain) }
		}
	default:
		return nil, CError{fmt.Sprintf("Unsupported selection %q", sel), []string{"Select"}}
	}
	ret := make([]int, 0, top.Len())
	for i := 0; i < top.Len(); i++ {
		if test(top.Atom(i)) {
			ret = append(ret, i)
		}
	}
	return ret, nil
}
