// Package catalog holds the fixed lists a request form offers: the
// departments an employee can belong to and the office items that can be
// ordered.
package catalog

import "strings"

var departments = []string{"Digital", "IT", "HR", "Finance", "Operations"}

var items = []string{
	"A3 ENVELOPE GREEN",
	"A3 PAPER",
	"A3 TRANSPARENT FOLDER",
	"A4 ENVELOPE GREEN",
	"A4 LOGO ENVOLOP",
	"A4 PAPER",
	"A4 TRANSPARENT FOLDER",
	"BINDER CLIP 19MM",
	"BINDER CLIP 25MM",
	"BINDER CLIP 41MM",
	"BOX FILE",
	"C D MARKER",
	"CALCULATOR",
	"CARBON PAPERS",
	"CELLO TAPE",
	"CUTTER",
	"DUSTER",
	"ERASER",
	"FEVI STICK",
	"GEL PEN BLACK",
	"HIGH LIGHTER",
	"L FOLDER",
	"LETTER HEAD",
	"LOGO ENVOLOP SMALL",
	"NOTE PAD",
	"PEN",
	"PENCIL",
	"PERMANENT MARKER",
	"PUNCHING MACHINE",
	"PUSH PIN",
	"REGISTER",
	"ROOM SPRAY",
	"RUBBER BAND BAG",
	"SCALE",
	"SCISSOR",
	"FILE SEPARATOR",
	"SHARPENER",
	"SKETCH PEN",
	"SILVER PEN",
	"SPRING FILE",
	"STAMP PAD",
	"STAMP PAD INK",
	"STAPLER",
	"STAPLER PIN BIG",
	"STAPLER PIN SMALL",
	"STICKY NOTE",
	"TRANSPARENT FILE",
	"U PIN",
	"VISTING CARD HOLDER",
	"WHITE BOARD MARKER",
	"WHITE INK",
}

// Departments returns a copy of the department list in display order.
func Departments() []string { return append([]string(nil), departments...) }

// Items returns a copy of the orderable items in display order.
func Items() []string { return append([]string(nil), items...) }

// HasDepartment reports whether name is a known department (exact match).
func HasDepartment(name string) bool { return contains(departments, name) }

// HasItem reports whether name is an orderable item. Surrounding space and
// letter case are ignored.
func HasItem(name string) bool {
	_, ok := CanonicalItem(name)
	return ok
}

// CanonicalItem maps user input to the catalog spelling of an item.
func CanonicalItem(name string) (string, bool) {
	candidate := strings.TrimSpace(name)
	for _, it := range items {
		if strings.EqualFold(it, candidate) {
			return it, true
		}
	}
	return "", false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
