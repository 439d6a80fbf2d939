package movement

import (
	"fmt"
	"regexp"
	"strings"

	"warenbuchung/internal/core/types"
)

// Envelope is the typed form of the legacy notes string. Persisted
// records encode structured hints (capture type, entered unit, transfer
// locations) into free text; the envelope is the single
// encoding/decoding boundary for that format.
//
// Wire format: labeled segments. The goods-in capture group is joined
// with ", " (Erfassungstyp, Lagerort, Bestellungsnummer), everything
// else with " | ". Parsers tolerate absence of any field.
type Envelope struct {
	Erfassungstyp     string
	Referenz          string
	Bestellungsnummer string
	Lagerort          string
	Lieferant         string
	Lieferantennummer string
	Projekt           string
	Projektnummer     string
	Grund             string
	Bemerkung         string
	Von               string
	Nach              string

	// EnteredQuantity/EnteredUnit recover the user-entered value for
	// non-base units ("Eingabe: 2 Paletten" means 2 were typed even
	// though 160 Stück were persisted).
	EnteredQuantity *types.Quantity
	EnteredUnit     string
}

// Encode renders the envelope into the legacy notes string.
func (e *Envelope) Encode() string {
	var parts []string

	if e.Erfassungstyp != "" {
		head := "Erfassungstyp: " + e.Erfassungstyp
		if e.Lagerort != "" {
			head += ", Lagerort: " + e.Lagerort
		}
		if e.Bestellungsnummer != "" {
			head += ", Bestellungsnummer: " + e.Bestellungsnummer
		}
		parts = append(parts, head)
	}

	if e.Referenz != "" {
		parts = append(parts, "Referenz: "+e.Referenz)
	}
	if e.Lieferant != "" {
		parts = append(parts, "Lieferant: "+e.Lieferant)
	}
	if e.Lieferantennummer != "" {
		parts = append(parts, "Lieferantennummer: "+e.Lieferantennummer)
	}
	if e.Erfassungstyp == "" && e.Lagerort != "" {
		parts = append(parts, "Lagerort: "+e.Lagerort)
	}
	if e.Von != "" || e.Nach != "" {
		parts = append(parts, fmt.Sprintf("Von: %s, Nach: %s", e.Von, e.Nach))
	}
	if e.Projekt != "" {
		parts = append(parts, "Projekt: "+e.Projekt)
	}
	if e.Projektnummer != "" {
		parts = append(parts, "Projektnummer: "+e.Projektnummer)
	}
	if e.Grund != "" {
		parts = append(parts, "Grund: "+e.Grund)
	}
	if e.Bemerkung != "" {
		parts = append(parts, "Bemerkung: "+e.Bemerkung)
	}
	if e.EnteredQuantity != nil && e.EnteredUnit != "" {
		unitWord := e.EnteredUnit
		if strings.EqualFold(unitWord, "Palette") {
			unitWord = "Paletten"
		}
		parts = append(parts, fmt.Sprintf("Eingabe: %s %s", types.FormatQuantity(*e.EnteredQuantity), unitWord))
	}

	return strings.Join(parts, " | ")
}

// Field patterns. Short fields terminate at comma or pipe, free-text
// fields at pipe only (their values may contain commas).
var (
	reErfassungstyp     = regexp.MustCompile(`(?i)Erfassungstyp:\s*([^|,]+)`)
	reLagerort          = regexp.MustCompile(`(?i)Lagerort:\s*([^|,]+)`)
	reBestellungsnummer = regexp.MustCompile(`(?i)Bestellungsnummer:\s*([^|,]+)`)
	reReferenz          = regexp.MustCompile(`(?i)Referenz:\s*(.+?)(?:\s*\||$)`)
	reLieferant         = regexp.MustCompile(`(?i)Lieferant:\s*([^|,]+)`)
	reLieferantennummer = regexp.MustCompile(`(?i)Lieferantennummer:\s*([^|,]+)`)
	reProjekt           = regexp.MustCompile(`(?i)Projekt:\s*(.+?)(?:\s*\||$)`)
	reProjektnummer     = regexp.MustCompile(`(?i)Projektnummer:\s*([^|,]+)`)
	reGrund             = regexp.MustCompile(`(?i)Grund:\s*(.+?)(?:\s*\||$)`)
	reBemerkung         = regexp.MustCompile(`(?i)Bemerkung:\s*(.+?)(?:\s*\||$)`)
	reVon               = regexp.MustCompile(`(?i)Von:\s*([^|,]+)`)
	reNach              = regexp.MustCompile(`(?i)Nach:\s*([^|,]+)`)
	reEingabe           = regexp.MustCompile(`(?i)Eingabe:\s*([0-9]+(?:[.,][0-9]+)?)\s*(Paket|Paletten?)`)
)

// ParseEnvelope extracts the envelope from a notes string. Missing or
// malformed fields resolve to zero values; parsing never fails.
func ParseEnvelope(notes string) Envelope {
	var e Envelope
	if notes == "" {
		return e
	}

	e.Erfassungstyp = extract(reErfassungstyp, notes)
	e.Lagerort = extract(reLagerort, notes)
	e.Bestellungsnummer = extract(reBestellungsnummer, notes)
	e.Referenz = extract(reReferenz, notes)
	e.Lieferant = extract(reLieferant, notes)
	e.Lieferantennummer = extract(reLieferantennummer, notes)
	e.Projekt = extract(reProjekt, notes)
	e.Projektnummer = extract(reProjektnummer, notes)
	e.Grund = extract(reGrund, notes)
	e.Bemerkung = extract(reBemerkung, notes)
	e.Von = extract(reVon, notes)
	e.Nach = extract(reNach, notes)

	if m := reEingabe.FindStringSubmatch(notes); m != nil {
		q := types.ParseQuantityInput(m[1])
		e.EnteredQuantity = &q
		if strings.HasPrefix(strings.ToLower(m[2]), "palette") {
			e.EnteredUnit = "Palette"
		} else {
			e.EnteredUnit = "Paket"
		}
	}

	return e
}

func extract(re *regexp.Regexp, notes string) string {
	if m := re.FindStringSubmatch(notes); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// UnitHint inspects notes for an entered-unit marker. Palette wins when
// both substrings appear in historical free text.
func UnitHint(notes string) string {
	lower := strings.ToLower(notes)
	if strings.Contains(lower, "palette") {
		return "Palette"
	}
	if strings.Contains(lower, "paket") {
		return "Paket"
	}
	return ""
}
