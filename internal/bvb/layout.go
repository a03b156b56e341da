// =============================================================================
// Belgian Batch Converter - BVB Record Layout
// =============================================================================
//
// Record structures of the BVB payment-order format and the dispatcher
// layout that reads them.
//
// =============================================================================

// Package bvb reads and writes BVB domestic payment-order batch files.
//
// A BVB file holds one header (code 0), one two-line order per
// transaction (opdracht parts 1 and 2 sharing a volgnummer) and a trailer
// (code 9) that keeps separate counts, totals and account checksums for
// collections and reimbursements.
package bvb

import (
	"github.com/ginjaninja78/belgian-batch-converter/internal/batch"
	"github.com/ginjaninja78/belgian-batch-converter/internal/fixedwidth"
)

// =============================================================================
// RECORD CODES
// =============================================================================

const (
	CodeHeader  = 0
	CodeOrder1  = 1
	CodeOrder2  = 2
	CodeTrailer = 9

	ApplicationCode = 1
	VersionCode     = 1
)

// =============================================================================
// RECORD STRUCTURES
// =============================================================================

var (
	HeaderStructure = fixedwidth.MustStructure("bvb.header",
		fixedwidth.N("identificatie", 1),
		fixedwidth.N("aanmaakdatum", 6),
		fixedwidth.N("uitvoeringsdatum", 6),
		fixedwidth.N("instellingsnummer", 3),
		fixedwidth.N("applicatiecode", 2),
		fixedwidth.AN("referentie", 10),
		fixedwidth.N("rekeningnummer", 12),
		fixedwidth.AN("naam", 26),
		fixedwidth.AN("adres", 26),
		fixedwidth.AN("gemeente", 26),
		fixedwidth.N("versiecode", 1),
	)

	Order1Structure = fixedwidth.MustStructure("bvb.opdracht1",
		fixedwidth.N("identificatie", 1),
		fixedwidth.N("volgnummer", 4),
		fixedwidth.N("aard", 1),
		fixedwidth.N("rekeningnummer", 12),
		fixedwidth.N("bedrag", 12),
		fixedwidth.N("valutadatum", 6),
		fixedwidth.AN("naam", 26),
		fixedwidth.AN("referentie", 12),
	)

	Order2Structure = fixedwidth.MustStructure("bvb.opdracht2",
		fixedwidth.N("identificatie", 1),
		fixedwidth.N("volgnummer", 4),
		fixedwidth.AN("adres", 26),
		fixedwidth.AN("gemeente", 26),
		fixedwidth.AN("mededeling", 53),
	)

	TrailerStructure = fixedwidth.MustStructure("bvb.trailer",
		fixedwidth.N("identificatie", 1),
		fixedwidth.N("aantal_records", 4),
		fixedwidth.N("aantal_opdrachten", 4),
		fixedwidth.N("aantal_invorderingen", 4),
		fixedwidth.N("totaal_invorderingen", 15),
		fixedwidth.N("controle_invorderingen", 15),
		fixedwidth.N("aantal_terugbetalingen", 4),
		fixedwidth.N("totaal_terugbetalingen", 15),
		fixedwidth.N("controle_terugbetalingen", 15),
	)
)

// =============================================================================
// DISPATCHER LAYOUT
// =============================================================================

// Layout returns the dispatcher layout of BVB. Unknown record codes are
// skipped and reported unless the caller overrides the policy.
func Layout() batch.Layout {
	return batch.Layout{
		Name:          "BVB",
		Header:        batch.Route{Code: CodeHeader, Structure: HeaderStructure},
		Detail:        batch.Route{Code: CodeOrder1, Structure: Order1Structure},
		Continuation:  &batch.Route{Code: CodeOrder2, Structure: Order2Structure},
		Trailer:       batch.Route{Code: CodeTrailer, Structure: TrailerStructure},
		SequenceField: "volgnummer",
		Policy:        batch.PolicySkip,
	}
}
