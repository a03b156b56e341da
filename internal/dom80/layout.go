// =============================================================================
// Belgian Batch Converter - DOM80 Record Layout
// =============================================================================
//
// Record structures of the DOM80 domiciliation format and the dispatcher
// layout that reads them.
//
// =============================================================================

// Package dom80 reads and writes DOM80 domiciliation (direct-debit
// collection) batch files.
//
// A DOM80 file is one header (code 0), one two-line detail per collection
// (codes 1 and 2 sharing a volgnummer) and one trailer (code 9). Every
// line is 128 columns followed by CRLF.
package dom80

import (
	"github.com/ginjaninja78/belgian-batch-converter/internal/batch"
	"github.com/ginjaninja78/belgian-batch-converter/internal/fixedwidth"
)

// =============================================================================
// RECORD CODES
// =============================================================================

// Record identification codes.
const (
	CodeHeader        = 0
	CodeCollection    = 1
	CodeCommunication = 2
	CodeTrailer       = 9
)

const (
	// ApplicationCode identifies domiciliation files in the header.
	ApplicationCode = 2
	// VersionCode is the layout version written in the header.
	VersionCode = 5
)

// =============================================================================
// RECORD STRUCTURES
// =============================================================================

var (
	HeaderStructure = fixedwidth.MustStructure("dom80.header",
		fixedwidth.N("identificatie", 1),
		fixedwidth.N("aanmaakdatum", 6),
		fixedwidth.N("instellingsnummer", 3),
		fixedwidth.N("applicatiecode", 2),
		fixedwidth.AN("duplicaat", 1),
		fixedwidth.AN("referentie", 10),
		fixedwidth.N("schuldeiser_id", 11),
		fixedwidth.N("rekeningnummer", 12),
		fixedwidth.AN("naam", 26),
		fixedwidth.N("memodatum", 6),
		fixedwidth.N("versiecode", 1),
	)

	CollectionStructure = fixedwidth.MustStructure("dom80.detail1",
		fixedwidth.N("identificatie", 1),
		fixedwidth.N("volgnummer", 4),
		fixedwidth.N("domiciliering", 12),
		fixedwidth.AN("naam", 26),
		fixedwidth.N("bedrag", 12),
		fixedwidth.AN("referentie", 12),
	)

	CommunicationStructure = fixedwidth.MustStructure("dom80.detail2",
		fixedwidth.N("identificatie", 1),
		fixedwidth.N("volgnummer", 4),
		fixedwidth.AN("mededeling", 62),
	)

	TrailerStructure = fixedwidth.MustStructure("dom80.trailer",
		fixedwidth.N("identificatie", 1),
		fixedwidth.N("aantal_records", 4),
		fixedwidth.N("aantal_opdrachten", 4),
		fixedwidth.N("totaal_bedrag", 12),
		fixedwidth.N("controle_domiciliering", 15),
	)
)

// =============================================================================
// DISPATCHER LAYOUT
// =============================================================================

// Layout returns the dispatcher layout of DOM80. Unknown record codes
// abort reading unless the caller overrides the policy.
func Layout() batch.Layout {
	return batch.Layout{
		Name:          "DOM80",
		Header:        batch.Route{Code: CodeHeader, Structure: HeaderStructure},
		Detail:        batch.Route{Code: CodeCollection, Structure: CollectionStructure},
		Continuation:  &batch.Route{Code: CodeCommunication, Structure: CommunicationStructure},
		Trailer:       batch.Route{Code: CodeTrailer, Structure: TrailerStructure},
		SequenceField: "volgnummer",
		Policy:        batch.PolicyAbort,
	}
}
