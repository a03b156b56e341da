package dom80

import (
	"fmt"
	"time"

	"github.com/ginjaninja78/belgian-batch-converter/internal/fixedwidth"
)

// Header is the opening record of a DOM80 file.
type Header struct {
	CreationDate    time.Time
	BankCode        int
	ApplicationCode int
	Duplicate       bool
	Reference       string
	CreditorID      int64
	Account         int64
	Name            string
	MemoDate        time.Time
	Version         int
}

// DefaultHeader returns a header for a file created on the given day, with
// the fixed application and version codes filled in. The originator
// fields are left for the caller.
func DefaultHeader(created time.Time) Header {
	day := time.Date(created.Year(), created.Month(), created.Day(), 0, 0, 0, 0, time.UTC)
	return Header{
		CreationDate:    day,
		ApplicationCode: ApplicationCode,
		MemoDate:        day,
		Version:         VersionCode,
	}
}

func (h Header) record() fixedwidth.Record {
	dup := " "
	if h.Duplicate {
		dup = "D"
	}
	return fixedwidth.Record{
		"identificatie":     CodeHeader,
		"aanmaakdatum":      h.CreationDate,
		"instellingsnummer": h.BankCode,
		"applicatiecode":    h.ApplicationCode,
		"duplicaat":         dup,
		"referentie":        h.Reference,
		"schuldeiser_id":    h.CreditorID,
		"rekeningnummer":    h.Account,
		"naam":              h.Name,
		"memodatum":         h.MemoDate,
		"versiecode":        h.Version,
	}
}

func headerFromRecord(rec fixedwidth.Record) (Header, error) {
	x := rec.Extract()
	h := Header{
		CreationDate:    x.Date("aanmaakdatum"),
		BankCode:        int(x.Int("instellingsnummer")),
		ApplicationCode: int(x.Int("applicatiecode")),
		Duplicate:       x.String("duplicaat") == "D",
		Reference:       x.String("referentie"),
		CreditorID:      x.Int("schuldeiser_id"),
		Account:         x.Int("rekeningnummer"),
		Name:            x.String("naam"),
		MemoDate:        x.Date("memodatum"),
		Version:         int(x.Int("versiecode")),
	}
	if err := x.Err(); err != nil {
		return Header{}, fmt.Errorf("dom80 header: %w", err)
	}
	return h, nil
}

// Collection is one direct-debit collection. It occupies two lines: the
// debit itself (code 1) and its free-text communication (code 2).
type Collection struct {
	// Sequence is the volgnummer; Batch.Append assigns it.
	Sequence int
	// Mandate is the domiciliation number identifying the debtor's
	// mandate. The trailer checksums it.
	Mandate       int64
	Name          string
	Amount        int64 // euro cents
	Reference     string
	Communication string
}

func (c Collection) records() (fixedwidth.Record, fixedwidth.Record) {
	first := fixedwidth.Record{
		"identificatie": CodeCollection,
		"volgnummer":    c.Sequence,
		"domiciliering": c.Mandate,
		"naam":          c.Name,
		"bedrag":        c.Amount,
		"referentie":    c.Reference,
	}
	second := fixedwidth.Record{
		"identificatie": CodeCommunication,
		"volgnummer":    c.Sequence,
		"mededeling":    c.Communication,
	}
	return first, second
}

func collectionFromRecord(rec fixedwidth.Record) (Collection, error) {
	x := rec.Extract()
	c := Collection{
		Sequence:      int(x.Int("volgnummer")),
		Mandate:       x.Int("domiciliering"),
		Name:          x.String("naam"),
		Amount:        x.Int("bedrag"),
		Reference:     x.String("referentie"),
		Communication: x.String("mededeling"),
	}
	if err := x.Err(); err != nil {
		return Collection{}, fmt.Errorf("dom80 collection: %w", err)
	}
	return c, nil
}

// Trailer closes a DOM80 file. Records and Transactions hold the values
// as written, that is modulo 10^4.
type Trailer struct {
	Records      int
	Transactions int
	Amount       int64
	Checksum     int64
}

func (t Trailer) record() fixedwidth.Record {
	return fixedwidth.Record{
		"identificatie":          CodeTrailer,
		"aantal_records":         t.Records,
		"aantal_opdrachten":      t.Transactions,
		"totaal_bedrag":          t.Amount,
		"controle_domiciliering": t.Checksum,
	}
}

func trailerFromRecord(rec fixedwidth.Record) (Trailer, error) {
	x := rec.Extract()
	t := Trailer{
		Records:      int(x.Int("aantal_records")),
		Transactions: int(x.Int("aantal_opdrachten")),
		Amount:       x.Int("totaal_bedrag"),
		Checksum:     x.Int("controle_domiciliering"),
	}
	if err := x.Err(); err != nil {
		return Trailer{}, fmt.Errorf("dom80 trailer: %w", err)
	}
	return t, nil
}
