package bvb

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ginjaninja78/belgian-batch-converter/internal/fixedwidth"
)

// Header is the opening record of a BVB file.
type Header struct {
	CreationDate    time.Time
	ExecutionDate   time.Time
	BankCode        int
	ApplicationCode int
	Reference       string
	Account         int64
	Name            string
	Address         string
	City            string
	Version         int
}

// DefaultHeader returns a header created and executed on the given day
// with the fixed application and version codes set.
func DefaultHeader(created time.Time) Header {
	day := time.Date(created.Year(), created.Month(), created.Day(), 0, 0, 0, 0, time.UTC)
	return Header{
		CreationDate:    day,
		ExecutionDate:   day,
		ApplicationCode: ApplicationCode,
		Version:         VersionCode,
	}
}

func (h Header) record() fixedwidth.Record {
	return fixedwidth.Record{
		"identificatie":     CodeHeader,
		"aanmaakdatum":      h.CreationDate,
		"uitvoeringsdatum":  h.ExecutionDate,
		"instellingsnummer": h.BankCode,
		"applicatiecode":    h.ApplicationCode,
		"referentie":        h.Reference,
		"rekeningnummer":    h.Account,
		"naam":              h.Name,
		"adres":             h.Address,
		"gemeente":          h.City,
		"versiecode":        h.Version,
	}
}

func headerFromRecord(rec fixedwidth.Record) (Header, error) {
	x := rec.Extract()
	h := Header{
		CreationDate:    x.Date("aanmaakdatum"),
		ExecutionDate:   x.Date("uitvoeringsdatum"),
		BankCode:        int(x.Int("instellingsnummer")),
		ApplicationCode: int(x.Int("applicatiecode")),
		Reference:       x.String("referentie"),
		Account:         x.Int("rekeningnummer"),
		Name:            x.String("naam"),
		Address:         x.String("adres"),
		City:            x.String("gemeente"),
		Version:         int(x.Int("versiecode")),
	}
	if err := x.Err(); err != nil {
		return Header{}, fmt.Errorf("bvb header: %w", err)
	}
	return h, nil
}

// Order is one payment order, written as opdracht part 1 and part 2.
type Order struct {
	Sequence  int
	Kind      Kind
	Account   int64
	Amount    int64 // euro cents
	ValueDate time.Time
	Name      string
	Reference string

	Address       string
	City          string
	Communication string
}

func (o Order) records() (fixedwidth.Record, fixedwidth.Record) {
	first := fixedwidth.Record{
		"identificatie":  CodeOrder1,
		"volgnummer":     o.Sequence,
		"aard":           int(o.Kind),
		"rekeningnummer": o.Account,
		"bedrag":         o.Amount,
		"valutadatum":    o.ValueDate,
		"naam":           o.Name,
		"referentie":     o.Reference,
	}
	second := fixedwidth.Record{
		"identificatie": CodeOrder2,
		"volgnummer":    o.Sequence,
		"adres":         o.Address,
		"gemeente":      o.City,
		"mededeling":    o.Communication,
	}
	return first, second
}

func orderFromRecord(rec fixedwidth.Record) (Order, error) {
	x := rec.Extract()
	o := Order{
		Sequence:      int(x.Int("volgnummer")),
		Kind:          Kind(x.Int("aard")),
		Account:       x.Int("rekeningnummer"),
		Amount:        x.Int("bedrag"),
		ValueDate:     x.Date("valutadatum"),
		Name:          x.String("naam"),
		Reference:     x.String("referentie"),
		Address:       x.String("adres"),
		City:          x.String("gemeente"),
		Communication: x.String("mededeling"),
	}
	if err := x.Err(); err != nil {
		return Order{}, fmt.Errorf("bvb order: %w", err)
	}
	if !o.Kind.valid() {
		return Order{}, &UnknownTransactionKindError{Sequence: o.Sequence, Value: strconv.Itoa(int(o.Kind))}
	}
	return o, nil
}

// KindTotals are the trailer values kept per transaction kind.
type KindTotals struct {
	Count    int
	Amount   int64
	Checksum int64
}

// Trailer closes a BVB file. Counts hold the values as written, that is
// modulo 10^4.
type Trailer struct {
	Records        int
	Transactions   int
	Collections    KindTotals
	Reimbursements KindTotals
}

func (t Trailer) record() fixedwidth.Record {
	return fixedwidth.Record{
		"identificatie":            CodeTrailer,
		"aantal_records":           t.Records,
		"aantal_opdrachten":        t.Transactions,
		"aantal_invorderingen":     t.Collections.Count,
		"totaal_invorderingen":     t.Collections.Amount,
		"controle_invorderingen":   t.Collections.Checksum,
		"aantal_terugbetalingen":   t.Reimbursements.Count,
		"totaal_terugbetalingen":   t.Reimbursements.Amount,
		"controle_terugbetalingen": t.Reimbursements.Checksum,
	}
}

func trailerFromRecord(rec fixedwidth.Record) (Trailer, error) {
	x := rec.Extract()
	t := Trailer{
		Records:      int(x.Int("aantal_records")),
		Transactions: int(x.Int("aantal_opdrachten")),
		Collections: KindTotals{
			Count:    int(x.Int("aantal_invorderingen")),
			Amount:   x.Int("totaal_invorderingen"),
			Checksum: x.Int("controle_invorderingen"),
		},
		Reimbursements: KindTotals{
			Count:    int(x.Int("aantal_terugbetalingen")),
			Amount:   x.Int("totaal_terugbetalingen"),
			Checksum: x.Int("controle_terugbetalingen"),
		},
	}
	if err := x.Err(); err != nil {
		return Trailer{}, fmt.Errorf("bvb trailer: %w", err)
	}
	return t, nil
}
