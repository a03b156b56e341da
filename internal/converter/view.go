package converter

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/belgian-batch-converter/internal/batch"
	"github.com/ginjaninja78/belgian-batch-converter/internal/bvb"
	"github.com/ginjaninja78/belgian-batch-converter/internal/dom80"
	"github.com/ginjaninja78/belgian-batch-converter/internal/types"
)

// DOM80View renders a decoded DOM80 document for the exporters. validation
// is the error Decode or dom80.Validate returned alongside the document,
// if any; its mismatches become the view's problems.
func DOM80View(source string, doc *dom80.Document, validation error) *types.BatchView {
	h := doc.Header
	view := &types.BatchView{
		Format:     "DOM80",
		SourceFile: source,
		Header: []types.Field{
			{Name: "aanmaakdatum", Value: date(h.CreationDate)},
			{Name: "instellingsnummer", Value: strconv.Itoa(h.BankCode)},
			{Name: "applicatiecode", Value: strconv.Itoa(h.ApplicationCode)},
			{Name: "duplicaat", Value: strconv.FormatBool(h.Duplicate)},
			{Name: "referentie", Value: h.Reference},
			{Name: "schuldeiser_id", Value: strconv.FormatInt(h.CreditorID, 10)},
			{Name: "rekeningnummer", Value: account(h.Account)},
			{Name: "naam", Value: h.Name},
			{Name: "memodatum", Value: date(h.MemoDate)},
			{Name: "versiecode", Value: strconv.Itoa(h.Version)},
		},
		Columns: []string{"volgnummer", "domiciliering", "naam", "bedrag", "referentie", "mededeling"},
		Trailer: []types.Field{
			{Name: "aantal_records", Value: strconv.Itoa(doc.Trailer.Records)},
			{Name: "aantal_opdrachten", Value: strconv.Itoa(doc.Trailer.Transactions)},
			{Name: "totaal_bedrag", Value: euro(doc.Trailer.Amount)},
			{Name: "controle_domiciliering", Value: strconv.FormatInt(doc.Trailer.Checksum, 10)},
		},
		Problems:     problems(validation),
		SkippedLines: skippedLines(doc.Skipped),
	}
	for _, c := range doc.Collections {
		view.Details = append(view.Details, []string{
			strconv.Itoa(c.Sequence),
			strconv.FormatInt(c.Mandate, 10),
			c.Name,
			euro(c.Amount),
			c.Reference,
			c.Communication,
		})
	}
	return view
}

// BVBView renders a decoded BVB document for the exporters.
func BVBView(source string, doc *bvb.Document, validation error) *types.BatchView {
	h, t := doc.Header, doc.Trailer
	view := &types.BatchView{
		Format:     "BVB",
		SourceFile: source,
		Header: []types.Field{
			{Name: "aanmaakdatum", Value: date(h.CreationDate)},
			{Name: "uitvoeringsdatum", Value: date(h.ExecutionDate)},
			{Name: "instellingsnummer", Value: strconv.Itoa(h.BankCode)},
			{Name: "applicatiecode", Value: strconv.Itoa(h.ApplicationCode)},
			{Name: "referentie", Value: h.Reference},
			{Name: "rekeningnummer", Value: account(h.Account)},
			{Name: "naam", Value: h.Name},
			{Name: "adres", Value: h.Address},
			{Name: "gemeente", Value: h.City},
			{Name: "versiecode", Value: strconv.Itoa(h.Version)},
		},
		Columns: []string{"volgnummer", "aard", "rekeningnummer", "bedrag", "valutadatum",
			"naam", "referentie", "adres", "gemeente", "mededeling"},
		Trailer: []types.Field{
			{Name: "aantal_records", Value: strconv.Itoa(t.Records)},
			{Name: "aantal_opdrachten", Value: strconv.Itoa(t.Transactions)},
			{Name: "aantal_invorderingen", Value: strconv.Itoa(t.Collections.Count)},
			{Name: "totaal_invorderingen", Value: euro(t.Collections.Amount)},
			{Name: "controle_invorderingen", Value: strconv.FormatInt(t.Collections.Checksum, 10)},
			{Name: "aantal_terugbetalingen", Value: strconv.Itoa(t.Reimbursements.Count)},
			{Name: "totaal_terugbetalingen", Value: euro(t.Reimbursements.Amount)},
			{Name: "controle_terugbetalingen", Value: strconv.FormatInt(t.Reimbursements.Checksum, 10)},
		},
		Problems:     problems(validation),
		SkippedLines: skippedLines(doc.Skipped),
	}
	for _, o := range doc.Orders {
		view.Details = append(view.Details, []string{
			strconv.Itoa(o.Sequence),
			o.Kind.String(),
			account(o.Account),
			euro(o.Amount),
			date(o.ValueDate),
			o.Name,
			o.Reference,
			o.Address,
			o.City,
			o.Communication,
		})
	}
	return view
}

func problems(err error) []string {
	if err == nil {
		return nil
	}
	var mismatch *batch.TotalsMismatchError
	if !errors.As(err, &mismatch) {
		return []string{err.Error()}
	}
	out := make([]string, len(mismatch.Mismatches))
	for i, m := range mismatch.Mismatches {
		out[i] = fmt.Sprintf("%s %s: trailer %d, computed %d", m.Section, m.Field, m.Trailer, m.Computed)
	}
	return out
}

func skippedLines(skipped []batch.SkippedLine) []int {
	if len(skipped) == 0 {
		return nil
	}
	lines := make([]int, len(skipped))
	for i, s := range skipped {
		lines[i] = s.Line
	}
	return lines
}

func euro(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func account(n int64) string {
	return fmt.Sprintf("%012d", n)
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
