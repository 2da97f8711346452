// Package report renders contribution and contributor data into the two
// export encodings: paginated PDF documents and flat CSV text.
package report

import (
	"bytes"
	"strings"
	"time"

	"dizimo/internal/core"
)

// EscapeField makes a text value safe for a comma-separated row. Values
// containing a comma, a double quote or a newline are wrapped in double
// quotes with internal quotes doubled; anything else passes through
// unchanged, so the function is idempotent on already-safe values.
func EscapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

const dateDisplay = "02/01/2006"

func displayDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateDisplay)
}

var contributionHeader = []string{
	"Nome", "Categoria", "Valor", "Data", "Forma de Pagamento", "Envelope", "Observações",
}

// ContributionsCSV renders contribution records as CSV. Amounts use a comma
// decimal separator and dates are day/month/year. Free-text and
// lookup-derived fields go through EscapeField; pre-formatted amount and
// date strings do not.
func ContributionsCSV(records []core.Contribution) []byte {
	var b bytes.Buffer
	b.WriteString(strings.Join(contributionHeader, ","))
	b.WriteByte('\n')
	for _, rec := range records {
		row := []string{
			EscapeField(rec.ContributorName),
			EscapeField(string(rec.Category)),
			rec.Amount.Decimal(),
			displayDate(rec.Date),
			EscapeField(string(rec.Payment)),
			EscapeField(rec.Envelope),
			EscapeField(rec.Notes),
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.Bytes()
}

var contributorHeader = []string{
	"Nome", "Telefone", "Email", "Endereço", "Data de Nascimento",
	"Profissão", "Status", "Data de Cadastro", "Observações",
}

// ContributorsCSV renders contributor records as CSV with the same
// formatting conventions as ContributionsCSV.
func ContributorsCSV(records []core.Contributor) []byte {
	var b bytes.Buffer
	b.WriteString(strings.Join(contributorHeader, ","))
	b.WriteByte('\n')
	for _, rec := range records {
		row := []string{
			EscapeField(rec.Name),
			EscapeField(rec.Phone),
			EscapeField(rec.Email),
			EscapeField(rec.Address),
			displayDate(rec.BirthDate),
			EscapeField(rec.Occupation),
			EscapeField(string(rec.Status)),
			rec.CreatedAt.Format(dateDisplay),
			EscapeField(rec.Notes),
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// CSVFileName builds the export filename: <entity>_<ISO-date>.csv.
func CSVFileName(entity string, t time.Time) string {
	return entity + "_" + t.Format("2006-01-02") + ".csv"
}

// PDFFileName builds the document filename: <kind>_<ISO-date>_<HH-mm-ss>.pdf.
func PDFFileName(kind string, t time.Time) string {
	return kind + "_" + t.Format("2006-01-02") + "_" + t.Format("15-04-05") + ".pdf"
}
