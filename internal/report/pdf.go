package report

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"dizimo/internal/core"
)

// Options configures one document generation. It is passed explicitly into
// every call; the composer keeps no process-wide default state.
type Options struct {
	ChurchName   string
	Address      string
	FooterNotice string
	GeneratedAt  time.Time

	// MaxRows caps record tables. Zero means the default of 50.
	MaxRows int
}

func (o Options) maxRows() int {
	if o.MaxRows > 0 {
		return o.MaxRows
	}
	return 50
}

func (o Options) generatedAt() time.Time {
	if o.GeneratedAt.IsZero() {
		return time.Now()
	}
	return o.GeneratedAt
}

// Period is the date window a report covers. Either bound may be open.
type Period struct {
	Start core.Date
	End   core.Date
}

func (p Period) Label() string {
	switch {
	case p.Start.IsZero() && p.End.IsZero():
		return "Todo o período"
	case p.Start.IsZero():
		return "Até " + displayDate(p.End)
	case p.End.IsZero():
		return "A partir de " + displayDate(p.Start)
	}
	return displayDate(p.Start) + " a " + displayDate(p.End)
}

// Composer assembles paginated PDF documents.
type Composer struct {
	opts Options
}

func NewComposer(opts Options) *Composer {
	return &Composer{opts: opts}
}

// Vertical cursor threshold: past this point a new major section starts on a
// fresh page. A4 is 297mm tall; the footer band begins around 272mm.
const pageBreakAt = 240.0

type doc struct {
	*fpdf.Fpdf
	tr func(string) string
}

func (c *Composer) newDoc(title string) *doc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 25)
	pdf.SetCompression(false)
	pdf.AliasNbPages("")

	d := &doc{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	generated := c.opts.generatedAt()
	pdf.SetFooterFunc(func() {
		pdf.SetY(-20)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 4, d.tr(c.opts.FooterNotice), "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 4, d.tr(fmt.Sprintf("Gerado em %s | Página %d de {nb}",
			generated.Format("02/01/2006 15:04"), pdf.PageNo())), "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	c.letterhead(d, title)
	return d
}

func (c *Composer) letterhead(d *doc, title string) {
	d.SetFont("Helvetica", "B", 15)
	d.CellFormat(0, 8, d.tr(c.opts.ChurchName), "", 1, "C", false, 0, "")
	if c.opts.Address != "" {
		d.SetFont("Helvetica", "", 9)
		d.SetTextColor(90, 90, 90)
		d.CellFormat(0, 5, d.tr(c.opts.Address), "", 1, "C", false, 0, "")
		d.SetTextColor(0, 0, 0)
	}
	d.Ln(3)
	d.SetFont("Helvetica", "B", 12)
	d.CellFormat(0, 7, d.tr(title), "", 1, "C", false, 0, "")
	d.SetFont("Helvetica", "", 9)
	d.CellFormat(0, 5, d.tr("Emitido em "+c.opts.generatedAt().Format("02/01/2006 15:04:05")),
		"", 1, "C", false, 0, "")
	d.Ln(4)
}

// ensureRoom starts a new page when the cursor sits too low for a new major
// section.
func (d *doc) ensureRoom() {
	if d.GetY() > pageBreakAt {
		d.AddPage()
	}
}

func (d *doc) sectionTitle(s string) {
	d.ensureRoom()
	d.SetFont("Helvetica", "B", 11)
	d.SetFillColor(230, 230, 230)
	d.CellFormat(0, 7, d.tr(s), "", 1, "L", true, 0, "")
	d.Ln(2)
}

func (d *doc) keyValue(rows [][2]string) {
	for _, row := range rows {
		d.SetFont("Helvetica", "B", 9)
		d.CellFormat(70, 6, d.tr(row[0]), "B", 0, "L", false, 0, "")
		d.SetFont("Helvetica", "", 9)
		d.CellFormat(0, 6, d.tr(row[1]), "B", 1, "R", false, 0, "")
	}
	d.Ln(3)
}

func (d *doc) tableHead(widths []float64, cols []string) {
	d.SetFont("Helvetica", "B", 8)
	d.SetFillColor(60, 60, 60)
	d.SetTextColor(255, 255, 255)
	for i, col := range cols {
		d.CellFormat(widths[i], 6, d.tr(col), "1", 0, "L", true, 0, "")
	}
	d.Ln(-1)
	d.SetTextColor(0, 0, 0)
}

func (d *doc) tableRow(widths []float64, cols []string, aligns []string, shade bool) {
	d.SetFont("Helvetica", "", 8)
	if shade {
		d.SetFillColor(243, 243, 243)
	}
	for i, col := range cols {
		d.CellFormat(widths[i], 5.5, d.tr(col), "1", 0, aligns[i], shade, 0, "")
	}
	d.Ln(-1)
}

// truncationNotice returns the "N of M" notice when the table was capped, or
// an empty string when every row fits.
func truncationNotice(shown, total int) string {
	if total <= shown {
		return ""
	}
	return fmt.Sprintf("Exibindo %d de %d registros", shown, total)
}

func (d *doc) notice(s string) {
	if s == "" {
		return
	}
	d.SetFont("Helvetica", "I", 8)
	d.SetTextColor(120, 120, 120)
	d.CellFormat(0, 5, d.tr(s), "", 1, "L", false, 0, "")
	d.SetTextColor(0, 0, 0)
}

// formatPercent renders part/whole as a percentage with one decimal and a
// comma separator ("42,3%"). A zero denominator yields "0,0%".
func formatPercent(part, whole int64) string {
	if whole == 0 {
		return "0,0%"
	}
	v := float64(part) / float64(whole) * 100
	return strings.Replace(fmt.Sprintf("%.1f%%", v), ".", ",", 1)
}

// ContributionReportData is everything the contribution document renders.
type ContributionReportData struct {
	Period  Period
	Filters []string
	Stats   core.Statistics
	Records []core.Contribution
}

// ContributionReport produces the period contribution document: filter
// summary, statistics table, capped record table and category breakdown.
func (c *Composer) ContributionReport(data ContributionReportData) ([]byte, error) {
	d := c.newDoc("Relatório de Contribuições")

	d.sectionTitle("Período e Filtros")
	filters := append([]string{"Período: " + data.Period.Label()}, data.Filters...)
	d.SetFont("Helvetica", "", 9)
	for _, f := range filters {
		d.CellFormat(0, 5, d.tr(f), "", 1, "L", false, 0, "")
	}
	d.Ln(3)

	d.sectionTitle("Resumo Estatístico")
	d.keyValue([][2]string{
		{"Total de Dízimos", data.Stats.TotalTithes.BRL()},
		{"Total de Ofertas", data.Stats.TotalOfferings.BRL()},
		{"Total Geral", data.Stats.GrandTotal.BRL()},
		{"Total do Mês Anterior", data.Stats.LastMonthTotal.BRL()},
		{"Média Mensal", data.Stats.MonthlyAverage.BRL()},
		{"Contribuintes Distintos", strconv.Itoa(data.Stats.ContributorCount)},
	})

	d.sectionTitle("Contribuições")
	widths := []float64{22, 58, 38, 28, 34}
	aligns := []string{"L", "L", "L", "R", "L"}
	d.tableHead(widths, []string{"Data", "Nome", "Categoria", "Valor", "Pagamento"})
	shown := len(data.Records)
	if shown > c.opts.maxRows() {
		shown = c.opts.maxRows()
	}
	for i := 0; i < shown; i++ {
		rec := data.Records[i]
		d.tableRow(widths, []string{
			displayDate(rec.Date),
			rec.ContributorName,
			string(rec.Category),
			rec.Amount.BRL(),
			string(rec.Payment),
		}, aligns, i%2 == 1)
	}
	d.Ln(1)
	d.notice(truncationNotice(shown, len(data.Records)))
	d.Ln(3)

	if len(data.Stats.ByCategory) > 0 {
		d.sectionTitle("Totais por Categoria")
		cats := make([]core.Category, 0, len(data.Stats.ByCategory))
		for cat := range data.Stats.ByCategory {
			cats = append(cats, cat)
		}
		sort.Slice(cats, func(a, b int) bool {
			return data.Stats.ByCategory[cats[a]].Cents > data.Stats.ByCategory[cats[b]].Cents
		})
		cw := []float64{120, 60}
		d.tableHead(cw, []string{"Categoria", "Total"})
		for i, cat := range cats {
			d.tableRow(cw, []string{string(cat), data.Stats.ByCategory[cat].BRL()},
				[]string{"L", "R"}, i%2 == 1)
		}
	}

	return output(d)
}

// ContributorReportData is everything the contributor document renders.
type ContributorReportData struct {
	Filters []string
	Records []core.Contributor
}

// statusCounts tallies contributors per lifecycle status, in a fixed display
// order with any stray status values appended.
func statusCounts(records []core.Contributor) [][2]string {
	counts := make(map[core.ContributorStatus]int)
	for _, rec := range records {
		counts[rec.Status]++
	}
	order := []core.ContributorStatus{core.StatusActive, core.StatusInactive, core.StatusSuspended}
	out := [][2]string{{"Total de Dizimistas", strconv.Itoa(len(records))}}
	for _, st := range order {
		out = append(out, [2]string{string(st), strconv.Itoa(counts[st])})
		delete(counts, st)
	}
	strays := make([]string, 0, len(counts))
	for st := range counts {
		strays = append(strays, string(st))
	}
	sort.Strings(strays)
	for _, st := range strays {
		out = append(out, [2]string{st, strconv.Itoa(counts[core.ContributorStatus(st)])})
	}
	return out
}

// ContributorReport produces the contributor roster document: filter
// summary, status-count statistics and the capped row table.
func (c *Composer) ContributorReport(data ContributorReportData) ([]byte, error) {
	d := c.newDoc("Relatório de Dizimistas")

	if len(data.Filters) > 0 {
		d.sectionTitle("Filtros Aplicados")
		d.SetFont("Helvetica", "", 9)
		for _, f := range data.Filters {
			d.CellFormat(0, 5, d.tr(f), "", 1, "L", false, 0, "")
		}
		d.Ln(3)
	}

	d.sectionTitle("Resumo")
	d.keyValue(statusCounts(data.Records))

	d.sectionTitle("Dizimistas")
	widths := []float64{52, 30, 46, 22, 30}
	aligns := []string{"L", "L", "L", "L", "L"}
	d.tableHead(widths, []string{"Nome", "Telefone", "Email", "Status", "Cadastro"})
	shown := len(data.Records)
	if shown > c.opts.maxRows() {
		shown = c.opts.maxRows()
	}
	for i := 0; i < shown; i++ {
		rec := data.Records[i]
		d.tableRow(widths, []string{
			rec.Name,
			rec.Phone,
			rec.Email,
			string(rec.Status),
			rec.CreatedAt.Format(dateDisplay),
		}, aligns, i%2 == 1)
	}
	d.Ln(1)
	d.notice(truncationNotice(shown, len(data.Records)))

	return output(d)
}

// ConsolidatedReportData is everything the consolidated document renders.
type ConsolidatedReportData struct {
	Period Period
	Stats  core.Statistics

	// Top is the contributors-by-amount ranking, already capped at ten.
	Top []core.ContributorTotal

	// TotalContributors is the number of contributors on file, the
	// denominator of the participation rate.
	TotalContributors int
}

// ConsolidatedReport produces the executive document: summary percentages,
// top-10 contributor ranking and the trailing 12-month series.
func (c *Composer) ConsolidatedReport(data ConsolidatedReportData) ([]byte, error) {
	d := c.newDoc("Relatório Consolidado")

	d.sectionTitle("Período")
	d.SetFont("Helvetica", "", 9)
	d.CellFormat(0, 5, d.tr(data.Period.Label()), "", 1, "L", false, 0, "")
	d.Ln(3)

	d.sectionTitle("Resumo Executivo")
	grand := data.Stats.GrandTotal.Cents
	summary := fmt.Sprintf(
		"No período, foram arrecadados %s, dos quais %s em dízimos (%s do total) e %s em ofertas (%s do total). "+
			"Contribuíram %d dizimistas distintos, uma taxa de participação de %s sobre os %d dizimistas cadastrados. "+
			"A média mensal de arrecadação foi de %s.",
		data.Stats.GrandTotal.BRL(),
		data.Stats.TotalTithes.BRL(), formatPercent(data.Stats.TotalTithes.Cents, grand),
		data.Stats.TotalOfferings.BRL(), formatPercent(data.Stats.TotalOfferings.Cents, grand),
		data.Stats.ContributorCount,
		formatPercent(int64(data.Stats.ContributorCount), int64(data.TotalContributors)),
		data.TotalContributors,
		data.Stats.MonthlyAverage.BRL(),
	)
	d.SetFont("Helvetica", "", 9)
	d.MultiCell(0, 5, d.tr(summary), "", "J", false)
	d.Ln(3)

	d.sectionTitle("Maiores Contribuintes")
	widths := []float64{12, 92, 32, 44}
	d.tableHead(widths, []string{"#", "Nome", "Contribuições", "Total"})
	for i, row := range data.Top {
		name := row.Name
		if name == "" {
			name = "Dizimista " + strconv.FormatInt(row.ContributorID, 10)
		}
		d.tableRow(widths, []string{
			strconv.Itoa(i + 1),
			name,
			strconv.Itoa(row.Count),
			row.Total.BRL(),
		}, []string{"C", "L", "C", "R"}, i%2 == 1)
	}
	d.Ln(3)

	d.sectionTitle("Arrecadação Mensal (12 meses)")
	mw := []float64{90, 90}
	d.tableHead(mw, []string{"Mês", "Total"})
	for i, m := range data.Stats.MonthlySeries {
		d.tableRow(mw, []string{m.Label, m.Total.BRL()}, []string{"L", "R"}, i%2 == 1)
	}

	return output(d)
}

func output(d *doc) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
