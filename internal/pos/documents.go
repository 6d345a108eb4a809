package pos

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
)

// SurfaceOpener hands out a fresh print surface for one document.
type SurfaceOpener interface {
	Open(title string) (io.WriteCloser, error)
}

// Clinic is the header printed on every document.
type Clinic struct {
	Name    string
	Address string
	Brand   string
}

const (
	labelTimeFormat     = "2/1/2006 15:04:05"
	emptyCustomer       = "................"
	defaultInstructions = "SESUAI PETUNJUK APOTEKER"
)

const printScript = `<script>window.onload = function () { window.print(); };</script>`

var labelTemplate = template.Must(template.New("label").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: 8cm 5cm; margin: 0; }
body { font-family: sans-serif; width: 8cm; height: 5cm; padding: 10px 15px; margin: 0; color: #000; box-sizing: border-box; display: flex; flex-direction: column; line-height: 1.1; }
.header { text-align: center; font-size: 8px; font-weight: bold; border-bottom: 1px solid #000; padding-bottom: 2px; margin-bottom: 5px; }
.info-row { display: flex; justify-content: space-between; font-size: 7px; margin-bottom: 2px; font-weight: bold; }
.patient-name, .medicine-row, .signa { font-size: 10px; font-weight: 900; margin: 2px 0; }
.exp-section { font-size: 8px; font-weight: bold; margin-top: auto; padding-top: 2px; }
.footer-warning { text-align: center; color: red; font-size: 7px; font-weight: 900; border-top: 1px dashed #ccc; padding-top: 2px; margin-top: 2px; }
</style>
</head>
<body>
<div class="header">{{.ClinicName}}<br/>{{.ClinicAddress}}</div>
<div class="info-row"><span>{{.PrintedAt}}</span><span>ID: {{.ShortID}}</span></div>
<div class="patient-name">Nama Pasien: {{.Customer}}</div>
<div class="medicine-row">[Qty]: {{.Quantity}} Unit {{.Name}}</div>
<div class="signa">{{.Instructions}}</div>
<div class="exp-section">Exp Date: ( _____ / _____ / ________ )</div>
<div class="footer-warning">HINDARI DARI JANGKAUAN ANAK - ANAK</div>
` + printScript + `
</body>
</html>
`))

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: 'Inter', sans-serif; padding: 40px; color: #334155; }
.brand { color: #00A99D; font-size: 24px; font-weight: 900; margin-bottom: 5px; }
.header-info { font-size: 12px; margin-bottom: 30px; border-bottom: 2px solid #f1f5f9; padding-bottom: 20px; }
.meta { display: flex; justify-content: space-between; margin-top: 20px; }
table { width: 100%; border-collapse: collapse; margin: 20px 0; }
th { text-align: left; font-size: 11px; text-transform: uppercase; color: #64748b; padding: 12px 8px; border-bottom: 2px solid #f1f5f9; }
td { padding: 12px 8px; font-size: 14px; border-bottom: 1px solid #f1f5f9; }
.amount { text-align: right; }
.total-row { display: flex; justify-content: flex-end; gap: 40px; margin-bottom: 8px; font-size: 14px; }
.grand-total { font-size: 24px; font-weight: 900; color: #00A99D; margin-top: 10px; text-align: right; }
.footer { text-align: center; margin-top: 60px; font-size: 12px; color: #94a3b8; border-top: 1px dashed #e2e8f0; padding-top: 20px; }
</style>
</head>
<body>
<div class="brand">{{.Brand}}</div>
<div class="header-info">
<p><strong>{{.ClinicName}}</strong><br/>{{.ClinicAddress}}</p>
<div class="meta">
<span><strong>Customer:</strong> {{.Customer}}</span>
<span><strong>Date:</strong> {{.Date}} | <strong>Method:</strong> {{.Method}}</span>
</div>
</div>
<table>
<thead><tr><th>Item Description</th><th>Qty</th><th class="amount">Total Price</th></tr></thead>
<tbody>
{{- range .Lines}}
<tr><td><strong>{{.Name}}</strong></td><td>{{.Quantity}}</td><td class="amount">{{.Total}}</td></tr>
{{- end}}
</tbody>
</table>
<div class="total-box">
<div class="total-row"><span>Subtotal:</span><span>{{.Subtotal}}</span></div>
<div class="total-row"><span>Tax ({{.TaxPercent}}%):</span><span>{{.Tax}}</span></div>
<div class="grand-total">TOTAL DUE: {{.Total}}</div>
</div>
<div class="footer"><p>Terima kasih atas kunjungan Anda. Semoga lekas sembuh!</p></div>
` + printScript + `
</body>
</html>
`))

type labelView struct {
	Title         string
	ClinicName    string
	ClinicAddress string
	PrintedAt     string
	ShortID       string
	Customer      string
	Quantity      int64
	Name          string
	Instructions  string
}

type invoiceLine struct {
	Name     string
	Quantity int64
	Total    string
}

type invoiceView struct {
	Title         string
	Brand         string
	ClinicName    string
	ClinicAddress string
	Customer      string
	Date          string
	Method        string
	Lines         []invoiceLine
	Subtotal      string
	TaxPercent    string
	Tax           string
	Total         string
}

// Renderer builds the prescription label and the invoice documents.
type Renderer struct {
	clinic  Clinic
	pricing Pricing
	money   Money
	now     func() time.Time
}

func NewRenderer(clinic Clinic, pricing Pricing, money Money) *Renderer {
	if clinic.Brand == "" {
		clinic.Brand = "➕ PHARMGATE"
	}
	return &Renderer{clinic: clinic, pricing: pricing, money: money, now: time.Now}
}

// RenderLabel renders the 8cm × 5cm label for a single cart line.
func (r *Renderer) RenderLabel(line CartLine, customer string) ([]byte, error) {
	view := labelView{
		Title:         "Label " + line.Name,
		ClinicName:    r.clinic.Name,
		ClinicAddress: r.clinic.Address,
		PrintedAt:     r.now().Format(labelTimeFormat),
		ShortID:       shortID(line.MedicineID),
		Customer:      emptyCustomer,
		Quantity:      line.Quantity,
		Name:          strings.ToUpper(line.Name),
		Instructions:  defaultInstructions,
	}
	if c := strings.TrimSpace(customer); c != "" {
		view.Customer = strings.ToUpper(c)
	}
	if h := strings.TrimSpace(line.HowToUse); h != "" {
		view.Instructions = strings.ToUpper(h)
	}
	return execute(labelTemplate, view)
}

// RenderInvoice renders the whole-order invoice of a committed receipt.
func (r *Renderer) RenderInvoice(rc Receipt) ([]byte, error) {
	view := invoiceView{
		Title:         "Invoice " + rc.Date,
		Brand:         r.clinic.Brand,
		ClinicName:    r.clinic.Name,
		ClinicAddress: r.clinic.Address,
		Customer:      rc.Customer,
		Date:          rc.Date,
		Method:        rc.PaymentMethod,
		Lines:         make([]invoiceLine, 0, len(rc.Lines)),
		Subtotal:      r.money.Format(rc.Totals.Subtotal),
		TaxPercent:    r.pricing.RatePercent(),
		Tax:           r.money.Format(rc.Totals.Tax),
		Total:         r.money.Format(rc.Totals.Total),
	}
	if strings.TrimSpace(view.Customer) == "" {
		view.Customer = domain.DefaultCustomer
	}
	for _, line := range rc.Lines {
		view.Lines = append(view.Lines, invoiceLine{Name: line.Name, Quantity: line.Quantity, Total: r.money.Format(line.Total)})
	}
	return execute(invoiceTemplate, view)
}

// Print opens a surface and writes the whole document into it. Nothing is
// written when the surface cannot be opened.
func Print(opener SurfaceOpener, title string, doc []byte) error {
	surface, err := opener.Open(title)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSurfaceUnavailable, err)
	}
	if _, err := surface.Write(doc); err != nil {
		surface.Close()
		return fmt.Errorf("write document: %w", err)
	}
	return surface.Close()
}

func execute(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.Bytes(), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}
