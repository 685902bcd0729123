// Package pdf implementa la generación del kardex de producto: el historial
// de movimientos del libro de inventario en formato imprimible.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre comercial  │  Producto + Código + Rango      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Lote | Tipo | Cant | Δ Bodega | Δ Estante    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Neto bodega / Neto estante                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/surtika-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// KardexPDFGenerator genera el kardex de un producto usando Maroto v2.
type KardexPDFGenerator struct {
	appName string
}

// NewKardexPDFGenerator construye el generador. appName aparece en el header.
func NewKardexPDFGenerator(appName string) *KardexPDFGenerator {
	return &KardexPDFGenerator{appName: appName}
}

// GenerateKardexPDF genera el PDF y devuelve sus bytes. batchCodes mapea
// batch_id → código de lote para mostrar códigos legibles en la tabla.
func (g *KardexPDFGenerator) GenerateKardexPDF(
	_ context.Context,
	product *entity.Product,
	movements []*entity.InventoryMovement,
	batchCodes map[string]string,
	from, to *time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex de producto", true).
		WithAuthor(g.appName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.appName, product, from, to))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(movements, batchCodes) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(movements))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar kardex: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre de la app (izq) y producto + rango de fechas (der).
func headerRow(appName string, product *entity.Product, from, to *time.Time) core.Row {
	rango := "Histórico completo"
	if from != nil || to != nil {
		rango = fmt.Sprintf("%s — %s", formatDate(from, "inicio"), formatDate(to, "hoy"))
	}

	return row.New(18).Add(
		col.New(6).Add(
			text.New(appName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("KARDEX DE PRODUCTO", props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(6).Add(
			text.New(product.Name, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 1,
			}),
			text.New("Código: "+product.Code, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Rango: "+rango, props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Lote", 2, align.Left),
		h("Tipo", 1, align.Center),
		h("Cant.", 1, align.Right),
		h("Δ Bodega", 2, align.Right),
		h("Δ Estante", 2, align.Right),
		h("Motivo", 2, align.Left),
	)
}

// tableDetailRows: una fila por asiento del libro.
func tableDetailRows(movements []*entity.InventoryMovement, batchCodes map[string]string) []core.Row {
	result := make([]core.Row, 0, len(movements))
	for _, mv := range movements {
		lote := batchCodes[mv.BatchID]
		if lote == "" {
			lote = shorten(mv.BatchID, 8)
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(
				mv.CreatedAt.Format("02/01/2006 15:04"),
				props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				lote,
				props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				string(mv.Type),
				props.Text{Size: 7.5, Align: align.Center, Top: 1},
			)),
			col.New(1).Add(text.New(
				mv.Quantity.String(),
				props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(deltaText(mv.DeltaOnHand)),
			col.New(2).Add(deltaText(mv.DeltaOnShelf)),
			col.New(2).Add(text.New(
				mv.Reason,
				props.Text{Size: 7, Align: align.Left, Top: 1, Left: 1, Color: colorGray},
			)),
		))
	}
	if len(result) == 0 {
		result = append(result, row.New(8).Add(col.New(12).Add(
			text.New("Sin movimientos en el rango seleccionado.", props.Text{
				Size: 8, Align: align.Center, Color: colorGray, Top: 2,
			}),
		)))
	}
	return result
}

// totalsRow: sumas netas de los deltas mostrados.
func totalsRow(movements []*entity.InventoryMovement) core.Row {
	netHand, netShelf := decimal.Zero, decimal.Zero
	for _, mv := range movements {
		netHand = netHand.Add(mv.DeltaOnHand)
		netShelf = netShelf.Add(mv.DeltaOnShelf)
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}
	return row.New(14).Add(
		col.New(4),
		col.New(4).Add(
			label("Neto bodega:"),
			label("Neto estante:"),
		),
		col.New(4).Add(
			value(netHand.String()),
			value(netShelf.String()),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// deltaText pinta los negativos en rojo.
func deltaText(d decimal.Decimal) core.Component {
	p := props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1}
	if d.IsNegative() {
		p.Color = colorRed
	}
	return text.New(d.String(), p)
}

func formatDate(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Format("02/01/2006")
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
