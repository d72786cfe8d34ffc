// Package pdf contiene los adaptadores PDF: extracción de texto de archivos subidos
// y exportación de un documento almacenado.
//
// Layout de la exportación (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título                               │  QR del ID   │
//	│  Publicado por / rol / fecha / archivo original             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONTENIDO: una fila por línea (ajustada a ancho)            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: ID del documento + tamaño                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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

	"github.com/jhoicas/docs-api/internal/application/document"
	"github.com/jhoicas/docs-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// caracteres por línea de contenido con helvetica 9 en A4 con márgenes de 10mm
const contentLineWidth = 105

// ── Generator ─────────────────────────────────────────────────────────────────

var _ document.DocumentRenderer = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa document.DocumentRenderer usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// RenderDocumentPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) RenderDocumentPDF(_ context.Context, doc *entity.Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(doc.Title, true).
		WithAuthor(doc.PostedBy, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(metaRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	for _, l := range wrapLines(doc.Content, contentLineWidth) {
		m.AddRows(text.NewRow(5, l, props.Text{Size: 9, Top: 1}))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(doc))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y QR con el ID (der).
func headerRow(doc *entity.Document) core.Row {
	return row.New(24).Add(
		col.New(9).Add(
			text.New(nonEmpty(doc.Title, "(sin título)"), props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 4,
			}),
		),
		col.New(3).Add(code.NewQr(doc.ID, props.Rect{Percent: 90, Center: true})),
	)
}

// metaRow: autor, rol, fecha y nombre del archivo original.
func metaRow(doc *entity.Document) core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Publicado por: %s (%s)   |   Fecha: %s   |   Archivo: %s",
				doc.PostedBy,
				nonEmpty(doc.Role, "—"),
				doc.CreatedAt.Format("02/01/2006 15:04"),
				nonEmpty(doc.Filename, "—"),
			), props.Text{Size: 8, Top: 2, Color: colorGray}),
		),
	)
}

func footerRow(doc *entity.Document) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("ID: %s   |   %d bytes   |   %s", doc.ID, doc.SizeBytes, nonEmpty(doc.ContentType, "—")),
			props.Text{Size: 6.5, Color: colorGray, Top: 2, Align: align.Center}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// wrapLines parte el contenido en líneas de max n runas, respetando los saltos originales.
func wrapLines(s string, n int) []string {
	var out []string
	for _, l := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		l = strings.TrimRight(l, "\r")
		if l == "" {
			out = append(out, " ")
			continue
		}
		for utf8.RuneCountInString(l) > n {
			r := []rune(l)
			cut := n
			if i := lastSpace(r[:n]); i > 0 {
				cut = i
			}
			out = append(out, string(r[:cut]))
			l = strings.TrimLeft(string(r[cut:]), " ")
		}
		out = append(out, l)
	}
	return out
}

func lastSpace(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == ' ' {
			return i
		}
	}
	return -1
}
