package pdf

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/jhoicas/docs-api/internal/application/document"
)

var _ document.TextExtractor = (*LedongthucExtractor)(nil)

// LedongthucExtractor extrae texto plano por página con github.com/ledongthuc/pdf.
type LedongthucExtractor struct {
	maxPages int
}

// NewTextExtractor construye el extractor. maxPages <= 0 no limita.
func NewTextExtractor(maxPages int) *LedongthucExtractor {
	return &LedongthucExtractor{maxPages: maxPages}
}

// ExtractPages devuelve el texto de cada página en orden, con las líneas separadas por "\n";
// una página sin contenido aporta "".
// El parser puede entrar en pánico con archivos corruptos: se convierte en error.
func (e *LedongthucExtractor) ExtractPages(ctx context.Context, data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf: parser: %v", r)
		}
	}()

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf: abrir: %w", err)
	}
	n := reader.NumPage()
	if e.maxPages > 0 && n > e.maxPages {
		return nil, fmt.Errorf("pdf: %d páginas supera el máximo de %d", n, e.maxPages)
	}

	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText(page.Content().Text))
	}
	return pages, nil
}

// pageText agrupa los glifos por línea base (de arriba hacia abajo) y ordena cada línea por X.
// Entre dos glifos se inserta un espacio cuando hay un hueco mayor que el avance esperado:
// así se separan celdas distintas que comparten línea.
func pageText(glyphs []lpdf.Text) string {
	if len(glyphs) == 0 {
		return ""
	}
	type line struct {
		y      float64
		glyphs []lpdf.Text
	}
	var lines []*line
	for _, g := range glyphs {
		var target *line
		for _, l := range lines {
			if math.Abs(l.y-g.Y) <= baselineTolerance {
				target = l
				break
			}
		}
		if target == nil {
			target = &line{y: g.Y}
			lines = append(lines, target)
		}
		target.glyphs = append(target.glyphs, g)
	}
	// Y crece de abajo hacia arriba
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	out := make([]string, 0, len(lines))
	for _, l := range lines {
		sort.SliceStable(l.glyphs, func(i, j int) bool { return l.glyphs[i].X < l.glyphs[j].X })
		var sb strings.Builder
		for k, g := range l.glyphs {
			if k > 0 && needsSpace(l.glyphs[k-1], g) {
				sb.WriteByte(' ')
			}
			sb.WriteString(g.S)
		}
		out = append(out, strings.TrimRight(sb.String(), " "))
	}
	return strings.Join(out, "\n")
}

// tolerancia en puntos para considerar dos glifos en la misma línea
const baselineTolerance = 1.0

func needsSpace(prev, cur lpdf.Text) bool {
	if strings.HasSuffix(prev.S, " ") || strings.HasPrefix(cur.S, " ") {
		return false
	}
	gap := cur.X - (prev.X + prev.W)
	return gap > math.Max(prev.FontSize*0.15, 0.5)
}
