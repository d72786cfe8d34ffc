package document

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/docs-api/internal/domain"
)

const maxFilenameBytes = 255

// SanitizeFilename valida el nombre enviado por el cliente y lo devuelve normalizado (NFC).
// Rechaza nombres vacíos, "." y "..", separadores de ruta y caracteres de control.
func SanitizeFilename(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	switch {
	case name == "", name == ".", name == "..":
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidFilename, name)
	case len(name) > maxFilenameBytes:
		return "", fmt.Errorf("%w: más de %d bytes", domain.ErrInvalidFilename, maxFilenameBytes)
	case strings.ContainsAny(name, `/\`):
		return "", fmt.Errorf("%w: contiene separadores de ruta", domain.ErrInvalidFilename)
	}
	for _, r := range name {
		if r == unicode.ReplacementChar || unicode.IsControl(r) {
			return "", fmt.Errorf("%w: caracteres no permitidos", domain.ErrInvalidFilename)
		}
	}
	return name, nil
}

// StorageKey deriva la clave del blob a partir de un ID generado y la extensión del archivo.
// Extensiones con caracteres fuera de [a-z0-9] se descartan.
func StorageKey(id, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 10 {
		return id
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return id
		}
	}
	return id + ext
}

// IsPDF indica si el nombre tiene extensión .pdf (sin distinguir mayúsculas).
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
