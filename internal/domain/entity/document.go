package entity

import "time"

// Document registro de un documento subido. Inmutable una vez creado.
// PostedBy y Role se copian del principal que lo subió, nunca del cliente.
type Document struct {
	ID          string
	Title       string
	Content     string // texto enviado por el cliente o extraído del PDF
	PostedBy    string
	Role        string
	Filename    string // nombre original (normalizado), solo metadato
	StorageKey  string // clave generada en el blob store
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}

// VisibleTo aplica la regla de acceso: admin ve todo, el resto solo lo propio.
func (d *Document) VisibleTo(p Principal) bool {
	return p.IsAdmin() || d.PostedBy == p.Username
}
