package document_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/docs-api/internal/application/document"
	"github.com/jhoicas/docs-api/internal/application/dto"
	"github.com/jhoicas/docs-api/internal/domain"
	"github.com/jhoicas/docs-api/internal/domain/entity"
	"github.com/jhoicas/docs-api/internal/infrastructure/memory"
	"github.com/jhoicas/docs-api/internal/infrastructure/storage"
	"github.com/jhoicas/docs-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test
// ──────────────────────────────────────────────────────────────────────────────

type fakeExtractor struct {
	pages []string
	err   error
	calls int
}

func (f *fakeExtractor) ExtractPages(_ context.Context, _ []byte) ([]string, error) {
	f.calls++
	return f.pages, f.err
}

type fakeRenderer struct{}

func (fakeRenderer) RenderDocumentPDF(_ context.Context, doc *entity.Document) ([]byte, error) {
	return []byte("%PDF-" + doc.Title), nil
}

type failingDocs struct{ *memory.DocumentRepo }

// strictIDDocs falla con un error de infraestructura si recibe un id que no es UUID,
// como hace la columna UUID de PostgreSQL.
type strictIDDocs struct {
	*memory.DocumentRepo
	lookups int
}

func (s *strictIDDocs) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	s.lookups++
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.New("cannot encode uuid")
	}
	return s.DocumentRepo.GetByID(ctx, id)
}

func (failingDocs) Create(context.Context, *entity.Document) error { return errors.New("db caída") }

var (
	alice = entity.Principal{Username: "alice", Role: entity.RoleEmployee}
	bob   = entity.Principal{Username: "bob", Role: entity.RoleEmployee}
	admin = entity.Principal{Username: "root", Role: entity.RoleAdmin}
)

type fixture struct {
	uc        *document.DocumentUseCase
	fs        afero.Fs
	extractor *fakeExtractor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	ex := &fakeExtractor{pages: []string{"Hello", "World"}}
	uc := document.NewDocumentUseCase(
		memory.NewDocumentRepository(),
		storage.NewLocalStoreFs(fs),
		ex,
		fakeRenderer{},
		logger.Nop(),
		nil,
	)
	return &fixture{uc: uc, fs: fs, extractor: ex}
}

func (f *fixture) upload(t *testing.T, p entity.Principal, title, filename string) *dto.DocumentResponse {
	t.Helper()
	out, err := f.uc.CreateDocument(context.Background(), p, dto.CreateDocumentInput{
		Title: title, Content: "C", Filename: filename, Data: []byte("bytes"),
	})
	require.NoError(t, err)
	return out
}

func blobCount(t *testing.T, fs afero.Fs) int {
	t.Helper()
	entries, err := afero.ReadDir(fs, "/")
	if err != nil {
		return 0
	}
	return len(entries)
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateDocument
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateDocument_PDFExtraeTexto(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.CreateDocument(context.Background(), alice, dto.CreateDocumentInput{
		Title: "Reporte", Content: "ignorado", Filename: "report.pdf", Data: []byte("%PDF-1.4"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello\nWorld\n", out.Content, "cada página termina en salto de línea")
	assert.Equal(t, "report.pdf", out.Filename)
	assert.Equal(t, 1, f.extractor.calls)
}

func TestCreateDocument_PDFExtensionEnMayusculas(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.CreateDocument(context.Background(), alice, dto.CreateDocumentInput{
		Title: "R", Filename: "REPORT.PDF", Data: []byte("%PDF"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld\n", out.Content)
}

func TestCreateDocument_NoPDFGuardaContenidoLiteral(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.CreateDocument(context.Background(), alice, dto.CreateDocumentInput{
		Title: "T", Content: "plain text", Filename: "notes.txt", Data: []byte("bytes que no importan"),
	})
	require.NoError(t, err)

	assert.Equal(t, "plain text", out.Content)
	assert.Equal(t, 0, f.extractor.calls, "no se invoca el extractor para archivos no PDF")
}

func TestCreateDocument_IdentidadDelPrincipal(t *testing.T) {
	f := newFixture(t)
	out := f.upload(t, alice, "T", "t.txt")

	assert.Equal(t, "alice", out.PostedBy)
	assert.Equal(t, entity.RoleEmployee, out.Role)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, int64(5), out.SizeBytes)
	assert.Equal(t, "application/octet-stream", out.ContentType)
}

func TestCreateDocument_GuardaBlobConClaveGenerada(t *testing.T) {
	f := newFixture(t)
	out := f.upload(t, alice, "T", "t.txt")

	exists, err := afero.Exists(f.fs, out.ID+".txt")
	require.NoError(t, err)
	assert.True(t, exists, "la clave del blob es <id><ext>, no el nombre del cliente")

	exists, _ = afero.Exists(f.fs, "t.txt")
	assert.False(t, exists)
}

func TestCreateDocument_RechazaPathTraversal(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"../../etc/passwd", `..\..\boot.ini`, "dir/file.txt", "..", "", "a\x00b.pdf"} {
		_, err := f.uc.CreateDocument(context.Background(), alice, dto.CreateDocumentInput{
			Title: "T", Filename: name, Data: []byte("x"),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidFilename, "filename=%q", name)
	}
	assert.Equal(t, 0, blobCount(t, f.fs), "ningún blob se escribe para nombres rechazados")
}

func TestCreateDocument_ErrorDeExtraccion(t *testing.T) {
	f := newFixture(t)
	f.extractor.err = errors.New("xref corrupta")

	_, err := f.uc.CreateDocument(context.Background(), alice, dto.CreateDocumentInput{
		Title: "T", Filename: "broken.pdf", Data: []byte("%PDF-roto"),
	})
	require.ErrorIs(t, err, domain.ErrExtraction)
	assert.Equal(t, 0, blobCount(t, f.fs), "el blob de una subida fallida se descarta")

	list, err := f.uc.ListDocuments(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, list, "no se crea registro")
}

func TestCreateDocument_FalloDelStoreDescartaBlob(t *testing.T) {
	fs := afero.NewMemMapFs()
	uc := document.NewDocumentUseCase(
		failingDocs{memory.NewDocumentRepository()},
		storage.NewLocalStoreFs(fs),
		&fakeExtractor{}, fakeRenderer{}, logger.Nop(), nil,
	)
	_, err := uc.CreateDocument(context.Background(), alice, dto.CreateDocumentInput{
		Title: "T", Filename: "t.txt", Data: []byte("x"),
	})
	require.Error(t, err)
	assert.Equal(t, 0, blobCount(t, fs))
}

// ──────────────────────────────────────────────────────────────────────────────
// ListDocuments / GetDocument
// ──────────────────────────────────────────────────────────────────────────────

func TestListDocuments_NoAdminSoloVeLoPropio(t *testing.T) {
	f := newFixture(t)
	f.upload(t, alice, "A1", "a1.txt")
	f.upload(t, bob, "B1", "b1.txt")
	f.upload(t, alice, "A2", "a2.txt")

	list, err := f.uc.ListDocuments(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, d := range list {
		assert.Equal(t, "alice", d.PostedBy, "un no-admin nunca recibe documentos ajenos")
	}
	assert.Equal(t, []string{"A1", "A2"}, []string{list[0].Title, list[1].Title}, "orden de inserción")

	list, err = f.uc.ListDocuments(context.Background(), bob)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].PostedBy)
}

func TestListDocuments_AdminVeTodo(t *testing.T) {
	f := newFixture(t)
	f.upload(t, alice, "A1", "a1.txt")
	f.upload(t, bob, "B1", "b1.txt")

	list, err := f.uc.ListDocuments(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListDocuments_SinDocumentosDevuelveListaVacia(t *testing.T) {
	f := newFixture(t)
	list, err := f.uc.ListDocuments(context.Background(), alice)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGetDocument_AjenoEsNotFound(t *testing.T) {
	f := newFixture(t)
	doc := f.upload(t, alice, "A1", "a1.txt")

	_, err := f.uc.GetDocument(context.Background(), bob, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.uc.GetDocument(context.Background(), admin, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)

	_, err = f.uc.GetDocument(context.Background(), alice, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetDocument_IDNoUUIDEsNotFound(t *testing.T) {
	docs := &strictIDDocs{DocumentRepo: memory.NewDocumentRepository()}
	uc := document.NewDocumentUseCase(
		docs, storage.NewLocalStoreFs(afero.NewMemMapFs()),
		&fakeExtractor{}, fakeRenderer{}, logger.Nop(), nil,
	)
	ctx := context.Background()

	_, err := uc.GetDocument(ctx, alice, "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = uc.OpenFile(ctx, alice, "../etc/passwd")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = uc.ExportPDF(ctx, admin, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, docs.lookups, "un id inválido no llega al store")

	_, err = uc.GetDocument(ctx, alice, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, docs.lookups)
}

func TestOpenFile_DevuelveBytesOriginales(t *testing.T) {
	f := newFixture(t)
	doc := f.upload(t, alice, "A1", "a1.txt")

	rc, meta, err := f.uc.OpenFile(context.Background(), alice, doc.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))
	assert.Equal(t, "a1.txt", meta.Filename)

	_, _, err = f.uc.OpenFile(context.Background(), bob, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExportPDF(t *testing.T) {
	f := newFixture(t)
	doc := f.upload(t, alice, "Titulo", "a1.txt")

	out, name, err := f.uc.ExportPDF(context.Background(), alice, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-Titulo", string(out))
	assert.Equal(t, "documento_"+doc.ID+".pdf", name)
}

// ──────────────────────────────────────────────────────────────────────────────
// Nombres de archivo
// ──────────────────────────────────────────────────────────────────────────────

func TestSanitizeFilename(t *testing.T) {
	got, err := document.SanitizeFilename("  informe final.pdf ")
	require.NoError(t, err)
	assert.Equal(t, "informe final.pdf", got)

	// "e" + acento combinante → "é" precompuesta
	got, err = document.SanitizeFilename("café.txt")
	require.NoError(t, err)
	assert.Equal(t, "café.txt", got)

	for _, bad := range []string{"", ".", "..", "a/b", `a\b`, "tab\there", string([]byte{0xff, 0xfe})} {
		_, err := document.SanitizeFilename(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidFilename, "name=%q", bad)
	}
}

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "id.pdf", document.StorageKey("id", "Report.PDF"))
	assert.Equal(t, "id", document.StorageKey("id", "sin-extension"))
	assert.Equal(t, "id", document.StorageKey("id", "raro.p$f"))
	assert.Equal(t, "id.gz", document.StorageKey("id", "backup.tar.gz"))
}

func TestIsPDF(t *testing.T) {
	assert.True(t, document.IsPDF("a.pdf"))
	assert.True(t, document.IsPDF("a.Pdf"))
	assert.False(t, document.IsPDF("a.pdf.txt"))
	assert.False(t, document.IsPDF("pdf"))
}
