package service

import (
	"strings"
	"testing"

	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newExportFixture(t *testing.T) (*IntrastatService, *IntrastatExportService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	intrastatRepo := repository.NewIntrastatRepository(db)
	svc := NewIntrastatService(db, intrastatRepo, repository.NewWorkflowLogRepository(db), zap.NewNop())
	return svc, NewIntrastatExportService(intrastatRepo, zap.NewNop())
}

func TestIntrastatExportService(t *testing.T) {
	svc, export := newExportFixture(t)
	ctx := userCtx("Szabó Márta")

	decl, err := svc.CreateDeclaration(ctx, &domain.CreateIntrastatDeclarationRequest{
		Ev:        2025,
		Honap:     3,
		Direction: domain.IntrastatDirectionDispatch,
	})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, decl.ID, germanItem(1000))
	require.NoError(t, err)

	t.Run("open declaration is not exportable", func(t *testing.T) {
		_, err := export.ExportNAV(ctx, decl.ID)
		assert.ErrorIs(t, err, ErrExportNotReady)
		_, err = export.ExportXML(ctx, decl.ID)
		assert.ErrorIs(t, err, ErrExportNotReady)
	})

	_, err = svc.MarkReady(ctx, decl.ID)
	require.NoError(t, err)

	t.Run("nav export renders header and item lines", func(t *testing.T) {
		file, err := export.ExportNAV(ctx, decl.ID)
		require.NoError(t, err)
		assert.Equal(t, "intrastat_202503_kiszallitas.txt", file.FileName)
		assert.Equal(t, "text/plain; charset=utf-8", file.ContentType)

		lines := strings.Split(strings.TrimRight(string(file.Data), "\r\n"), "\r\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "H202503K00001", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "TDE"), "item line starts with record type and country: %q", lines[1])
		assert.Contains(t, lines[1], "73181568")
	})

	t.Run("xml export renders the document", func(t *testing.T) {
		file, err := export.ExportXML(ctx, decl.ID)
		require.NoError(t, err)
		assert.Equal(t, "intrastat_202503_kiszallitas.xml", file.FileName)
		assert.Equal(t, "application/xml", file.ContentType)

		body := string(file.Data)
		assert.Contains(t, body, "<IntrastatDeclaration>")
		assert.Contains(t, body, "<Ev>2025</Ev>")
		assert.Contains(t, body, "<PartnerOrszagKod>DE</PartnerOrszagKod>")
	})

	t.Run("sent declaration stays exportable", func(t *testing.T) {
		_, err := svc.MarkSent(ctx, decl.ID)
		require.NoError(t, err)

		_, err = export.ExportNAV(ctx, decl.ID)
		assert.NoError(t, err)
	})
}
