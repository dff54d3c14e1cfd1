package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/valyala/fasthttp"

	exporterUC "github.com/buyerdesk/backend/usecase/exporter"
	importerUC "github.com/buyerdesk/backend/usecase/importer"
)

func TestExportForwardsFreeTextFilter(t *testing.T) {
	repo := newStubBuyerRepo(ownedBuyer())
	h := NewTransferHandler(
		importerUC.New(repo, nil, nil),
		exporterUC.New(repo, nil),
		nil, nil,
	)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/api/v1/buyers/export?q=asha&status=New")
	ctx.Request.Header.Set("X-User-ID", "u-1")

	h.Export(ctx)

	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.Response.StatusCode())
	}
	if repo.lastFilter.Search != "asha" {
		t.Fatalf("q parameter not forwarded as search term, got %q", repo.lastFilter.Search)
	}
	if repo.lastFilter.Status != "New" {
		t.Fatalf("status filter not forwarded, got %q", repo.lastFilter.Status)
	}
	if !strings.HasPrefix(string(ctx.Response.Body()), "fullName,") {
		t.Fatalf("expected CSV body, got %q", ctx.Response.Body())
	}
	if disposition := string(ctx.Response.Header.Peek("Content-Disposition")); !strings.Contains(disposition, "attachment") {
		t.Fatalf("expected attachment disposition, got %q", disposition)
	}
}
