package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/buyerdesk/backend/api/transport"
	"github.com/buyerdesk/backend/domain"
	"github.com/buyerdesk/backend/pkg/httpcontext"
	exporterUC "github.com/buyerdesk/backend/usecase/exporter"
	importerUC "github.com/buyerdesk/backend/usecase/importer"
)

const reportListLimit = 20

// TransferHandler serves the CSV import and export endpoints.
type TransferHandler struct {
	baseHandler
	importer *importerUC.UseCase
	exporter *exporterUC.UseCase
}

func NewTransferHandler(importer *importerUC.UseCase, exporter *exporterUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{
		baseHandler: newBaseHandler(adapter, logger),
		importer:    importer,
		exporter:    exporter,
	}
}

// @Summary Import buyers from CSV
// @Tags transfer
// @Router /api/v1/buyers/import [post]
func (h *TransferHandler) Import(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing file upload", nil))
		return
	}
	file, err := header.Open()
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "unreadable file upload", nil))
		return
	}
	defer file.Close()

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.importer.Import(stdCtx, userID, header.Filename, file)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Export buyers as CSV
// @Tags transfer
// @Router /api/v1/buyers/export [get]
func (h *TransferHandler) Export(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}

	query := exporterUC.Query{
		City:         string(ctx.QueryArgs().Peek("city")),
		PropertyType: string(ctx.QueryArgs().Peek("propertyType")),
		Status:       string(ctx.QueryArgs().Peek("status")),
		Timeline:     string(ctx.QueryArgs().Peek("timeline")),
		Search:       string(ctx.QueryArgs().Peek("q")),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var buf bytes.Buffer
	if err := h.exporter.Export(stdCtx, query, &buf); err != nil {
		h.respondError(ctx, err)
		return
	}

	filename := fmt.Sprintf("buyers-%s.csv", time.Now().UTC().Format("2006-01-02"))
	ctx.Response.Header.SetContentType("text/csv")
	ctx.Response.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBody(buf.Bytes())
}

// @Summary List import reports
// @Tags transfer
// @Router /api/v1/imports [get]
func (h *TransferHandler) Reports(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	reports, err := h.importer.Reports(stdCtx, userID, reportListLimit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, reports)
}
