package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/buyerdesk/backend/api/transport"
	"github.com/buyerdesk/backend/domain"
	"github.com/buyerdesk/backend/pkg/httpcontext"
	buyerUC "github.com/buyerdesk/backend/usecase/buyer"
)

type BuyerHandler struct {
	baseHandler
	uc *buyerUC.UseCase
}

func NewBuyerHandler(uc *buyerUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *BuyerHandler {
	return &BuyerHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List buyers
// @Tags buyers
// @Router /api/v1/buyers [get]
func (h *BuyerHandler) List(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}

	query := buyerUC.ListQuery{
		Page:         parseInt(string(ctx.QueryArgs().Peek("page")), 1),
		City:         string(ctx.QueryArgs().Peek("city")),
		PropertyType: string(ctx.QueryArgs().Peek("propertyType")),
		Status:       string(ctx.QueryArgs().Peek("status")),
		Timeline:     string(ctx.QueryArgs().Peek("timeline")),
		Search:       string(ctx.QueryArgs().Peek("q")),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.List(stdCtx, query)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Get buyer
// @Tags buyers
// @Router /api/v1/buyers/{id} [get]
func (h *BuyerHandler) Get(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	id, ok := h.buyerID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	buyer, err := h.uc.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, buyer)
}

// @Summary Create buyer
// @Tags buyers
// @Router /api/v1/buyers [post]
func (h *BuyerHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.BuyerCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	in := domain.BuyerInput{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		City:         req.City,
		PropertyType: req.PropertyType,
		BHK:          req.BHK,
		Purpose:      req.Purpose,
		BudgetMin:    req.BudgetMin.String(),
		BudgetMax:    req.BudgetMax.String(),
		Timeline:     req.Timeline,
		Source:       req.Source,
		Notes:        req.Notes,
		Status:       req.Status,
	}
	if tags, ok := transport.ParseTags(req.Tags); ok {
		in.Tags = tags
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, userID, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update buyer
// @Tags buyers
// @Router /api/v1/buyers/{id} [put]
func (h *BuyerHandler) Update(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id, ok := h.buyerID(ctx)
	if !ok {
		return
	}

	var req transport.BuyerUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	patch, err := patchFromRequest(req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, userID, id, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Update buyer status
// @Tags buyers
// @Router /api/v1/buyers/{id}/status [put]
func (h *BuyerHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id, ok := h.buyerID(ctx)
	if !ok {
		return
	}

	var req transport.StatusUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateStatus(stdCtx, userID, id, req.Status)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete buyer
// @Tags buyers
// @Router /api/v1/buyers/{id} [delete]
func (h *BuyerHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id, ok := h.buyerID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"deleted": true})
}

// @Summary Buyer change history
// @Tags buyers
// @Router /api/v1/buyers/{id}/history [get]
func (h *BuyerHandler) History(ctx *fasthttp.RequestCtx) {
	if h.userID(ctx) == "" {
		return
	}
	id, ok := h.buyerID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.uc.History(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, entries)
}

func (h *BuyerHandler) buyerID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing buyer id", nil))
		return "", false
	}
	return id, true
}

func patchFromRequest(req transport.BuyerUpdateRequest) (domain.BuyerPatch, error) {
	patch := domain.BuyerPatch{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		City:         req.City,
		PropertyType: req.PropertyType,
		BHK:          req.BHK,
		Purpose:      req.Purpose,
		Timeline:     req.Timeline,
		Source:       req.Source,
		Notes:        req.Notes,
		Status:       req.Status,
	}
	if req.BudgetMin != nil {
		v := req.BudgetMin.String()
		patch.BudgetMin = &v
	}
	if req.BudgetMax != nil {
		v := req.BudgetMax.String()
		patch.BudgetMax = &v
	}
	if tags, ok := transport.ParseTags(req.Tags); ok {
		patch.Tags = tags
	}
	if req.UpdatedAt != nil && *req.UpdatedAt != "" {
		parsed, err := time.Parse(time.RFC3339Nano, *req.UpdatedAt)
		if err != nil {
			return domain.BuyerPatch{}, domain.NewValidationError("updatedAt", "must be an RFC3339 timestamp")
		}
		patch.UpdatedAt = &parsed
	}
	return patch, nil
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
