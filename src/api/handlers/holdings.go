package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"stockfolio/src/schemas"
	"stockfolio/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	ctx := utils.WithLogger(r.Context(), h.Logger)

	userID, err := userIDFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	holdings, err := h.Ledger.ListHoldings(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, holdings, http.StatusOK)
}

func (h *Handler) AddHolding(w http.ResponseWriter, r *http.Request) {
	ctx := utils.WithLogger(r.Context(), h.Logger)

	userID, err := userIDFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req schemas.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.BadRequest("invalid purchase payload"))
		return
	}

	result, err := h.Ledger.RecordPurchase(ctx, userID, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, result, http.StatusCreated)
}

func (h *Handler) SellHolding(w http.ResponseWriter, r *http.Request) {
	ctx := utils.WithLogger(r.Context(), h.Logger)

	userID, err := userIDFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	holdingID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, utils.BadRequest("invalid holding id"))
		return
	}

	var req schemas.SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.BadRequest("invalid sale payload"))
		return
	}
	req.HoldingID = holdingID

	result, err := h.Ledger.RecordSale(ctx, userID, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, result, http.StatusOK)
}

func (h *Handler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	ctx := utils.WithLogger(r.Context(), h.Logger)

	userID, err := userIDFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	holdingID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, utils.BadRequest("invalid holding id"))
		return
	}

	result, err := h.Ledger.RemoveHolding(ctx, userID, holdingID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, result, http.StatusOK)
}

func (h *Handler) GetDeletedHoldings(w http.ResponseWriter, r *http.Request) {
	ctx := utils.WithLogger(r.Context(), h.Logger)

	userID, err := userIDFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	archived, err := h.Ledger.ListDeletedHoldings(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, archived, http.StatusOK)
}
