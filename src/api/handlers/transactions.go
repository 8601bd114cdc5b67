package handlers

import (
	"net/http"

	"stockfolio/src/utils"
)

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := utils.WithLogger(r.Context(), h.Logger)

	userID, err := userIDFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	records, err := h.Ledger.ListTransactions(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, records, http.StatusOK)
}
