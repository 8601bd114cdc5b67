package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"stockfolio/src/schemas"
	"stockfolio/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := utils.WithLogger(r.Context(), h.Logger)

	userID, err := userIDFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	entries, err := h.Wishlist.ListWishlist(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, entries, http.StatusOK)
}

func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := utils.WithLogger(r.Context(), h.Logger)

	userID, err := userIDFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req schemas.CreateWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.BadRequest("invalid wishlist payload"))
		return
	}

	entry, err := h.Wishlist.AddToWishlist(ctx, userID, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, entry, http.StatusCreated)
}

func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := utils.WithLogger(r.Context(), h.Logger)

	userID, err := userIDFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	entryID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, utils.BadRequest("invalid wishlist entry id"))
		return
	}

	if err := h.Wishlist.RemoveFromWishlist(ctx, userID, entryID); err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, map[string]string{"message": "wishlist entry removed"}, http.StatusOK)
}
