package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"stockfolio/src/services"
	"stockfolio/src/utils"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	Logger   *logrus.Logger
	Ledger   services.LedgerServiceI
	Wishlist services.WishlistServiceI
}

func NewHandler(logger *logrus.Logger, ledger services.LedgerServiceI, wishlist services.WishlistServiceI) *Handler {
	return &Handler{
		Logger:   logger,
		Ledger:   ledger,
		Wishlist: wishlist,
	}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

// HandleErrors maps the engine's error taxonomy onto HTTP statuses:
// validation and oversell to 400, missing holdings to 404, storage failures
// to 500.
func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError
	var insufficientErr *services.InsufficientQuantityError

	switch {
	case errors.As(err, &validationErr):
		utils.WriteError(w, utils.BadRequest(validationErr.Message))
	case errors.As(err, &insufficientErr):
		utils.WriteError(w, utils.BadRequest(insufficientErr.Error()))
	case errors.As(err, &notFoundErr):
		utils.WriteError(w, utils.NotFound(notFoundErr.Message))
	default:
		h.Logger.WithError(err).Error("request failed")
		utils.WriteError(w, utils.InternalServerError("internal server error"))
	}
}

// userIDFromRequest reads the authenticated user id resolved by the upstream
// auth layer. The engine trusts it and does not re-verify identity.
func userIDFromRequest(r *http.Request) (int, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return 0, utils.Unauthorized("missing X-User-ID header")
	}
	userID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, utils.Unauthorized("invalid X-User-ID header")
	}
	return userID, nil
}
