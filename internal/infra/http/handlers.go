package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ricksxxx/valorant-store-bot/internal/domain/accounts"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/orders"
)

const catalogLimit = 100

type Catalog interface {
	ListAvailable(ctx context.Context, limit int) ([]accounts.Account, error)
	GetAvailable(ctx context.Context, id int64) (*accounts.Account, error)
}

type OrderService interface {
	PlaceAccountOrder(ctx context.Context, userID, accountID int64) (*orders.Order, error)
	PlaceBoostOrder(ctx context.Context, userID int64, d orders.BoostDetails) (*orders.Order, error)
}

type Handler struct {
	log     *slog.Logger
	catalog Catalog
	orders  OrderService
	usdRate float64
}

func NewHandler(log *slog.Logger, catalog Catalog, ordersSvc OrderService, usdRate float64) *Handler {
	return &Handler{log: log, catalog: catalog, orders: ordersSvc, usdRate: usdRate}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/accounts", h.listAccounts)
	r.Get("/accounts/{id}", h.getAccount)
	r.Post("/orders/account", h.orderAccount)
	r.Post("/orders/boost", h.orderBoost)
}

// accountDTO — публичное представление аккаунта. Данные для входа
// наружу не отдаются никогда.
type accountDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Rank        string `json:"rank"`
	Description string `json:"description"`
	PriceRUB    int64  `json:"priceRub"`
	PriceUSD    int64  `json:"priceUsd"`
	Region      string `json:"region"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

func (h *Handler) toDTO(a accounts.Account) accountDTO {
	return accountDTO{
		ID: a.ID, Title: a.Title, Rank: a.Rank, Description: a.Description,
		PriceRUB: a.PriceRUB, PriceUSD: int64(math.Round(float64(a.PriceRUB) / h.usdRate)),
		Region: string(a.Region), ImageURL: a.ImageURL,
	}
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.ListAvailable(r.Context(), catalogLimit)
	if err != nil {
		h.serverError(w, "list accounts", err)
		return
	}
	out := make([]accountDTO, 0, len(list))
	for _, a := range list {
		out = append(out, h.toDTO(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	a, err := h.catalog.GetAvailable(r.Context(), id)
	if errors.Is(err, accounts.ErrNotFound) {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		h.serverError(w, "get account", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toDTO(*a))
}

type accountOrderRequest struct {
	UserID    int64 `json:"userId"`
	AccountID int64 `json:"accountId"`
}

type orderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}

func (h *Handler) orderAccount(w http.ResponseWriter, r *http.Request) {
	var req accountOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == 0 || req.AccountID == 0 {
		writeError(w, http.StatusBadRequest, "userId and accountId are required")
		return
	}

	o, err := h.orders.PlaceAccountOrder(r.Context(), req.UserID, req.AccountID)
	switch {
	case errors.Is(err, accounts.ErrSold), errors.Is(err, accounts.ErrNotFound):
		writeError(w, http.StatusBadRequest, "account not available")
		return
	case err != nil:
		h.serverError(w, "place account order", err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Success: true, OrderID: o.Ref})
}

type boostOrderRequest struct {
	UserID   int64  `json:"userId"`
	FromRank string `json:"fromRank"`
	ToRank   string `json:"toRank"`
	Region   string `json:"region"`
	Wishes   string `json:"wishes"`
}

func (h *Handler) orderBoost(w http.ResponseWriter, r *http.Request) {
	var req boostOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == 0 || req.FromRank == "" || req.ToRank == "" {
		writeError(w, http.StatusBadRequest, "userId, fromRank and toRank are required")
		return
	}

	o, err := h.orders.PlaceBoostOrder(r.Context(), req.UserID, orders.BoostDetails{
		FromRank: req.FromRank, ToRank: req.ToRank, Region: req.Region, Wishes: req.Wishes,
	})
	if err != nil {
		h.serverError(w, "place boost order", err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Success: true, OrderID: o.Ref})
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op+" failed", "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
