package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricksxxx/valorant-store-bot/internal/domain/accounts"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/orders"
)

type stubCatalog struct {
	list []accounts.Account
	byID map[int64]*accounts.Account
	err  error
}

func (s *stubCatalog) ListAvailable(context.Context, int) ([]accounts.Account, error) {
	return s.list, s.err
}

func (s *stubCatalog) GetAvailable(_ context.Context, id int64) (*accounts.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	a, ok := s.byID[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	return a, nil
}

type stubOrders struct {
	accountErr error
	boostErr   error
	lastBoost  orders.BoostDetails
}

func (s *stubOrders) PlaceAccountOrder(_ context.Context, userID, accountID int64) (*orders.Order, error) {
	if s.accountErr != nil {
		return nil, s.accountErr
	}
	return &orders.Order{ID: 1, Ref: "ref-account", UserID: userID, Type: orders.TypeAccount}, nil
}

func (s *stubOrders) PlaceBoostOrder(_ context.Context, userID int64, d orders.BoostDetails) (*orders.Order, error) {
	if s.boostErr != nil {
		return nil, s.boostErr
	}
	s.lastBoost = d
	return &orders.Order{ID: 2, Ref: "ref-boost", UserID: userID, Type: orders.TypeBoost}, nil
}

func newTestRouter(catalog Catalog, ordersSvc OrderService) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(log, catalog, ordersSvc, 95)
	r := chi.NewRouter()
	r.Route("/api", h.Register)
	return r
}

func TestListAccounts(t *testing.T) {
	catalog := &stubCatalog{list: []accounts.Account{
		{ID: 1, Title: "Immortal EU", Rank: "Immortal 2", PriceRUB: 9500, Region: accounts.RegionEU,
			Login: "secret", Password: "secret"},
	}}
	srv := httptest.NewServer(newTestRouter(catalog, &stubOrders{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/accounts")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Immortal EU", got[0]["title"])
	assert.Equal(t, float64(9500), got[0]["priceRub"])
	assert.Equal(t, float64(100), got[0]["priceUsd"])

	// данные для входа не утекают в публичный ответ
	assert.NotContains(t, string(body), "secret")
	assert.NotContains(t, string(body), "login")
	assert.NotContains(t, string(body), "password")
}

func TestGetAccount(t *testing.T) {
	catalog := &stubCatalog{byID: map[int64]*accounts.Account{
		7: {ID: 7, Title: "Smurf", PriceRUB: 1900, Region: accounts.RegionNA},
	}}
	srv := httptest.NewServer(newTestRouter(catalog, &stubOrders{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/accounts/7")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// проданный или несуществующий аккаунт неотличимы
	resp, err = http.Get(srv.URL + "/api/accounts/8")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/accounts/abc")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOrderAccount(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(&stubCatalog{}, &stubOrders{}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/orders/account", "application/json",
		bytes.NewBufferString(`{"userId":100,"accountId":7}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got orderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.True(t, got.Success)
	assert.Equal(t, "ref-account", got.OrderID)
}

func TestOrderAccount_Unavailable(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(&stubCatalog{}, &stubOrders{accountErr: accounts.ErrSold}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/orders/account", "application/json",
		bytes.NewBufferString(`{"userId":100,"accountId":7}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOrderAccount_BadRequest(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(&stubCatalog{}, &stubOrders{}))
	defer srv.Close()

	for _, body := range []string{`not json`, `{"userId":100}`, `{"accountId":7}`} {
		resp, err := http.Post(srv.URL+"/api/orders/account", "application/json",
			bytes.NewBufferString(body))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %s", body)
	}
}

func TestOrderBoost(t *testing.T) {
	stub := &stubOrders{}
	srv := httptest.NewServer(newTestRouter(&stubCatalog{}, stub))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/orders/boost", "application/json",
		bytes.NewBufferString(`{"userId":100,"fromRank":"Gold 2","toRank":"Platinum 1","region":"EU","wishes":"evenings only"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "Gold 2", stub.lastBoost.FromRank)
	assert.Equal(t, "Platinum 1", stub.lastBoost.ToRank)
	assert.Equal(t, "evenings only", stub.lastBoost.Wishes)

	resp, err = http.Post(srv.URL+"/api/orders/boost", "application/json",
		bytes.NewBufferString(`{"userId":100,"fromRank":"Gold 2"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
