package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tailor-gallery-backend/internal/models"
)

const amakaJSON = `{
	"name": "Amaka",
	"measurements": "34-28-36",
	"outfitName": "Gown",
	"fabric": "Lace",
	"date": "2024-01-01",
	"invoiceAmount": "5000",
	"invoicePaid": false
}`

func decodeList(t *testing.T, body []byte) []models.Customer {
	t.Helper()
	var resp models.CustomerListResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Customers
}

func TestCustomersHandler_CreateJSON(t *testing.T) {
	e := newEnv(t)
	token := e.logIn(t)

	w := e.do(withBearer(jsonRequest(http.MethodPost, "/api/v1/customers", amakaJSON), token))
	require.Equal(t, http.StatusCreated, w.Code)

	list := decodeList(t, w.Body.Bytes())
	require.Len(t, list, 1)
	assert.Equal(t, "doc-1", list[0].ID)
	assert.Equal(t, []string{}, list[0].Images)
	assert.Equal(t, &models.Invoice{Amount: "5000", Paid: false}, list[0].Invoice)
}

func TestCustomersHandler_CreateMultipartUploadsInOrder(t *testing.T) {
	e := newEnv(t)

	req := withBearer(multipartRequest(t, http.MethodPost, "/api/v1/customers",
		map[string]string{"name": "Ada", "invoicePaid": "true"},
		upload{name: "front.png", content: pngHeader},
		upload{name: "back.txt", content: []byte("plain text")},
	), e.logIn(t))
	w := e.do(req)
	require.Equal(t, http.StatusCreated, w.Code)

	list := decodeList(t, w.Body.Bytes())
	require.Len(t, list, 1)
	assert.Equal(t, []string{
		"https://cdn.example/clients/1704067200000-front.png",
		"https://cdn.example/clients/1704067200000-back.txt",
	}, list[0].Images)
	assert.True(t, list[0].Invoice.Paid)
	assert.Equal(t, "image/png", e.objects.contentTypes["clients/1704067200000-front.png"])
}

func TestCustomersHandler_UpdateOverwritesFields(t *testing.T) {
	e := newEnv(t)
	token := e.logIn(t)
	e.do(withBearer(jsonRequest(http.MethodPost, "/api/v1/customers", amakaJSON), token))

	w := e.do(withBearer(jsonRequest(http.MethodPut, "/api/v1/customers/doc-1",
		`{"name":"Amaka","fabric":"Ankara","images":["https://cdn.example/a.jpg"],"invoiceAmount":"7000","invoicePaid":true}`), token))
	require.Equal(t, http.StatusOK, w.Code)

	list := decodeList(t, w.Body.Bytes())
	require.Len(t, list, 1)
	assert.Equal(t, "Ankara", list[0].Fabric)
	assert.Equal(t, "", list[0].Measurements)
	assert.Equal(t, []string{"https://cdn.example/a.jpg"}, list[0].Images)
	assert.Equal(t, &models.Invoice{Amount: "7000", Paid: true}, list[0].Invoice)
}

func TestCustomersHandler_UpdateUnknown(t *testing.T) {
	e := newEnv(t)
	token := e.logIn(t)
	w := e.do(withBearer(jsonRequest(http.MethodPut, "/api/v1/customers/missing", `{"name":"Ada"}`), token))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCustomersHandler_NameRequired(t *testing.T) {
	e := newEnv(t)
	token := e.logIn(t)
	w := e.do(withBearer(jsonRequest(http.MethodPost, "/api/v1/customers", `{"name":"  "}`), token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, e.store.docs)
}

func TestCustomersHandler_StoreFailure(t *testing.T) {
	e := newEnv(t)
	e.store.err = errors.New("connection reset")

	w := e.do(jsonRequest(http.MethodGet, "/api/v1/customers", ""))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "connection reset")
}

func TestCustomersHandler_ListSearch(t *testing.T) {
	e := newEnv(t)
	token := e.logIn(t)
	for _, name := range []string{"Ada Obi", "Amaka", "Kadara"} {
		e.do(withBearer(jsonRequest(http.MethodPost, "/api/v1/customers", `{"name":"`+name+`"}`), token))
	}

	lower := decodeList(t, e.do(jsonRequest(http.MethodGet, "/api/v1/customers?search=ada", "")).Body.Bytes())
	upper := decodeList(t, e.do(jsonRequest(http.MethodGet, "/api/v1/customers?search=ADA", "")).Body.Bytes())
	assert.Equal(t, lower, upper)
	assert.Len(t, lower, 2)

	all := decodeList(t, e.do(jsonRequest(http.MethodGet, "/api/v1/customers", "")).Body.Bytes())
	assert.Len(t, all, 3)
}

func TestCustomersHandler_Delete(t *testing.T) {
	e := newEnv(t)
	token := e.logIn(t)
	e.do(withBearer(jsonRequest(http.MethodPost, "/api/v1/customers", amakaJSON), token))

	w := e.do(withBearer(jsonRequest(http.MethodDelete, "/api/v1/customers/doc-1", ""), token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeList(t, w.Body.Bytes()))
}

func TestCustomersHandler_Export(t *testing.T) {
	e := newEnv(t)
	token := e.logIn(t)
	e.do(withBearer(jsonRequest(http.MethodPost, "/api/v1/customers", amakaJSON), token))

	w := e.do(jsonRequest(http.MethodGet, "/api/v1/customers/doc-1/export", ""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=Amaka.pdf`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))

	w = e.do(jsonRequest(http.MethodGet, "/api/v1/customers/missing/export", ""))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCustomersHandler_WritesNeedBearerToken(t *testing.T) {
	e := newEnv(t)
	token := e.logIn(t)
	e.do(withBearer(jsonRequest(http.MethodPost, "/api/v1/customers", amakaJSON), token))
	require.Len(t, e.store.docs, 1)

	forged, err := signToken("another-secret", "attacker", "eve@example.com", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"anonymous create", jsonRequest(http.MethodPost, "/api/v1/customers", `{"name":"Eve"}`)},
		{"anonymous update", jsonRequest(http.MethodPut, "/api/v1/customers/doc-1", `{"name":"Eve"}`)},
		{"anonymous delete", jsonRequest(http.MethodDelete, "/api/v1/customers/doc-1", "")},
		{"forged delete", withBearer(jsonRequest(http.MethodDelete, "/api/v1/customers/doc-1", ""), forged)},
		{"malformed token", withBearer(jsonRequest(http.MethodDelete, "/api/v1/customers/doc-1", ""), "not-a-jwt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(tt.req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	require.Len(t, e.store.docs, 1)
	assert.Equal(t, "Amaka", e.store.docs[0].Name)
}
