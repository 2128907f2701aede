package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pantry/internal/core"
	"pantry/internal/services"
	"pantry/internal/store/memory"
)

func newTestServer(t *testing.T) (*Server, core.Document) {
	t.Helper()
	doc := core.DefaultDocument(6)
	st := memory.New(doc)
	srv := NewServer(":0", services.NewInventoryService(st))
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv, doc
}

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) services.View {
	t.Helper()
	var view services.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v\nbody: %s", err, rec.Body.String())
	}
	return view
}

func TestGetInventory(t *testing.T) {
	srv, doc := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/inventory", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}

	view := decodeView(t, rec)
	if len(view.Document.Inventory) != len(doc.Inventory) {
		t.Fatalf("items = %d, want %d", len(view.Document.Inventory), len(doc.Inventory))
	}
	if view.Summary.Limit != doc.Points*3/2 {
		t.Fatalf("limit = %d, want %d", view.Summary.Limit, doc.Points*3/2)
	}
}

func TestAddItem(t *testing.T) {
	srv, doc := newTestServer(t)
	cat := doc.Categories[0]

	rec := doRequest(t, srv, http.MethodPost, "/items",
		`{"name":"Dish soap","real_name":"CleanBrand","category":"`+cat+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201\nbody: %s", rec.Code, rec.Body.String())
	}
	view := decodeView(t, rec)
	if len(view.Document.Inventory) != len(doc.Inventory)+1 {
		t.Fatal("item was not added")
	}
}

func TestAddItemUnknownCategory(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/items", `{"name":"X","category":"No Such Room"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAddItemEmptyName(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/items", `{"name":"  "}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestToggleAndQuantityFlow(t *testing.T) {
	srv, doc := newTestServer(t)
	id := doc.Inventory[0].ID

	rec := doRequest(t, srv, http.MethodPost, "/items/"+id+"/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rec.Code)
	}
	view := decodeView(t, rec)
	item, _ := view.Document.Find(id)
	if !item.ToBuy || item.Quantity != 1 {
		t.Fatalf("after toggle: to_buy=%v quantity=%d", item.ToBuy, item.Quantity)
	}

	rec = doRequest(t, srv, http.MethodPost, "/items/"+id+"/quantity", `{"quantity":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("quantity status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	view = decodeView(t, rec)
	item, _ = view.Document.Find(id)
	if item.Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", item.Quantity)
	}
}

func TestSetQuantityMalformed(t *testing.T) {
	srv, doc := newTestServer(t)
	id := doc.Inventory[0].ID

	rec := doRequest(t, srv, http.MethodPost, "/items/"+id+"/quantity", `{"quantity":"lots"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	// The rejected request must not have mutated anything.
	view := decodeView(t, doRequest(t, srv, http.MethodGet, "/inventory", ""))
	item, _ := view.Document.Find(id)
	if item.ToBuy {
		t.Fatal("malformed quantity must leave the item untouched")
	}
}

func TestSetPriceUnknownItem(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/items/nope/price", `{"total_cents":500}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCompletePurchase(t *testing.T) {
	srv, doc := newTestServer(t)
	id := doc.Inventory[0].ID

	doRequest(t, srv, http.MethodPost, "/items/"+id+"/toggle", "")
	doRequest(t, srv, http.MethodPost, "/items/"+id+"/quantity", `{"quantity":2}`)
	doRequest(t, srv, http.MethodPost, "/items/"+id+"/price", `{"total_cents":800}`)

	rec := doRequest(t, srv, http.MethodPost, "/purchase/complete", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	view := decodeView(t, rec)
	item, _ := view.Document.Find(id)
	if item.ToBuy || item.CurrentPrice != nil || item.Quantity != 1 {
		t.Fatalf("purchase did not clear session fields: %+v", item)
	}
	if item.LastPrice != 400 {
		t.Fatalf("last price = %d, want 400 (800 total over 2)", item.LastPrice)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/categories", `{"name":"Garage"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/categories", `{"name":"Garage"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate status = %d, want 422", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/categories/Garage", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
}

func TestRemoveCategoryInUse(t *testing.T) {
	srv, doc := newTestServer(t)

	rec := doRequest(t, srv, http.MethodDelete, "/categories/"+doc.Inventory[0].Cat, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestUpdatePoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/points", `{"points":200}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	view := decodeView(t, rec)
	if view.Document.Points != 200 || view.Summary.Limit != 300 {
		t.Fatalf("points=%d limit=%d, want 200/300", view.Document.Points, view.Summary.Limit)
	}

	rec = doRequest(t, srv, http.MethodPost, "/points", `{"points":-1}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("negative points status = %d, want 422", rec.Code)
	}
}

func TestEditAndRemoveItem(t *testing.T) {
	srv, doc := newTestServer(t)
	id := doc.Inventory[0].ID
	cat := doc.Categories[1]

	rec := doRequest(t, srv, http.MethodPatch, "/items/"+id,
		`{"name":"Renamed","real_name":"","category":"`+cat+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	view := decodeView(t, rec)
	item, _ := view.Document.Find(id)
	if item.Name != "Renamed" || item.Cat != cat {
		t.Fatalf("edit not applied: %+v", item)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/items/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d", rec.Code)
	}
	view = decodeView(t, rec)
	if _, err := view.Document.Find(id); err == nil {
		t.Fatal("item should be gone")
	}
}

func TestImportLegacy(t *testing.T) {
	srv, _ := newTestServer(t)

	csv := "name,cat,stock,price,date\nRice,Kitchen,TRUE,398,2026-05-02\n"
	req := httptest.NewRequest(http.MethodPost, "/import/legacy", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	view := decodeView(t, rec)
	if len(view.Document.Inventory) != 1 || view.Document.Inventory[0].Name != "Rice" {
		t.Fatalf("import result: %+v", view.Document.Inventory)
	}
}

func TestImportLegacyEmptyBody(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/import/legacy", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	if rec := doRequest(t, srv, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	if rec := doRequest(t, srv, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Fatalf("readyz = %d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/inventory", "")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing nosniff header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("missing frame options header")
	}
}

func TestMutationRateLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	var last int
	for i := 0; i < mutationRateLimit+1; i++ {
		rec := doRequest(t, srv, http.MethodPost, "/points", `{"points":10}`)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("status after burst = %d, want 429", last)
	}
}
