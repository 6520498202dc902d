package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/shopradar/price-finder-api/internal/dto"
	"github.com/shopradar/price-finder-api/internal/shopping"
)

type fakeSearchService struct {
	rows   []dto.PriceRow
	err    error
	params dto.SearchParams
	called bool
}

func (f *fakeSearchService) Search(_ context.Context, params dto.SearchParams) ([]dto.PriceRow, error) {
	f.called = true
	f.params = params
	return f.rows, f.err
}

func doSearch(t *testing.T, svc PriceSearcher, query url.Values) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/prices/search?"+query.Encode(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewSearchHandler(svc, "Vancouver, British Columbia, Canada")
	if err := h.Search(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var payload APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func TestSearchHandlerValidation(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantField string
	}{
		{"missing q", url.Values{}, "q"},
		{"empty q", url.Values{"q": {"   "}}, "q"},
		{"non-integer top", url.Values{"q": {"milk"}, "top": {"five"}}, "top"},
		{"top too small", url.Values{"q": {"milk"}, "top": {"0"}}, "top"},
		{"top too large", url.Values{"q": {"milk"}, "top": {"21"}}, "top"},
		{"bad sort", url.Values{"q": {"milk"}, "sort": {"nearest"}}, "sort"},
		{"non-numeric lat", url.Values{"q": {"milk"}, "lat": {"north"}, "lng": {"-123"}}, "lat"},
		{"infinite lng", url.Values{"q": {"milk"}, "lat": {"49"}, "lng": {"+Inf"}}, "lng"},
		{"lat without lng", url.Values{"q": {"milk"}, "lat": {"49.25"}}, "lng"},
		{"lng without lat", url.Values{"q": {"milk"}, "lng": {"-123.1"}}, "lat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSearchService{}
			rec := doSearch(t, svc, tt.query)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if svc.called {
				t.Fatal("pipeline must not run on invalid input")
			}
			payload := decodeEnvelope(t, rec)
			if payload.Errors[tt.wantField] == "" {
				t.Fatalf("expected field error for %q, got %+v", tt.wantField, payload.Errors)
			}
		})
	}
}

func TestSearchHandlerDefaults(t *testing.T) {
	svc := &fakeSearchService{}
	rec := doSearch(t, svc, url.Values{"q": {"coca cola 355ml"}})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !svc.called {
		t.Fatal("pipeline not invoked")
	}
	p := svc.params
	if p.City != "Vancouver, British Columbia, Canada" {
		t.Fatalf("default city not applied: %q", p.City)
	}
	if p.Top != dto.TopDefault || p.Sort != dto.SortPrice {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if p.Lat != nil || p.Lng != nil {
		t.Fatalf("coordinates should be absent: %+v", p)
	}
}

func TestSearchHandlerPassesCoordinates(t *testing.T) {
	svc := &fakeSearchService{}
	rec := doSearch(t, svc, url.Values{
		"q": {"milk"}, "sort": {"closest"}, "lat": {"49.25"}, "lng": {"-123.10"}, "top": {"3"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	p := svc.params
	if p.Lat == nil || p.Lng == nil || *p.Lat != 49.25 || *p.Lng != -123.10 {
		t.Fatalf("coordinates not forwarded: %+v", p)
	}
	if p.Sort != dto.SortClosest || p.Top != 3 {
		t.Fatalf("params not forwarded: %+v", p)
	}
}

func TestSearchHandlerReturnsBareArray(t *testing.T) {
	svc := &fakeSearchService{rows: []dto.PriceRow{
		{Store: "Costco", Price: 2.25, Location: "605 Expo Blvd"},
		{Store: "Walmart", Price: 2.50, Location: "123 Main St"},
	}}
	rec := doSearch(t, svc, url.Values{"q": {"coca cola 355ml"}})

	var rows []dto.PriceRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("response is not a JSON array: %v", err)
	}
	if len(rows) != 2 || rows[0].Store != "Costco" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestSearchHandlerEmptyResultIsEmptyArray(t *testing.T) {
	svc := &fakeSearchService{rows: nil}
	rec := doSearch(t, svc, url.Values{"q": {"unobtainium"}})

	if body := rec.Body.String(); body != "[]\n" && body != "[]" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}

func TestSearchHandlerUpstreamError(t *testing.T) {
	svc := &fakeSearchService{err: &shopping.UpstreamError{Status: 503, Body: "provider down"}}
	rec := doSearch(t, svc, url.Values{"q": {"milk"}})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload.Message != "shopping provider error" || payload.Detail != "provider down" {
		t.Fatalf("upstream detail not surfaced: %+v", payload)
	}
}
