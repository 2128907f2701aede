package http

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return NewRequestBodyParser(req)
}

func TestParseJSONBody(t *testing.T) {
	p := newParser(t, "application/json", `{"name":"Rice","quantity":3,"total_cents":1250}`)
	if err := p.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got := p.Get("name"); got != "Rice" {
		t.Fatalf("Get(name) = %q", got)
	}
	if q, err := p.GetInt("quantity"); err != nil || q != 3 {
		t.Fatalf("GetInt(quantity) = %d, %v", q, err)
	}
	if c, err := p.GetInt64("total_cents"); err != nil || c != 1250 {
		t.Fatalf("GetInt64(total_cents) = %d, %v", c, err)
	}
}

func TestParseFormBody(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded", "name=Dish+soap&quantity=2")
	if err := p.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := p.Get("name"); got != "Dish soap" {
		t.Fatalf("Get(name) = %q", got)
	}
	if q, err := p.GetInt("quantity"); err != nil || q != 2 {
		t.Fatalf("GetInt(quantity) = %d, %v", q, err)
	}
}

func TestParseMalformedJSON(t *testing.T) {
	p := newParser(t, "application/json", `{"name":`)
	if err := p.Parse(); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestParseEmptyBody(t *testing.T) {
	p := newParser(t, "application/json", "")
	if err := p.Parse(); err != nil {
		t.Fatalf("empty body should parse: %v", err)
	}
	if p.Has("name") {
		t.Fatal("empty body has no keys")
	}
	if got := p.Get("name"); got != "" {
		t.Fatalf("Get on empty body = %q", got)
	}
}

func TestGetIntRejectsNonNumbers(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"string value", `{"quantity":"many"}`},
		{"fractional", `{"quantity":2.5}`},
		{"missing", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, "application/json", tt.body)
			if err := p.Parse(); err != nil {
				t.Fatalf("parse: %v", err)
			}
			if _, err := p.GetInt("quantity"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGetQuotedNumber(t *testing.T) {
	p := newParser(t, "application/json", `{"quantity":"4"}`)
	if err := p.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q, err := p.GetInt("quantity"); err != nil || q != 4 {
		t.Fatalf("GetInt = %d, %v", q, err)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{"with\x00null", "withnull"},
		{"keeps\ttabs", "keeps\ttabs"},
		{"bell\x07char", "bellchar"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
