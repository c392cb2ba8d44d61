package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"schoolsite/internal/core"
)

func parse(t *testing.T, body string) (*RequestBodyParser, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return ParseRequestBody(httptest.NewRecorder(), req)
}

func TestParseRequestBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantJSON bool
		key      string
		want     string
	}{
		{"json string", `{"className":"  Class 1 "}`, true, "className", "Class 1"},
		{"json number keeps digits", `{"monthlyFee":12345678901234}`, true, "monthlyFee", "12345678901234"},
		{"json bool", `{"isActive":false}`, true, "isActive", "false"},
		{"json null", `{"isActive":null}`, true, "isActive", ""},
		{"form", "className=Class+2&monthlyFee=Rs.+8%2C000", false, "monthlyFee", "Rs. 8,000"},
		{"control characters dropped", "className=A%00B%07C", false, "className", "ABC"},
		{"empty body", "", false, "className", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := parse(t, tt.body)
			if err != nil {
				t.Fatalf("ParseRequestBody: %v", err)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestParseRequestBody_Invalid(t *testing.T) {
	for _, body := range []string{`{"a":`, `[]`, "a=%zz"} {
		if _, err := parse(t, body); !errors.Is(err, core.ErrInvalidRecord) {
			t.Errorf("%q: err = %v, want ErrInvalidRecord", body, err)
		}
	}

	big := `{"description":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	if _, err := parse(t, big); !errors.Is(err, core.ErrInvalidRecord) {
		t.Errorf("oversized body: err = %v", err)
	}
}

func TestGetAmount(t *testing.T) {
	p, err := parse(t, `{"a":1e3,"b":"Rs. 8,000","c":12.9,"d":"1e3"}`)
	if err != nil {
		t.Fatalf("ParseRequestBody: %v", err)
	}
	tests := []struct {
		key  string
		want core.Amount
	}{
		{"a", 1000},
		{"b", 8000},
		{"c", 12},
		{"d", 13},
		{"missing", 0},
	}
	for _, tt := range tests {
		if got := p.GetAmount(tt.key); got != tt.want {
			t.Errorf("GetAmount(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}

	p, _ = parse(t, "monthlyFee=1e3")
	if got := p.GetAmount("monthlyFee"); got != 13 {
		t.Errorf("form value = %d, want 13", got)
	}
}

func TestGetList(t *testing.T) {
	p, _ := parse(t, `{"tags":["Sports"," ", "Events"]}`)
	if got := p.GetList("tags"); strings.Join(got, "|") != "Sports|Events" {
		t.Errorf("json array: %q", got)
	}
	p, _ = parse(t, `{"tags":"a, b,,c"}`)
	if got := p.GetList("tags"); strings.Join(got, "|") != "a|b|c" {
		t.Errorf("json string: %q", got)
	}
	p, _ = parse(t, "tags=a,b&tags=c")
	if got := p.GetList("tags"); strings.Join(got, "|") != "a|b|c" {
		t.Errorf("form: %q", got)
	}
	if got := p.GetList("missing"); len(got) != 0 {
		t.Errorf("missing: %q", got)
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "ON", "yes"} {
		if v, err := parseBool(s); err != nil || !v {
			t.Errorf("parseBool(%q) = %v, %v", s, v, err)
		}
	}
	for _, s := range []string{"0", "False", "off", "no"} {
		if v, err := parseBool(s); err != nil || v {
			t.Errorf("parseBool(%q) = %v, %v", s, v, err)
		}
	}
	if _, err := parseBool("maybe"); err == nil {
		t.Error("parseBool(maybe) should fail")
	}
}

func TestQueryInt(t *testing.T) {
	q := url.Values{"page": {" 3 "}, "size": {"abc"}}
	if got := queryInt(q, "page", 1); got != 3 {
		t.Errorf("page = %d", got)
	}
	if got := queryInt(q, "size", 9); got != 9 {
		t.Errorf("size = %d", got)
	}
	if got := queryInt(q, "missing", 1); got != 1 {
		t.Errorf("missing = %d", got)
	}
}
