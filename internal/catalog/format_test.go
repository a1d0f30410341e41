package catalog

import (
	"strings"
	"testing"
)

func TestFormatProduct_RoundTripsKnownFields(t *testing.T) {
	p := &Product{
		ID:          1,
		Name:        "Leather Wallet",
		Price:       "350000",
		StockStatus: "instock",
		Permalink:   "https://shop.example.com/wallet",
	}

	for _, lang := range []string{"fa", "en"} {
		msg := FormatProduct(p, lang)
		if !strings.Contains(msg, "Leather Wallet") {
			t.Errorf("[%s] name missing: %q", lang, msg)
		}
		if !strings.Contains(msg, "350000") {
			t.Errorf("[%s] price missing: %q", lang, msg)
		}
		if !strings.Contains(msg, StockStatusText("instock", lang)) {
			t.Errorf("[%s] stock status missing: %q", lang, msg)
		}
		if !strings.Contains(msg, p.Permalink) {
			t.Errorf("[%s] permalink missing: %q", lang, msg)
		}
	}
}

func TestFormatProduct_StripsHTMLAndTruncates(t *testing.T) {
	p := &Product{
		Name:             "Shirt",
		ShortDescription: "<p>" + strings.Repeat("a", 250) + "</p>",
	}
	msg := FormatProduct(p, "en")
	if strings.Contains(msg, "<p>") {
		t.Fatalf("html not stripped: %q", msg)
	}
	if !strings.Contains(msg, strings.Repeat("a", 200)+"...") {
		t.Fatalf("description not truncated at 200: %q", msg)
	}
	if strings.Contains(msg, strings.Repeat("a", 201)) {
		t.Fatalf("description too long: %q", msg)
	}
}

func TestFormatProduct_MalformedDegradesToErrorString(t *testing.T) {
	if msg := FormatProduct(nil, "en"); msg != "Error displaying product information" {
		t.Fatalf("unexpected: %q", msg)
	}
	if msg := FormatProduct(&Product{}, "fa"); msg != "خطا در نمایش اطلاعات محصول" {
		t.Fatalf("unexpected: %q", msg)
	}
}

func TestFormatOrder_RoundTripsKnownFields(t *testing.T) {
	o := &Order{
		Number:      "1042",
		Status:      "processing",
		Total:       "99.50",
		Currency:    "USD",
		DateCreated: "2026-08-30T10:00:00",
	}
	for _, lang := range []string{"fa", "en"} {
		msg := FormatOrder(o, lang)
		if !strings.Contains(msg, "#1042") {
			t.Errorf("[%s] order number missing: %q", lang, msg)
		}
		if !strings.Contains(msg, "99.50 USD") {
			t.Errorf("[%s] total missing: %q", lang, msg)
		}
		if !strings.Contains(msg, OrderStatusText("processing", lang)) {
			t.Errorf("[%s] status text missing: %q", lang, msg)
		}
		if !strings.Contains(msg, "2026-08-30") || strings.Contains(msg, "T10:00") {
			t.Errorf("[%s] date not truncated to day: %q", lang, msg)
		}
	}
}

func TestFormatOrder_LimitsLineItems(t *testing.T) {
	o := &Order{Number: "7", Status: "completed"}
	for i := 0; i < 8; i++ {
		o.LineItems = append(o.LineItems, LineItem{Name: "Item", Quantity: 1})
	}
	msg := FormatOrder(o, "en")
	if got := strings.Count(msg, "• "); got != 5 {
		t.Fatalf("expected 5 line items, got %d: %q", got, msg)
	}
	if !strings.Contains(msg, "and 3 more items") {
		t.Fatalf("truncation notice missing: %q", msg)
	}
}

func TestOrderStatusText_UnknownPassesThrough(t *testing.T) {
	if s := OrderStatusText("weird-status", "en"); s != "weird-status" {
		t.Fatalf("unexpected: %q", s)
	}
}
