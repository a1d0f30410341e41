package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/amirrezasz77/telewpbot/internal/i18n"
)

const (
	maxDescriptionLen = 200
	maxLineItems      = 5
)

var htmlTagRe = regexp.MustCompile(`<.*?>`)

var orderStatusFa = map[string]string{
	"pending":    "در انتظار پرداخت",
	"processing": "در حال پردازش",
	"on-hold":    "در انتظار",
	"completed":  "تکمیل شده",
	"cancelled":  "لغو شده",
	"refunded":   "برگشت داده شده",
	"failed":     "ناموفق",
}

var orderStatusEn = map[string]string{
	"pending":    "Pending Payment",
	"processing": "Processing",
	"on-hold":    "On Hold",
	"completed":  "Completed",
	"cancelled":  "Cancelled",
	"refunded":   "Refunded",
	"failed":     "Failed",
}

// OrderStatusText maps a raw WooCommerce order status onto its localized
// display form; unknown statuses pass through unchanged.
func OrderStatusText(status, lang string) string {
	m := orderStatusEn
	if lang == i18n.LangFa {
		m = orderStatusFa
	}
	if s, ok := m[status]; ok {
		return s
	}
	return status
}

// StockStatusText localizes the in-stock flag.
func StockStatusText(stockStatus, lang string) string {
	inStock := stockStatus == "instock"
	if lang == i18n.LangFa {
		if inStock {
			return "موجود"
		}
		return "ناموجود"
	}
	if inStock {
		return "In Stock"
	}
	return "Out of Stock"
}

// FormatProduct renders a product into the message block sent to the user.
// A product without a name is treated as malformed and degrades to the
// localized error string.
func FormatProduct(p *Product, lang string) string {
	if p == nil || p.Name == "" {
		return i18n.T(lang, "product_format_error")
	}

	currency := "USD"
	if lang == i18n.LangFa {
		currency = "تومان"
	}
	price := p.Price
	if price == "" {
		price = "0"
	}

	description := strings.TrimSpace(htmlTagRe.ReplaceAllString(p.ShortDescription, ""))

	var b strings.Builder
	fmt.Fprintf(&b, "🛍️ **%s**\n\n", p.Name)
	if description != "" {
		if runes := []rune(description); len(runes) > maxDescriptionLen {
			fmt.Fprintf(&b, "%s...\n\n", string(runes[:maxDescriptionLen]))
		} else {
			fmt.Fprintf(&b, "%s\n\n", description)
		}
	}
	if lang == i18n.LangFa {
		fmt.Fprintf(&b, "💰 قیمت: %s %s\n", price, currency)
		fmt.Fprintf(&b, "📦 وضعیت: %s\n", StockStatusText(p.StockStatus, lang))
	} else {
		fmt.Fprintf(&b, "💰 Price: %s %s\n", price, currency)
		fmt.Fprintf(&b, "📦 Status: %s\n", StockStatusText(p.StockStatus, lang))
	}
	if p.Permalink != "" {
		if lang == i18n.LangFa {
			fmt.Fprintf(&b, "\n🔗 لینک محصول: %s", p.Permalink)
		} else {
			fmt.Fprintf(&b, "\n🔗 Product link: %s", p.Permalink)
		}
	}
	return b.String()
}

// FormatOrder renders an order status block: number, mapped status, total,
// date and up to five line items.
func FormatOrder(o *Order, lang string) string {
	if o == nil || o.Number == "" {
		return i18n.T(lang, "order_format_error")
	}

	currency := o.Currency
	if currency == "" {
		currency = "USD"
	}
	total := o.Total
	if total == "" {
		total = "0"
	}
	statusText := OrderStatusText(o.Status, lang)

	var b strings.Builder
	if lang == i18n.LangFa {
		fmt.Fprintf(&b, "📦 **سفارش #%s**\n\n", o.Number)
		fmt.Fprintf(&b, "🔄 وضعیت: %s\n", statusText)
		fmt.Fprintf(&b, "💰 مجموع: %s %s\n", total, currency)
		if o.DateCreated != "" {
			fmt.Fprintf(&b, "📅 تاریخ سفارش: %s\n", truncDate(o.DateCreated))
		}
	} else {
		fmt.Fprintf(&b, "📦 **Order #%s**\n\n", o.Number)
		fmt.Fprintf(&b, "🔄 Status: %s\n", statusText)
		fmt.Fprintf(&b, "💰 Total: %s %s\n", total, currency)
		if o.DateCreated != "" {
			fmt.Fprintf(&b, "📅 Order Date: %s\n", truncDate(o.DateCreated))
		}
	}

	if len(o.LineItems) > 0 {
		if lang == i18n.LangFa {
			b.WriteString("\n🛍️ آیتم‌های سفارش:\n")
		} else {
			b.WriteString("\n🛍️ Order Items:\n")
		}
		for i, item := range o.LineItems {
			if i == maxLineItems {
				break
			}
			qty := item.Quantity
			if qty == 0 {
				qty = 1
			}
			fmt.Fprintf(&b, "• %dx %s\n", qty, item.Name)
		}
		if remaining := len(o.LineItems) - maxLineItems; remaining > 0 {
			if lang == i18n.LangFa {
				fmt.Fprintf(&b, "... و %d آیتم دیگر\n", remaining)
			} else {
				fmt.Fprintf(&b, "... and %d more items\n", remaining)
			}
		}
	}
	return b.String()
}

func truncDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
