package catalog

// Wire shapes of the WooCommerce REST API (wc/v3). Only the fields the bot
// presents are decoded; everything else is ignored.

type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Product struct {
	ID               int        `json:"id"`
	Name             string     `json:"name"`
	Price            string     `json:"price"`
	StockStatus      string     `json:"stock_status"`
	ShortDescription string     `json:"short_description"`
	Permalink        string     `json:"permalink"`
	Categories       []Category `json:"categories"`
}

type LineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type Order struct {
	ID          int        `json:"id"`
	Number      string     `json:"number"`
	Status      string     `json:"status"`
	Total       string     `json:"total"`
	Currency    string     `json:"currency"`
	DateCreated string     `json:"date_created"`
	LineItems   []LineItem `json:"line_items"`
}
