package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, "ck_test", "cs_test")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, srv
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	if _, err := NewClient("", "k", "s"); err == nil {
		t.Fatal("expected error for missing base url")
	}
	if _, err := NewClient("https://shop.example.com", "", ""); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestListCategories_FiltersEmptyAndSorts(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wc/v3/products/categories" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if u, _, ok := r.BasicAuth(); !ok || u != "ck_test" {
			t.Errorf("missing basic auth")
		}
		json.NewEncoder(w).Encode([]Category{
			{ID: 2, Name: "Shoes", Count: 3},
			{ID: 3, Name: "Empty", Count: 0},
			{ID: 1, Name: "Accessories", Count: 7},
		})
	})

	cats := c.ListCategories(context.Background())
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cats))
	}
	if cats[0].Name != "Accessories" || cats[1].Name != "Shoes" {
		t.Fatalf("categories not sorted by name: %+v", cats)
	}
}

func TestListCategories_EmptyOnServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	if cats := c.ListCategories(context.Background()); len(cats) != 0 {
		t.Fatalf("expected empty result on failure, got %+v", cats)
	}
}

func TestListProducts_PassesCategoryAndPaging(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("category") != "7" || q.Get("page") != "2" || q.Get("per_page") != "10" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("orderby") != "popularity" || q.Get("order") != "desc" {
			t.Errorf("missing popularity ordering: %v", q)
		}
		json.NewEncoder(w).Encode([]Product{{ID: 1, Name: "Red Shirt"}})
	})

	products := c.ListProducts(context.Background(), 7, 2, 10)
	if len(products) != 1 || products[0].Name != "Red Shirt" {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestGetProduct_NilOnNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	if p := c.GetProduct(context.Background(), 42); p != nil {
		t.Fatalf("expected nil product, got %+v", p)
	}
}

func TestFindOrderByNumber_PicksFirstResult(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("search") != "1042" || q.Get("per_page") != "1" {
			t.Errorf("unexpected query: %v", q)
		}
		json.NewEncoder(w).Encode([]Order{{ID: 9, Number: "1042", Status: "processing"}})
	})

	order := c.FindOrderByNumber(context.Background(), "1042")
	if order == nil || order.Number != "1042" {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestFindOrderByNumber_NilOnNoMatch(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Order{})
	})
	if o := c.FindOrderByNumber(context.Background(), "9999"); o != nil {
		t.Fatalf("expected nil, got %+v", o)
	}
}
