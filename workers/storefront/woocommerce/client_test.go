package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"courier-bridge-service/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.StorefrontConfig{
		StoreURL:       srv.URL + "/",
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		PerPage:        2,
	}, zap.NewNop(), srv.Client())
}

func TestGetAllProductsFollowsTotalPages(t *testing.T) {
	var pages []int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ck_test", user)
		assert.Equal(t, "cs_test", pass)
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pages = append(pages, page)
		w.Header().Set(totalPagesHeader, "2")
		var products []Product
		switch page {
		case 1:
			products = []Product{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
		case 2:
			products = []Product{{ID: 3, Name: "c"}}
		}
		_ = json.NewEncoder(w).Encode(products)
	})

	var progress []int
	products, err := client.GetAllProducts(context.Background(), func(n int) { progress = append(progress, n) })
	require.NoError(t, err)
	assert.Len(t, products, 3)
	assert.Equal(t, []int{1, 2}, pages)
	assert.Equal(t, []int{2, 3}, progress)
}

func TestGetAllOrdersStopsOnEmptyPage(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "any", r.URL.Query().Get("status"))
		if r.URL.Query().Get("page") == "1" {
			_, _ = fmt.Fprint(w, `[{"id":10,"status":"processing","total":"12.00","billing":{"first_name":"A","phone":"6912345678"}}]`)
			return
		}
		_, _ = fmt.Fprint(w, `[]`)
	})

	orders, err := client.GetAllOrders(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(10), orders[0].ID)
	assert.Equal(t, "6912345678", orders[0].Billing.Phone)
	assert.Equal(t, 2, calls)
}

func TestGetAllProductsReturnsPartialOnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Header().Set(totalPagesHeader, "3")
			_, _ = fmt.Fprint(w, `[{"id":1},{"id":2}]`)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	products, err := client.GetAllProducts(context.Background(), nil)
	require.Error(t, err)
	assert.Len(t, products, 2)
}

func TestGetOrderAndPing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/wc/v3/orders/77":
			_, _ = fmt.Fprint(w, `{"id":77,"payment_method":"cod","total":"25.50"}`)
		case "/wp-json/wc/v3/system_status":
			_, _ = fmt.Fprint(w, `{}`)
		default:
			http.NotFound(w, r)
		}
	})

	order, err := client.GetOrder(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodCOD, order.PaymentMethod)
	assert.Equal(t, "25.50", order.Total)

	require.NoError(t, client.Ping(context.Background()))

	_, err = client.GetOrder(context.Background(), 78)
	assert.Error(t, err)
}

func TestAddressFullName(t *testing.T) {
	assert.Equal(t, "A B", Address{FirstName: "A", LastName: "B"}.FullName())
	assert.Equal(t, "B", Address{LastName: "B"}.FullName())
	assert.Equal(t, "A", Address{FirstName: "A"}.FullName())
}
