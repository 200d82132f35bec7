package bigcommerce_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bigcommerce-sdk/pkg/bigcommerce"
)

func testOrder(products ...int64) bigcommerce.OrderCreate {
	o := bigcommerce.OrderCreate{
		BillingAddress: bigcommerce.Address{
			FirstName:   "Jane",
			LastName:    "Doe",
			Street1:     "1 Main St",
			City:        "Austin",
			State:       "Texas",
			Zip:         "78701",
			Country:     "United States",
			CountryISO2: "US",
			Email:       "jane@example.com",
		},
		StaffNotes:      "created by test",
		ExternalSource:  "sdk-test",
		ExternalOrderID: uuid.NewString(),
	}
	for _, id := range products {
		o.Products = append(o.Products, bigcommerce.OrderProductCreate{ProductID: id, Quantity: 2})
	}
	return o
}

func createOrder(t *testing.T, c bigcommerce.Client, o bigcommerce.OrderCreate) bigcommerce.Order {
	t.Helper()
	res, err := c.CreateOrder(context.Background(), o)
	require.NoError(t, err)
	require.True(t, res.HasData(), res.Error())
	t.Cleanup(func() {
		_, _ = c.CancelOrder(context.Background(), res.Data.ID)
	})
	return res.Data
}

func TestOrderCreateGetCancel(t *testing.T) {
	c, store := newFakeStore(t)
	ctx := context.Background()

	price := bigcommerce.AmountFromDecimal(mustDecimal(t, "12.50"))
	in := testOrder(productShirt)
	in.Products[0].PriceExTax = &price
	order := createOrder(t, c, in)

	assert.Equal(t, bigcommerce.OrderStatusPending, order.StatusID)
	assert.Equal(t, "Pending", order.Status)
	assert.Equal(t, "25", order.SubtotalExTax.String())
	assert.Equal(t, in.ExternalOrderID, order.ExternalOrderID)
	assert.Equal(t, "Jane", order.BillingAddress.FirstName)
	_, err := order.CreatedAt()
	require.NoError(t, err)

	got, err := c.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, got.HasData())
	assert.Equal(t, order.ID, got.Data.ID)

	cancelled, err := c.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, cancelled.HasData(), cancelled.Error())
	assert.Equal(t, bigcommerce.OrderStatusCancelled, cancelled.Data.StatusID)
	assert.Equal(t, int(bigcommerce.OrderStatusCancelled), store.OrderStatus(order.ID))
}

func TestOrderUnknownProductFailure(t *testing.T) {
	c, _ := newFakeStore(t)

	res, err := c.CreateOrder(context.Background(), testOrder(1))
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, res.Error(), "The product id 1 is invalid.")
}

func TestOrderValidation(t *testing.T) {
	c, store := newFakeStore(t)

	_, err := c.CreateOrder(context.Background(), testOrder())
	require.Error(t, err)

	bad := testOrder(productShirt)
	bad.BillingAddress.Email = "not-an-email"
	_, err = c.CreateOrder(context.Background(), bad)
	require.Error(t, err)

	assert.Empty(t, store.Requests())
}

func TestGetOrderWithConsignments(t *testing.T) {
	c, store := newFakeStore(t)
	order := createOrder(t, c, testOrder(productShirt, productMug))

	res, err := c.GetOrderWithConsignments(context.Background(), order.ID)
	require.NoError(t, err)
	require.True(t, res.HasData())
	require.Len(t, res.Data.Consignments, 1)
	require.Len(t, res.Data.Consignments[0].Shipping, 1)

	shipping := res.Data.Consignments[0].Shipping[0]
	assert.Equal(t, "Free Shipping", shipping.ShippingMethod)
	assert.Len(t, shipping.LineItems, 2)
	assert.Equal(t, 4, shipping.ItemsTotal)

	gets := requestsTo(store, http.MethodGet, "v2/orders/"+itoa(order.ID))
	require.Len(t, gets, 1)
	assert.Equal(t, "consignments,consignments.line_items", gets[0].Query.Get("include"))
}

func TestOrderShipment(t *testing.T) {
	c, store := newFakeStore(t)
	ctx := context.Background()
	order := createOrder(t, c, testOrder(productShirt))

	addrs, err := c.GetOrderShippingAddresses(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, addrs.HasData())
	require.Len(t, addrs.Data, 1)
	addr := addrs.Data[0]
	assert.Equal(t, "Austin", addr.City)

	full, err := c.GetOrderWithConsignments(ctx, order.ID)
	require.NoError(t, err)
	line := full.Data.Consignments[0].Shipping[0].LineItems[0]

	shipment, err := c.CreateOrderShipment(ctx, order.ID, bigcommerce.OrderShipmentCreate{
		OrderAddressID:   addr.ID,
		TrackingNumber:   "1Z999",
		ShippingProvider: "ups",
		Items:            []bigcommerce.OrderShipmentItem{{OrderProductID: line.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.True(t, shipment.HasData(), shipment.Error())
	assert.Equal(t, "1Z999", shipment.Data.TrackingNumber)
	assert.Equal(t, int(bigcommerce.OrderStatusPartiallyShipped), store.OrderStatus(order.ID))

	rest, err := c.CreateOrderShipment(ctx, order.ID, bigcommerce.OrderShipmentCreate{
		OrderAddressID: addr.ID,
		Items:          []bigcommerce.OrderShipmentItem{{OrderProductID: line.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.True(t, rest.Success())
	assert.Equal(t, int(bigcommerce.OrderStatusShipped), store.OrderStatus(order.ID))

	over, err := c.CreateOrderShipment(ctx, order.ID, bigcommerce.OrderShipmentCreate{
		OrderAddressID: addr.ID,
		Items:          []bigcommerce.OrderShipmentItem{{OrderProductID: line.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.False(t, over.Success())
	assert.Equal(t, http.StatusBadRequest, over.StatusCode)
}

func TestSearchOrdersPaging(t *testing.T) {
	c, store := newFakeStore(t)
	ctx := context.Background()

	const total, perPage = 7, 3
	want := map[int64]bool{}
	for i := 0; i < total; i++ {
		want[createOrder(t, c, testOrder(productShirt)).ID] = true
	}

	search := bigcommerce.OrderSearch{
		MinDateCreated: time.Now().Add(-time.Hour),
		Sort:           bigcommerce.OrderSortID,
		Direction:      bigcommerce.SortAsc,
		Limit:          perPage,
		Page:           1,
	}

	seen := map[int64]bool{}
	pages := 0
	for page, err := range bigcommerce.Pages(ctx, search, c.SearchOrders) {
		require.NoError(t, err)
		require.True(t, page.Success(), page.Error())
		pages++
		for _, o := range page.Data {
			assert.False(t, seen[o.ID], "duplicate order %d", o.ID)
			seen[o.ID] = true
		}
		assert.Equal(t, pages < 3, page.HasNextPage())
	}
	assert.Equal(t, 3, pages)
	assert.Equal(t, want, seen)

	gets := requestsTo(store, http.MethodGet, "v2/orders")
	require.Len(t, gets, 3)
	assert.Equal(t, "id:asc", gets[0].Query.Get("sort"))
	assert.Equal(t, "3", gets[2].Query.Get("page"))
}

func TestSearchOrdersVisitsCeilPages(t *testing.T) {
	for _, tc := range []struct{ orders, limit, pages int }{
		{6, 3, 2}, {4, 2, 2}, {5, 2, 3}, {1, 50, 1},
	} {
		c, store := newFakeStore(t)
		ctx := context.Background()
		for i := 0; i < tc.orders; i++ {
			createOrder(t, c, testOrder(productShirt))
		}

		pages, count := 0, 0
		for page, err := range bigcommerce.Pages(ctx, bigcommerce.OrderSearch{Limit: tc.limit}, c.SearchOrders) {
			require.NoError(t, err)
			require.True(t, page.HasData(), page.Error())
			pages++
			count += len(page.Data)
			assert.Equal(t, tc.orders, page.Pagination.Total)
			assert.Equal(t, pages < tc.pages, page.HasNextPage(), "page %d of %+v", pages, tc)
		}
		assert.Equal(t, tc.pages, pages, "%+v", tc)
		assert.Equal(t, tc.orders, count)
		assert.Len(t, requestsTo(store, http.MethodGet, "v2/orders"), tc.pages)
	}
}

func TestSearchOrdersNoMatches(t *testing.T) {
	c, _ := newFakeStore(t)

	res, err := c.SearchOrders(context.Background(), bigcommerce.OrderSearch{Limit: 5})
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.False(t, res.HasData())
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Zero(t, res.Pagination.Total)
	assert.False(t, res.HasNextPage())
}

func TestCountOrders(t *testing.T) {
	c, store := newFakeStore(t)
	ctx := context.Background()

	createOrder(t, c, testOrder(productShirt))
	drop := createOrder(t, c, testOrder(productShirt))
	_, err := c.CancelOrder(ctx, drop.ID)
	require.NoError(t, err)

	all, err := c.CountOrders(ctx, bigcommerce.OrderSearch{Limit: 1, Page: 2, Sort: bigcommerce.OrderSortID})
	require.NoError(t, err)
	require.True(t, all.HasData(), all.Error())
	assert.Equal(t, 2, all.Data.Count)
	assert.Len(t, all.Data.Statuses, 2)

	calls := requestsTo(store, http.MethodGet, "v2/orders/count")
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Query.Get("page"))
	assert.Empty(t, calls[0].Query.Get("limit"))
	assert.Empty(t, calls[0].Query.Get("sort"))

	cancelled, err := c.CountOrders(ctx, bigcommerce.OrderSearch{StatusID: bigcommerce.StatusPtr(bigcommerce.OrderStatusCancelled)})
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled.Data.Count)
}

func TestSearchOrdersByStatus(t *testing.T) {
	c, _ := newFakeStore(t)
	ctx := context.Background()

	keep := createOrder(t, c, testOrder(productShirt))
	drop := createOrder(t, c, testOrder(productShirt))
	_, err := c.CancelOrder(ctx, drop.ID)
	require.NoError(t, err)

	res, err := c.SearchOrders(ctx, bigcommerce.OrderSearch{StatusID: bigcommerce.StatusPtr(bigcommerce.OrderStatusPending)})
	require.NoError(t, err)
	require.True(t, res.HasData())
	require.Len(t, res.Data, 1)
	assert.Equal(t, keep.ID, res.Data[0].ID)
	assert.Equal(t, 1, res.Pagination.CurrentPage)
	assert.Equal(t, 50, res.Pagination.PerPage)
	assert.Equal(t, 1, res.Pagination.Total)
	assert.Equal(t, 1, res.Pagination.TotalPages)
}

func TestOrderStatusString(t *testing.T) {
	assert.Equal(t, "Awaiting Fulfillment", bigcommerce.OrderStatusAwaitingFulfillment.String())
	assert.Equal(t, "Unknown(99)", bigcommerce.OrderStatus(99).String())
}
