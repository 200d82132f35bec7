//go:build integration

package bigcommerce_test

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bigcommerce-sdk/pkg/bigcommerce"
	"bigcommerce-sdk/pkg/config"
	"bigcommerce-sdk/pkg/logger"
)

// liveClient talks to the store in BIGCOMMERCE_* and skips when none is configured.
func liveClient(t *testing.T) (bigcommerce.Client, config.Config) {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	if !cfg.BigCommerce.HasStoreCredentials() {
		t.Skip("BIGCOMMERCE_STORE_HASH and BIGCOMMERCE_ACCESS_TOKEN not set")
	}
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	require.NoError(t, err)
	return bigcommerce.New(cfg.BigCommerce, bigcommerce.WithLogger(log)), cfg
}

func envProduct(t *testing.T, key string, def int64) int64 {
	t.Helper()
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	require.NoError(t, err, key)
	return n
}

func TestLiveCartScenario(t *testing.T) {
	c, _ := liveClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	first := envProduct(t, "BIGCOMMERCE_TEST_PRODUCT_ID", productShirt)
	second := envProduct(t, "BIGCOMMERCE_TEST_SECOND_PRODUCT_ID", productMug)

	created, err := c.CreateCart(ctx, bigcommerce.CartCreate{
		LineItems: []bigcommerce.CartLineItem{{ProductID: first, Quantity: 1}},
	}, bigcommerce.NewFilter())
	require.NoError(t, err)
	require.True(t, created.HasData(), created.Error())
	cartID := created.Data.ID
	t.Cleanup(func() { _, _ = c.DeleteCart(context.Background(), cartID) })

	require.Len(t, created.Data.LineItems.PhysicalItems, 1)
	assert.Equal(t, first, created.Data.LineItems.PhysicalItems[0].ProductID)

	added, err := c.AddCartLineItems(ctx, cartID, bigcommerce.CartItemsAdd{
		LineItems: []bigcommerce.CartLineItem{{ProductID: second, Quantity: 2}},
	}, bigcommerce.NewFilter())
	require.NoError(t, err)
	require.True(t, added.HasData(), added.Error())
	require.Len(t, added.Data.LineItems.PhysicalItems, 2)

	lineID := added.Data.LineItems.PhysicalItems[0].ID
	_, err = c.UpdateCartLineItem(ctx, cartID, lineID, bigcommerce.CartLineItemUpdate{
		LineItem: bigcommerce.CartLineItem{ProductID: first, Quantity: 3},
	}, bigcommerce.NewFilter())
	require.NoError(t, err)

	after, err := c.DeleteCartLineItem(ctx, cartID, added.Data.LineItems.PhysicalItems[1].ID, bigcommerce.NewFilter())
	require.NoError(t, err)
	require.True(t, after.HasData(), after.Error())
	require.Len(t, after.Data.LineItems.PhysicalItems, 1)
	assert.Equal(t, 3, after.Data.LineItems.PhysicalItems[0].Quantity)
}

func TestLiveOrderSearch(t *testing.T) {
	c, _ := liveClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	search := bigcommerce.OrderSearch{
		MinDateCreated: time.Now().AddDate(0, 0, -30),
		Sort:           bigcommerce.OrderSortDateCreated,
		Direction:      bigcommerce.SortDesc,
		Limit:          5,
	}
	pages := 0
	for page, err := range bigcommerce.Pages(ctx, search, c.SearchOrders) {
		require.NoError(t, err)
		require.True(t, page.Success(), page.Error())
		pages++
		if pages == 3 {
			break
		}
	}
	assert.NotZero(t, pages)
}
