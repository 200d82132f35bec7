package bigcommerce_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bigcommerce-sdk/pkg/bigcommerce"
)

func TestHooks(t *testing.T) {
	c, store := newFakeStore(t)
	ctx := context.Background()

	in := bigcommerce.HookCreate{
		Scope:       bigcommerce.ScopeAppUninstalled,
		Destination: "https://app.example.com/v1/webhooks",
		Headers:     map[string]string{"X-Webhook-Secret": "s3cret"},
	}
	created, err := c.CreateHook(ctx, in)
	require.NoError(t, err)
	require.True(t, created.HasData(), created.Error())
	assert.True(t, created.Data.IsActive)
	assert.Equal(t, "s3cret", created.Data.Headers["X-Webhook-Secret"])

	again, err := c.EnsureHook(ctx, in)
	require.NoError(t, err)
	require.True(t, again.HasData(), again.Error())
	assert.Equal(t, created.Data.ID, again.Data.ID)
	assert.Equal(t, 1, store.HookCount())

	other := in
	other.Scope = bigcommerce.ScopeOrderCreated
	second, err := c.EnsureHook(ctx, other)
	require.NoError(t, err)
	assert.NotEqual(t, created.Data.ID, second.Data.ID)
	assert.Equal(t, 2, store.HookCount())

	list, err := c.ListHooks(ctx, bigcommerce.HookSearch{Scope: bigcommerce.ScopeOrderCreated})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, second.Data.ID, list.Data[0].ID)

	del, err := c.DeleteHook(ctx, created.Data.ID)
	require.NoError(t, err)
	assert.True(t, del.Success())
	assert.Equal(t, 1, store.HookCount())

	missing, err := c.DeleteHook(ctx, created.Data.ID)
	require.NoError(t, err)
	assert.False(t, missing.Success())
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestHookValidation(t *testing.T) {
	c, store := newFakeStore(t)

	for name, h := range map[string]bigcommerce.HookCreate{
		"missing scope":    {Destination: "https://app.example.com/hook"},
		"plain http":       {Scope: bigcommerce.ScopeCartCreated, Destination: "http://app.example.com/hook"},
		"not a url at all": {Scope: bigcommerce.ScopeCartCreated, Destination: "app"},
	} {
		_, err := c.CreateHook(context.Background(), h)
		var verr validator.ValidationErrors
		assert.True(t, errors.As(err, &verr), name)
	}
	assert.Empty(t, store.Requests())
}
