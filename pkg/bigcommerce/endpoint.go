package bigcommerce

import (
	"net/url"
	"strconv"
	"strings"
)

type APIVersion string

const (
	V2 APIVersion = "v2"
	V3 APIVersion = "v3"
)

// Endpoint is a store-relative API path such as v3/carts/{id}.
type Endpoint struct {
	Version APIVersion
	Path    string
}

func (e Endpoint) String() string {
	return string(e.Version) + "/" + e.Path
}

func endpoint(v APIVersion, segments ...string) Endpoint {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return Endpoint{Version: v, Path: strings.Join(escaped, "/")}
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func CartsEndpoint() Endpoint { return endpoint(V3, "carts") }

func CartEndpoint(cartID string) Endpoint { return endpoint(V3, "carts", cartID) }

func CartItemsEndpoint(cartID string) Endpoint { return endpoint(V3, "carts", cartID, "items") }

func CartItemEndpoint(cartID, lineID string) Endpoint {
	return endpoint(V3, "carts", cartID, "items", lineID)
}

func CartRedirectURLsEndpoint(cartID string) Endpoint {
	return endpoint(V3, "carts", cartID, "redirect_urls")
}

func OrdersEndpoint() Endpoint { return endpoint(V2, "orders") }

func OrdersCountEndpoint() Endpoint { return endpoint(V2, "orders", "count") }

func OrderEndpoint(orderID int64) Endpoint { return endpoint(V2, "orders", itoa(orderID)) }

func OrderShipmentsEndpoint(orderID int64) Endpoint {
	return endpoint(V2, "orders", itoa(orderID), "shipments")
}

func OrderShippingAddressesEndpoint(orderID int64) Endpoint {
	return endpoint(V2, "orders", itoa(orderID), "shipping_addresses")
}

func OrderMetafieldsEndpoint(orderID int64) Endpoint {
	return endpoint(V3, "orders", itoa(orderID), "metafields")
}

func OrderMetafieldEndpoint(orderID, metafieldID int64) Endpoint {
	return endpoint(V3, "orders", itoa(orderID), "metafields", itoa(metafieldID))
}

// OrderMetafieldsBatchEndpoint creates metafields for any orders in one call.
func OrderMetafieldsBatchEndpoint() Endpoint { return endpoint(V3, "orders", "metafields") }

func ProductsEndpoint() Endpoint { return endpoint(V3, "catalog", "products") }

func ProductEndpoint(productID int64) Endpoint {
	return endpoint(V3, "catalog", "products", itoa(productID))
}

func ProductMetafieldsEndpoint(productID int64) Endpoint {
	return endpoint(V3, "catalog", "products", itoa(productID), "metafields")
}

func ProductMetafieldEndpoint(productID, metafieldID int64) Endpoint {
	return endpoint(V3, "catalog", "products", itoa(productID), "metafields", itoa(metafieldID))
}

// ProductMetafieldsBatchEndpoint creates metafields for any products in one call.
func ProductMetafieldsBatchEndpoint() Endpoint {
	return endpoint(V3, "catalog", "products", "metafields")
}

func ProductImagesEndpoint(productID int64) Endpoint {
	return endpoint(V3, "catalog", "products", itoa(productID), "images")
}

func HooksEndpoint() Endpoint { return endpoint(V3, "hooks") }

func HookEndpoint(hookID int64) Endpoint { return endpoint(V3, "hooks", itoa(hookID)) }
