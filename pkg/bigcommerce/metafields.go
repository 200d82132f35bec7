package bigcommerce

import (
	"context"
	"strconv"
)

type PermissionSet string

const (
	PermissionAppOnly          PermissionSet = "app_only"
	PermissionRead             PermissionSet = "read"
	PermissionWrite            PermissionSet = "write"
	PermissionReadAndSFAccess  PermissionSet = "read_and_sf_access"
	PermissionWriteAndSFAccess PermissionSet = "write_and_sf_access"
)

type MetafieldItem struct {
	Key         string `json:"key" validate:"required,max=64"`
	Value       string `json:"value" validate:"required,max=65535"`
	Description string `json:"description,omitempty" validate:"max=255"`
}

type Metafield struct {
	ID            int64         `json:"id"`
	Key           string        `json:"key"`
	Value         string        `json:"value"`
	Namespace     string        `json:"namespace"`
	PermissionSet PermissionSet `json:"permission_set"`
	ResourceType  string        `json:"resource_type"`
	ResourceID    int64         `json:"resource_id"`
	Description   string        `json:"description"`
	DateCreated   string        `json:"date_created"`
	DateModified  string        `json:"date_modified"`
}

type metafieldCreate struct {
	ResourceID    int64         `json:"resource_id"`
	Key           string        `json:"key"`
	Value         string        `json:"value"`
	Namespace     string        `json:"namespace"`
	PermissionSet PermissionSet `json:"permission_set"`
	Description   string        `json:"description,omitempty"`
}

type metafieldBatch struct {
	PermissionSet PermissionSet   `validate:"oneof=app_only read write read_and_sf_access write_and_sf_access"`
	Namespace     string          `validate:"required,max=64"`
	Items         []MetafieldItem `validate:"required,min=1,dive"`
}

// MetafieldSearch filters a metafield listing. Zero fields are omitted.
type MetafieldSearch struct {
	Key       string
	Namespace string
	Limit     int
	Page      int
}

func (s MetafieldSearch) Filter() Filter {
	f := NewFilter()
	if s.Key != "" {
		f = f.Add("key", s.Key)
	}
	if s.Namespace != "" {
		f = f.Add("namespace", s.Namespace)
	}
	if s.Limit > 0 {
		f = f.Add("limit", strconv.Itoa(s.Limit))
	}
	if s.Page > 0 {
		f = f.Add("page", strconv.Itoa(s.Page))
	}
	return f
}

func (s MetafieldSearch) Next(p Pagination) MetafieldSearch {
	s.Page = p.CurrentPage + 1
	if s.Limit == 0 {
		s.Limit = p.PerPage
	}
	return s
}

func buildMetafields(op string, resourceID int64, permission PermissionSet, namespace string, items []MetafieldItem) ([]metafieldCreate, error) {
	if err := validatePayload(op, metafieldBatch{PermissionSet: permission, Namespace: namespace, Items: items}); err != nil {
		return nil, err
	}
	out := make([]metafieldCreate, 0, len(items))
	for _, it := range items {
		out = append(out, metafieldCreate{
			ResourceID:    resourceID,
			Key:           it.Key,
			Value:         it.Value,
			Namespace:     namespace,
			PermissionSet: permission,
			Description:   it.Description,
		})
	}
	return out, nil
}

// CreateOrderMetafields creates every item under one namespace in a single batch call.
func (c Client) CreateOrderMetafields(ctx context.Context, orderID int64, permission PermissionSet, namespace string, items []MetafieldItem) (Result[[]Metafield], error) {
	body, err := buildMetafields("create order metafields", orderID, permission, namespace, items)
	if err != nil {
		return Result[[]Metafield]{}, err
	}
	return Post[[]Metafield](ctx, c, OrderMetafieldsBatchEndpoint(), Filter{}, body)
}

func (c Client) ListOrderMetafields(ctx context.Context, orderID int64, s MetafieldSearch) (PagedResult[Metafield], error) {
	return GetPaged[Metafield](ctx, c, OrderMetafieldsEndpoint(orderID), s.Filter())
}

func (c Client) DeleteOrderMetafield(ctx context.Context, orderID, metafieldID int64) (Result[NoContent], error) {
	return Delete[NoContent](ctx, c, OrderMetafieldEndpoint(orderID, metafieldID), Filter{})
}

func (c Client) CreateProductMetafields(ctx context.Context, productID int64, permission PermissionSet, namespace string, items []MetafieldItem) (Result[[]Metafield], error) {
	body, err := buildMetafields("create product metafields", productID, permission, namespace, items)
	if err != nil {
		return Result[[]Metafield]{}, err
	}
	return Post[[]Metafield](ctx, c, ProductMetafieldsBatchEndpoint(), Filter{}, body)
}

func (c Client) ListProductMetafields(ctx context.Context, productID int64, s MetafieldSearch) (PagedResult[Metafield], error) {
	return GetPaged[Metafield](ctx, c, ProductMetafieldsEndpoint(productID), s.Filter())
}

func (c Client) DeleteProductMetafield(ctx context.Context, productID, metafieldID int64) (Result[NoContent], error) {
	return Delete[NoContent](ctx, c, ProductMetafieldEndpoint(productID, metafieldID), Filter{})
}
