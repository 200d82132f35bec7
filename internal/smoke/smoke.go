// Package smoke drives a short cart and order round trip against a store and
// cleans up what earlier runs left behind.
package smoke

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bigcommerce-sdk/internal/ledger"
	"bigcommerce-sdk/pkg/bigcommerce"
)

// Recorder remembers created resources. A nil Recorder records nothing.
type Recorder interface {
	Record(ctx context.Context, storeHash string, kind ledger.Kind, remoteID string) error
}

type Pending interface {
	ListPending(ctx context.Context, storeHash string) ([]ledger.Resource, error)
	MarkCleaned(ctx context.Context, id int64) error
}

type Options struct {
	FirstProduct  int64
	SecondProduct int64
	// KeepCart skips the final cart delete so the cart can be inspected.
	KeepCart bool
	// Order also places, ships and cancels an order for FirstProduct.
	Order bool

	// ChannelID is sent on the cart and order; zero leaves the store default.
	ChannelID int64
}

// Step is one checked stage of a run.
type Step struct {
	Name   string
	Detail string
}

type Runner struct {
	Client   bigcommerce.Client
	Recorder Recorder
	Log      *zap.Logger
}

// Run executes the cart round trip, stopping at the first failed check.
func (r Runner) Run(ctx context.Context, opts Options) ([]Step, error) {
	var steps []Step
	ok := func(name, format string, args ...any) {
		steps = append(steps, Step{Name: name, Detail: fmt.Sprintf(format, args...)})
		r.logger().Info("smoke step", zap.String("step", name))
	}
	c := r.Client

	created, err := c.CreateCart(ctx, bigcommerce.CartCreate{
		ChannelID: opts.ChannelID,
		LineItems: []bigcommerce.CartLineItem{{ProductID: opts.FirstProduct, Quantity: 1}},
	}, bigcommerce.NewFilter())
	if err := check("create cart", created, err); err != nil {
		return steps, err
	}
	cart := created.Data
	r.record(ctx, ledger.KindCart, cart.ID)
	if err := expectLines(cart, 1); err != nil {
		return steps, fmt.Errorf("create cart: %w", err)
	}
	if opts.ChannelID > 0 && cart.ChannelID != opts.ChannelID {
		return steps, fmt.Errorf("create cart: channel=%d, want %d", cart.ChannelID, opts.ChannelID)
	}
	first := cart.LineItems.PhysicalItems[0]
	if first.ProductID != opts.FirstProduct || first.Quantity != 1 || len(first.Options) != 0 {
		return steps, fmt.Errorf("create cart: unexpected line product=%d quantity=%d options=%d", first.ProductID, first.Quantity, len(first.Options))
	}
	ok("create cart", "id=%s product=%d channel=%d", cart.ID, first.ProductID, cart.ChannelID)

	added, err := c.AddCartLineItems(ctx, cart.ID, bigcommerce.CartItemsAdd{
		LineItems: []bigcommerce.CartLineItem{{ProductID: opts.SecondProduct, Quantity: 2}},
	}, bigcommerce.NewFilter())
	if err := check("add line items", added, err); err != nil {
		return steps, err
	}
	if err := expectLines(added.Data, 2); err != nil {
		return steps, fmt.Errorf("add line items: %w", err)
	}
	second := added.Data.LineItems.PhysicalItems[1]
	ok("add line items", "lines=2 added=%s", second.ID)

	updated, err := c.UpdateCartLineItem(ctx, cart.ID, first.ID, bigcommerce.CartLineItemUpdate{
		LineItem: bigcommerce.CartLineItem{ProductID: opts.FirstProduct, Quantity: 3},
	}, bigcommerce.NewFilter())
	if err := check("update line item", updated, err); err != nil {
		return steps, err
	}
	fetched, err := c.GetCart(ctx, cart.ID, bigcommerce.NewFilter())
	if err := check("get cart", fetched, err); err != nil {
		return steps, err
	}
	if q := lineQuantity(fetched.Data, first.ID); q != 3 {
		return steps, fmt.Errorf("update line item: quantity=%d on re-fetch", q)
	}
	ok("update line item", "line=%s quantity=3", first.ID)

	after, err := c.DeleteCartLineItem(ctx, cart.ID, second.ID, bigcommerce.NewFilter())
	if err := check("delete line item", after, err); err != nil {
		return steps, err
	}
	if err := expectLines(after.Data, 1); err != nil {
		return steps, fmt.Errorf("delete line item: %w", err)
	}
	if q := lineQuantity(after.Data, first.ID); q != 3 {
		return steps, fmt.Errorf("delete line item: remaining quantity=%d", q)
	}
	ok("delete line item", "lines=1 quantity=3")

	links, err := c.CreateCartRedirectURLs(ctx, cart.ID, bigcommerce.CartRedirectQuery{})
	if err := check("redirect urls", links, err); err != nil {
		return steps, err
	}
	ok("redirect urls", "checkout=%s", links.Data.CheckoutURL)

	if !opts.KeepCart {
		if err := r.deleteCart(ctx, cart.ID); err != nil {
			return steps, err
		}
		ok("delete cart", "id=%s", cart.ID)
	}

	if opts.Order {
		orderSteps, err := r.runOrder(ctx, opts.FirstProduct, opts.ChannelID)
		steps = append(steps, orderSteps...)
		if err != nil {
			return steps, err
		}
	}
	return steps, nil
}

func (r Runner) deleteCart(ctx context.Context, cartID string) error {
	del, err := r.Client.DeleteCart(ctx, cartID)
	if err := check("delete cart", del, err); err != nil {
		return err
	}
	gone, err := r.Client.GetCart(ctx, cartID, bigcommerce.NewFilter())
	if err != nil {
		return fmt.Errorf("get deleted cart: %w", err)
	}
	if gone.Success() {
		return errors.New("delete cart: cart still readable")
	}
	return nil
}

func (r Runner) runOrder(ctx context.Context, productID, channelID int64) ([]Step, error) {
	var steps []Step
	c := r.Client

	created, err := c.CreateOrder(ctx, bigcommerce.OrderCreate{
		BillingAddress: bigcommerce.Address{
			FirstName: "Smoke", LastName: "Test", Street1: "1 Main St", City: "Austin",
			State: "Texas", Zip: "78701", Country: "United States", CountryISO2: "US",
			Email: "smoke@example.com",
		},
		Products:        []bigcommerce.OrderProductCreate{{ProductID: productID, Quantity: 1}},
		ChannelID:       channelID,
		StaffNotes:      "created by smoke run",
		ExternalSource:  "smoke",
		ExternalOrderID: uuid.NewString(),
	})
	if err := check("create order", created, err); err != nil {
		return steps, err
	}
	orderID := created.Data.ID
	r.record(ctx, ledger.KindOrder, strconv.FormatInt(orderID, 10))
	if channelID > 0 && created.Data.ChannelID != channelID {
		return steps, fmt.Errorf("create order: channel=%d, want %d", created.Data.ChannelID, channelID)
	}
	steps = append(steps, Step{Name: "create order", Detail: fmt.Sprintf("id=%d status=%s", orderID, created.Data.Status)})

	full, err := c.GetOrderWithConsignments(ctx, orderID)
	if err := check("get order", full, err); err != nil {
		return steps, err
	}
	if len(full.Data.Consignments) == 0 || len(full.Data.Consignments[0].Shipping) == 0 {
		return steps, errors.New("get order: no shipping consignment")
	}
	consignment := full.Data.Consignments[0].Shipping[0]
	items := make([]bigcommerce.OrderShipmentItem, 0, len(consignment.LineItems))
	for _, l := range consignment.LineItems {
		items = append(items, bigcommerce.OrderShipmentItem{OrderProductID: l.ID, Quantity: l.Quantity})
	}

	shipped, err := c.CreateOrderShipment(ctx, orderID, bigcommerce.OrderShipmentCreate{
		OrderAddressID: consignment.ID,
		TrackingNumber: "SMOKE-" + strconv.FormatInt(orderID, 10),
		Items:          items,
	})
	if err := check("create shipment", shipped, err); err != nil {
		return steps, err
	}
	steps = append(steps, Step{Name: "create shipment", Detail: fmt.Sprintf("id=%d items=%d", shipped.Data.ID, len(items))})

	cancelled, err := c.CancelOrder(ctx, orderID)
	if err := check("cancel order", cancelled, err); err != nil {
		return steps, err
	}
	steps = append(steps, Step{Name: "cancel order", Detail: fmt.Sprintf("id=%d status=%s", orderID, cancelled.Data.Status)})
	return steps, nil
}

// Cleanup removes carts and cancels orders recorded for the client's store.
// Resources already gone upstream are marked cleaned as well.
func (r Runner) Cleanup(ctx context.Context, pending Pending) (int, error) {
	hash := r.Client.StoreHash
	list, err := pending.ListPending(ctx, hash)
	if err != nil {
		return 0, err
	}
	cleaned := 0
	for _, res := range list {
		var status int
		switch res.Kind {
		case ledger.KindCart:
			del, err := r.Client.DeleteCart(ctx, res.RemoteID)
			if err != nil {
				return cleaned, err
			}
			status = del.StatusCode
		case ledger.KindOrder:
			id, err := strconv.ParseInt(res.RemoteID, 10, 64)
			if err != nil {
				return cleaned, fmt.Errorf("ledger order id %q: %w", res.RemoteID, err)
			}
			cancelled, err := r.Client.CancelOrder(ctx, id)
			if err != nil {
				return cleaned, err
			}
			status = cancelled.StatusCode
		default:
			continue
		}
		if status >= 400 && status != 404 {
			r.logger().Warn("cleanup failed", zap.String("kind", string(res.Kind)), zap.String("id", res.RemoteID), zap.Int("status", status))
			continue
		}
		if err := pending.MarkCleaned(ctx, res.ID); err != nil {
			return cleaned, err
		}
		cleaned++
	}
	return cleaned, nil
}

func (r Runner) record(ctx context.Context, kind ledger.Kind, id string) {
	if r.Recorder == nil {
		return
	}
	if err := r.Recorder.Record(ctx, r.Client.StoreHash, kind, id); err != nil {
		r.logger().Warn("ledger record failed", zap.String("kind", string(kind)), zap.String("id", id), zap.Error(err))
	}
}

func (r Runner) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

type outcome interface {
	Success() bool
	Error() string
}

func check(step string, res outcome, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	if !res.Success() {
		return fmt.Errorf("%s: %s", step, res.Error())
	}
	return nil
}

func expectLines(c bigcommerce.Cart, n int) error {
	if got := len(c.LineItems.PhysicalItems); got != n {
		return fmt.Errorf("expected %d physical items, got %d", n, got)
	}
	return nil
}

func lineQuantity(c bigcommerce.Cart, lineID string) int {
	for _, l := range c.LineItems.PhysicalItems {
		if l.ID == lineID {
			return l.Quantity
		}
	}
	return 0
}
