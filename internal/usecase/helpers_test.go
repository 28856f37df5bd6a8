package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/gateway"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/storage/memory"
)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []model.Notice
	err     error
}

func (n *recordingNotifier) Deliver(_ context.Context, notice model.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

func (n *recordingNotifier) kinds() []model.NoticeKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]model.NoticeKind, 0, len(n.notices))
	for _, notice := range n.notices {
		kinds = append(kinds, notice.Kind)
	}
	return kinds
}

type failingGateway struct{ err error }

func (g failingGateway) Process(context.Context, gateway.Charge) (gateway.Receipt, error) {
	return gateway.Receipt{Reference: "ref-1", ResponseCode: "declined"}, g.err
}

type fixture struct {
	store    *memory.Store
	notifier *recordingNotifier
	uc       *OrderUseCase
}

func defaultSettings() model.Settings {
	return model.Settings{TrackInventoryLevels: true, DefaultCountryID: memory.CountryUSA}
}

func newFixture(t *testing.T, settings model.Settings, gw gateway.Gateway) *fixture {
	t.Helper()
	if gw == nil {
		gw = gateway.NewBogus()
	}
	store := memory.New(memory.DemoCatalog())
	notifier := &recordingNotifier{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	uc := NewOrderUseCase(store, gw, notifier, pkgAuth.NewBcryptGuestTokens(bcrypt.MinCost), settings, nil, logger)
	return &fixture{store: store, notifier: notifier, uc: uc}
}

func usAddress() *model.Address {
	return &model.Address{
		Firstname: "John", Lastname: "Doe", Address1: "10 Lovely Street", City: "Herndon",
		Zipcode: "20170", Phone: "555-555-0199", CountryID: memory.CountryUSA,
	}
}

// guestCart creates a guest order holding qty units of variant.
func (f *fixture) guestCart(t *testing.T, variantID int64, qty int) (string, Actor) {
	t.Helper()
	ctx := context.Background()
	created, err := f.uc.Create(ctx, Actor{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	actor := Actor{GuestToken: created.GuestToken}
	if _, err := f.uc.AddLineItem(ctx, actor, created.Order.Number, variantID, qty); err != nil {
		t.Fatalf("add line item: %v", err)
	}
	return created.Order.Number, actor
}

func (f *fixture) advance(t *testing.T, actor Actor, number string, want model.OrderState) *AdvanceResult {
	t.Helper()
	res, err := f.uc.Advance(context.Background(), actor, number)
	if err != nil {
		t.Fatalf("advance to %s: %v", want, err)
	}
	if res.Order.State != want {
		t.Fatalf("expected state %s, got %s", want, res.Order.State)
	}
	return res
}

// checkoutToPayment walks a cart through address and delivery.
func (f *fixture) checkoutToPayment(t *testing.T, actor Actor, number string) {
	t.Helper()
	ctx := context.Background()
	f.advance(t, actor, number, model.OrderStateAddress)
	if _, err := f.uc.SetAddress(ctx, actor, number, AddressInput{Email: "buyer@example.com", Bill: usAddress(), UseBilling: true}); err != nil {
		t.Fatalf("set address: %v", err)
	}
	f.advance(t, actor, number, model.OrderStateDelivery)
	if _, err := f.uc.SelectShippingMethod(ctx, actor, number, 1); err != nil {
		t.Fatalf("select shipping: %v", err)
	}
	f.advance(t, actor, number, model.OrderStatePayment)
}

func (f *fixture) pay(t *testing.T, actor Actor, number, card string) {
	t.Helper()
	_, err := f.uc.AddPayment(context.Background(), actor, number, PaymentInput{
		MethodID: 1, Source: model.PaymentSource{Kind: model.SourceCard, Token: card},
	})
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}
