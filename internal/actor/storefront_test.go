package actor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/stagehand/internal/browser"
	"github.com/xkilldash9x/stagehand/internal/browser/parser"
	"github.com/xkilldash9x/stagehand/internal/config"
	"github.com/xkilldash9x/stagehand/internal/fixtures"
	"github.com/xkilldash9x/stagehand/internal/mocks"
)

func newStorefrontFixture(t *testing.T) (*StorefrontActor, *mocks.MockProvider, *mocks.MockPage) {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.StorefrontCfg = config.StorefrontConfig{Username: "standard_user", Password: "secret_sauce"}
	cfg.ChanceCfg.Seed = fixedSeed

	provider := new(mocks.MockProvider)
	page := new(mocks.MockPage)
	s, err := NewStorefrontActor("Hubert Farnsworth", cfg, provider, StorefrontOptions{
		Options: Options{Logger: zaptest.NewLogger(t)},
	})
	require.NoError(t, err)
	return s, provider, page
}

func openBrowser(t *testing.T, s *StorefrontActor, provider *mocks.MockProvider, page *mocks.MockPage) {
	t.Helper()
	provider.On("OpenPage", mock.Anything).Return(page, nil).Once()
	require.NoError(t, s.OpensBrowser(context.Background()))
}

func TestNewStorefrontActor_Defaults(t *testing.T) {
	s, _, _ := newStorefrontFixture(t)
	assert.Equal(t, "standard_user", s.Username)
	assert.Equal(t, "secret_sauce", s.Password)
	assert.Equal(t, fixedSeed, s.Seed().String(), "seed comes from configuration")
	assert.Empty(t, s.Ancestor())

	cfg := config.NewDefaultConfig()
	explicit, err := NewStorefrontActor("Fry", cfg, new(mocks.MockProvider), StorefrontOptions{
		Options:  Options{Logger: zaptest.NewLogger(t)},
		Username: "problem_user",
		Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "problem_user", explicit.Username)
	assert.Equal(t, "pw", explicit.Password)

	_, err = NewStorefrontActor("Fry", cfg, nil, StorefrontOptions{})
	assert.Error(t, err)
}

func TestStorefrontActor_InvalidAncestorFailsBeforeAnyQuery(t *testing.T) {
	s, provider, page := newStorefrontFixture(t)
	openBrowser(t, s, provider, page)
	require.NoError(t, s.SetAncestor(".login_wrapper"))

	err := s.SetAncestor("div >> bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrInvalidSelector)
	assert.Equal(t, ".login_wrapper", s.Ancestor(), "previous scope is kept")

	page.AssertExpectations(t)
	assert.Empty(t, page.Calls, "no page operation may run")
}

func TestStorefrontActor_ScopedOperations(t *testing.T) {
	ctx := context.Background()
	s, provider, page := newStorefrontFixture(t)
	openBrowser(t, s, provider, page)
	require.NoError(t, s.SetAncestor(".login_wrapper"))

	scope := browser.CSS(".login_wrapper")
	page.On("Navigate", ctx, "https://www.saucedemo.com/v1").Return(nil).Once()
	page.On("Fill", ctx, scope.ByPlaceholder("Username"), "standard_user").Return(nil).Once()
	page.On("Click", ctx, scope.ByRole("button", "Login")).Return(nil).Once()
	page.On("Click", ctx, scope.ByText("CHECKOUT")).Return(nil).Once()
	page.On("Click", ctx, scope.Locate(`[data-icon="shopping-cart"]`)).Return(nil).Once()
	page.On("Click", ctx, scope.Locate(".inventory_item").Filter("Sauce Labs Onesie").ByText("Add to cart")).Return(nil).Once()

	require.NoError(t, s.Visits(ctx, "v1"))
	require.NoError(t, s.TypesInput(ctx, "Username", s.Username))
	require.NoError(t, s.ClicksButton(ctx, "Login"))
	require.NoError(t, s.ClicksContent(ctx, "CHECKOUT"))
	require.NoError(t, s.ClicksShoppingCartIcon(ctx))
	require.NoError(t, s.AddsProductToCart(ctx, "Sauce Labs Onesie"))

	page.AssertExpectations(t)
}

func TestStorefrontActor_UnscopedAssertions(t *testing.T) {
	ctx := context.Background()
	s, provider, page := newStorefrontFixture(t)
	openBrowser(t, s, provider, page)
	require.NoError(t, s.SetAncestor("#inventory_container"))

	page.On("ExpectText", ctx, browser.CSS(".shopping_cart_badge"), "3").Return(nil).Once()
	page.On("ExpectVisible", ctx, browser.Root().ByText("Products")).Return(nil).Once()
	page.On("ExpectVisible", ctx, browser.CSS(`svg[data-icon="shopping-cart"]`)).Return(nil).Once()
	page.On("ExpectValue", ctx, browser.Root().ByPlaceholder("Postal Code"), "SW1A 2AA").Return(nil).Once()

	require.NoError(t, s.SeesCartBadgeCount(ctx, 3))
	require.NoError(t, s.SeesContent(ctx, "Products"))
	require.NoError(t, s.SeesShoppingCartIcon(ctx))
	require.NoError(t, s.SeesInputWithValue(ctx, "Postal Code", "SW1A 2AA"))

	page.AssertExpectations(t)
}

func TestStorefrontActor_SeesCartItem(t *testing.T) {
	ctx := context.Background()
	s, provider, page := newStorefrontFixture(t)
	openBrowser(t, s, provider, page)
	require.NoError(t, s.SetAncestor("#contents_wrapper"))

	backpack := fixtures.Products[0]
	line := browser.CSS("#contents_wrapper").Locate(".cart_item").Filter(backpack.Name)
	page.On("ExpectVisible", ctx, line).Return(nil).Once()
	page.On("ExpectContainsText", ctx, line.Locate(".inventory_item_price"), "29.99").Return(nil).Once()
	page.On("ExpectContainsText", ctx, line.Locate(`[class*="quantity"]`), "1").Return(nil).Once()

	require.NoError(t, s.SeesCartItem(ctx, CartItem{Qty: 1, Product: backpack}))
	page.AssertExpectations(t)
}

func TestStorefrontActor_SeesCartItemStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	s, provider, page := newStorefrontFixture(t)
	openBrowser(t, s, provider, page)

	fail := &browser.ExpectationError{Locator: ".cart_item", Check: "to be visible", Actual: "0 matches"}
	page.On("ExpectVisible", ctx, mock.Anything).Return(fail).Once()

	err := s.SeesCartItem(ctx, CartItem{Qty: 1, Product: fixtures.Products[1]})
	assert.ErrorIs(t, err, browser.ErrExpectation)
	page.AssertNumberOfCalls(t, "ExpectContainsText", 0)
}

func TestStorefrontActor_SeesCartTotals(t *testing.T) {
	ctx := context.Background()
	s, provider, page := newStorefrontFixture(t)
	openBrowser(t, s, provider, page)

	totals := fixtures.CartTotals(fixtures.Products[:3]...)
	page.On("ExpectText", ctx, browser.CSS(".summary_subtotal_label"), "Item total: $55.97").Return(nil).Once()
	page.On("ExpectText", ctx, browser.CSS(".summary_tax_label"), "Tax: $4.48").Return(nil).Once()
	page.On("ExpectText", ctx, browser.CSS(".summary_total_label"), "Total: $60.45").Return(nil).Once()

	require.NoError(t, s.SeesCartTotals(ctx, totals))
	page.AssertExpectations(t)
}

func TestStorefrontActor_BrowserLifecycle(t *testing.T) {
	ctx := context.Background()
	s, provider, page := newStorefrontFixture(t)

	assert.ErrorIs(t, s.Visits(ctx, "v1"), ErrNoBrowser)
	assert.ErrorIs(t, s.SeesContent(ctx, "Products"), ErrNoBrowser)

	openBrowser(t, s, provider, page)
	assert.Error(t, s.OpensBrowser(ctx), "second open is rejected")

	provider.On("ClosePage", ctx, page).Return(nil).Once()
	require.NoError(t, s.ClosesBrowser(ctx))
	require.NoError(t, s.ClosesBrowser(ctx), "closing twice is a no-op")
	assert.ErrorIs(t, s.ClicksButton(ctx, "Login"), ErrNoBrowser)

	provider.AssertExpectations(t)
}

func TestStorefrontActor_OpenFailure(t *testing.T) {
	s, provider, _ := newStorefrontFixture(t)
	boom := errors.New("chrome not found")
	provider.On("OpenPage", mock.Anything).Return(nil, boom).Once()

	err := s.OpensBrowser(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Visits(context.Background(), "v1"), ErrNoBrowser)
}
