package actor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stagehand/internal/browser"
	"github.com/xkilldash9x/stagehand/internal/browser/parser"
	"github.com/xkilldash9x/stagehand/internal/config"
	"github.com/xkilldash9x/stagehand/internal/fixtures"
)

// ErrNoBrowser is returned by page operations before OpensBrowser or after
// ClosesBrowser.
var ErrNoBrowser = errors.New("actor has no open browser")

// Storefront structure the actor relies on. The text content it looks for is
// passed in by the scenarios.
const (
	cartIconSelector     = `[data-icon="shopping-cart"]`
	cartIconSVGSelector  = `svg[data-icon="shopping-cart"]`
	cartBadgeSelector    = ".shopping_cart_badge"
	inventoryItemClass   = ".inventory_item"
	cartItemClass        = ".cart_item"
	itemPriceClass       = ".inventory_item_price"
	itemQuantitySelector = `[class*="quantity"]`
	subtotalLabelClass   = ".summary_subtotal_label"
	taxLabelClass        = ".summary_tax_label"
	totalLabelClass      = ".summary_total_label"
	addToCartText        = "Add to cart"
)

// StorefrontOptions configures a StorefrontActor. Empty credentials fall back
// to the storefront section of the configuration.
type StorefrontOptions struct {
	Options
	Username string
	Password string
}

// CartItem is a cart line as the storefront renders it.
type CartItem struct {
	Qty     int
	Product fixtures.Product
}

// StorefrontActor interacts with the web shop through a browser page. Most
// queries are scoped to the current ancestor selector; the ones that are not
// say so in their documentation.
//
// A StorefrontActor performs one operation at a time and must not be shared
// between goroutines.
type StorefrontActor struct {
	*Actor

	Username string
	Password string

	baseURL  *url.URL
	browsers browser.Provider
	page     browser.Page
	ancestor string
}

// NewStorefrontActor builds a storefront actor. No browser is opened until
// OpensBrowser.
func NewStorefrontActor(name string, cfg config.Interface, browsers browser.Provider, opts StorefrontOptions) (*StorefrontActor, error) {
	if browsers == nil {
		return nil, fmt.Errorf("storefront actor %q: browser provider is required", name)
	}
	base, err := url.Parse(cfg.Targets().StorefrontURL)
	if err != nil {
		return nil, fmt.Errorf("storefront actor %q: invalid storefront url: %w", name, err)
	}
	if opts.SeedOverride == "" {
		opts.SeedOverride = cfg.Chance().Seed
	}
	a, err := New(name, opts.Options)
	if err != nil {
		return nil, err
	}

	creds := cfg.Storefront()
	s := &StorefrontActor{
		Actor:    a,
		Username: opts.Username,
		Password: opts.Password,
		baseURL:  base,
		browsers: browsers,
	}
	if s.Username == "" {
		s.Username = creds.Username
	}
	if s.Password == "" {
		s.Password = creds.Password
	}
	return s, nil
}

// Ancestor returns the selector queries are currently scoped to. Empty means
// the whole page.
func (s *StorefrontActor) Ancestor() string { return s.ancestor }

// SetAncestor scopes subsequent queries to selector. The selector is checked
// against the CSS grammar immediately; on error the previous scope is kept.
// An empty selector removes the scope.
func (s *StorefrontActor) SetAncestor(selector string) error {
	if selector != "" {
		if err := parser.Validate(selector); err != nil {
			return fmt.Errorf("actor %q: ancestor: %w", s.name, err)
		}
	}
	s.ancestor = selector
	s.logger.Debug("Ancestor set.", zap.String("ancestor", selector))
	return nil
}

// OpensBrowser acquires the page the actor works in.
func (s *StorefrontActor) OpensBrowser(ctx context.Context) error {
	if s.page != nil {
		return fmt.Errorf("actor %q already has a browser open", s.name)
	}
	p, err := s.browsers.OpenPage(ctx)
	if err != nil {
		return fmt.Errorf("actor %q failed to open browser: %w", s.name, err)
	}
	s.page = p
	return nil
}

// ClosesBrowser releases the page. It is a no-op when nothing is open.
func (s *StorefrontActor) ClosesBrowser(ctx context.Context) error {
	if s.page == nil {
		return nil
	}
	p := s.page
	s.page = nil
	if err := s.browsers.ClosePage(ctx, p); err != nil {
		return fmt.Errorf("actor %q failed to close browser: %w", s.name, err)
	}
	return nil
}

func (s *StorefrontActor) scope() browser.Locator {
	if s.ancestor == "" {
		return browser.Root()
	}
	return browser.CSS(s.ancestor)
}

func (s *StorefrontActor) current() (browser.Page, error) {
	if s.page == nil {
		return nil, fmt.Errorf("actor %q: %w", s.name, ErrNoBrowser)
	}
	return s.page, nil
}

// Visits navigates to target, resolved against the storefront URL.
func (s *StorefrontActor) Visits(ctx context.Context, target string) error {
	p, err := s.current()
	if err != nil {
		return err
	}
	ref, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("actor %q: invalid url %q: %w", s.name, target, err)
	}
	return p.Navigate(ctx, s.baseURL.ResolveReference(ref).String())
}

// TypesInput fills the input with the given placeholder.
func (s *StorefrontActor) TypesInput(ctx context.Context, placeholder, value string) error {
	p, err := s.current()
	if err != nil {
		return err
	}
	return p.Fill(ctx, s.scope().ByPlaceholder(placeholder), value)
}

// ClicksButton clicks the button whose accessible name matches label.
func (s *StorefrontActor) ClicksButton(ctx context.Context, label string) error {
	p, err := s.current()
	if err != nil {
		return err
	}
	return p.Click(ctx, s.scope().ByRole("button", label))
}

// ClicksContent clicks the element showing text.
func (s *StorefrontActor) ClicksContent(ctx context.Context, text string) error {
	p, err := s.current()
	if err != nil {
		return err
	}
	return p.Click(ctx, s.scope().ByText(text))
}

func (s *StorefrontActor) ClicksShoppingCartIcon(ctx context.Context) error {
	p, err := s.current()
	if err != nil {
		return err
	}
	return p.Click(ctx, s.scope().Locate(cartIconSelector))
}

// AddsProductToCart clicks "Add to cart" on the inventory item for product.
func (s *StorefrontActor) AddsProductToCart(ctx context.Context, product string) error {
	p, err := s.current()
	if err != nil {
		return err
	}
	item := s.scope().Locate(inventoryItemClass).Filter(product)
	return p.Click(ctx, item.ByText(addToCartText))
}

// SeesCartBadgeCount asserts the cart badge shows count. Not scoped.
func (s *StorefrontActor) SeesCartBadgeCount(ctx context.Context, count int) error {
	p, err := s.current()
	if err != nil {
		return err
	}
	return p.ExpectText(ctx, browser.CSS(cartBadgeSelector), strconv.Itoa(count))
}

// SeesCartItem asserts a cart line for item is visible with its price and
// quantity.
func (s *StorefrontActor) SeesCartItem(ctx context.Context, item CartItem) error {
	p, err := s.current()
	if err != nil {
		return err
	}
	line := s.scope().Locate(cartItemClass).Filter(item.Product.Name)
	if err := p.ExpectVisible(ctx, line); err != nil {
		return err
	}
	if err := p.ExpectContainsText(ctx, line.Locate(itemPriceClass), item.Product.Price.String()); err != nil {
		return err
	}
	return p.ExpectContainsText(ctx, line.Locate(itemQuantitySelector), strconv.Itoa(item.Qty))
}

// SeesCartTotals asserts the checkout overview amounts. Not scoped.
func (s *StorefrontActor) SeesCartTotals(ctx context.Context, totals fixtures.Totals) error {
	p, err := s.current()
	if err != nil {
		return err
	}
	checks := []struct {
		selector string
		text     string
	}{
		{subtotalLabelClass, "Item total: " + totals.ItemTotal.Label()},
		{taxLabelClass, "Tax: " + totals.TaxTotal.Label()},
		{totalLabelClass, "Total: " + totals.GrandTotal.Label()},
	}
	for _, c := range checks {
		if err := p.ExpectText(ctx, browser.CSS(c.selector), c.text); err != nil {
			return err
		}
	}
	return nil
}

// SeesContent asserts text is visible somewhere on the page. Not scoped.
func (s *StorefrontActor) SeesContent(ctx context.Context, text string) error {
	p, err := s.current()
	if err != nil {
		return err
	}
	return p.ExpectVisible(ctx, browser.Root().ByText(text))
}

// SeesShoppingCartIcon asserts the cart icon is visible. Not scoped.
func (s *StorefrontActor) SeesShoppingCartIcon(ctx context.Context) error {
	p, err := s.current()
	if err != nil {
		return err
	}
	return p.ExpectVisible(ctx, browser.CSS(cartIconSVGSelector))
}

// SeesInputWithValue asserts the input with placeholder holds value. Not scoped.
func (s *StorefrontActor) SeesInputWithValue(ctx context.Context, placeholder, value string) error {
	p, err := s.current()
	if err != nil {
		return err
	}
	return p.ExpectValue(ctx, browser.Root().ByPlaceholder(placeholder), value)
}
