package suites

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stagehand/internal/actor"
	"github.com/xkilldash9x/stagehand/internal/fixtures"
	"github.com/xkilldash9x/stagehand/internal/scenario"
)

// Checkout logs in to the storefront, buys three random products and checks
// every page of the checkout flow. Steps share one page and run serially.
func Checkout(d Deps) (*scenario.Suite, error) {
	hubert, err := actor.NewStorefrontActor("Hubert Farnsworth", d.Config, d.Browsers, actor.StorefrontOptions{
		Options: actor.Options{Logger: d.Logger},
	})
	if err != nil {
		return nil, err
	}

	firstName, lastName, _ := strings.Cut(hubert.Name(), " ")
	postcode := hubert.Postcode()

	// One pick per adjacent pair of the catalogue; drawing from the whole
	// catalogue trips a storefront bug.
	picked := []fixtures.Product{
		actor.PickOne(hubert, fixtures.Products[0:2]),
		actor.PickOne(hubert, fixtures.Products[2:4]),
		actor.PickOne(hubert, fixtures.Products[4:6]),
	}
	totals := fixtures.CartTotals(picked...)

	hubert.Logger().Info("Checkout data drawn.",
		zap.String("postcode", postcode),
		zap.Strings("products", productNames(picked)),
	)

	seesCartItems := func(ctx context.Context) error {
		for _, p := range picked {
			if err := hubert.SeesCartItem(ctx, actor.CartItem{Qty: 1, Product: p}); err != nil {
				return err
			}
		}
		return nil
	}

	return &scenario.Suite{
		Name:      "Hubert visits the storefront, logs in, and completes the checkout flow with random products",
		Tags:      []string{TagWeb},
		Serial:    true,
		BeforeAll: hubert.OpensBrowser,
		AfterAll:  hubert.ClosesBrowser,
		Steps: []scenario.Step{
			{Name: "logs in to the platform", Run: func(ctx context.Context) error {
				if err := hubert.SetAncestor(".login_wrapper"); err != nil {
					return err
				}
				if err := hubert.Visits(ctx, "v1"); err != nil {
					return err
				}
				if err := hubert.TypesInput(ctx, "Username", hubert.Username); err != nil {
					return err
				}
				if err := hubert.TypesInput(ctx, "Password", hubert.Password); err != nil {
					return err
				}
				if err := hubert.ClicksButton(ctx, "Login"); err != nil {
					return err
				}
				if err := hubert.SeesShoppingCartIcon(ctx); err != nil {
					return err
				}
				return hubert.SeesContent(ctx, "Products")
			}},
			{Name: "adds some random products to the cart and confirms badge count", Run: func(ctx context.Context) error {
				if err := hubert.SetAncestor("#inventory_container"); err != nil {
					return err
				}
				for _, p := range picked {
					if err := hubert.AddsProductToCart(ctx, p.Name); err != nil {
						return err
					}
				}
				return hubert.SeesCartBadgeCount(ctx, len(picked))
			}},
			{Name: "navigates to cart and confirms item quantities and prices are correct", Run: func(ctx context.Context) error {
				if err := hubert.SetAncestor("#contents_wrapper"); err != nil {
					return err
				}
				if err := hubert.ClicksShoppingCartIcon(ctx); err != nil {
					return err
				}
				if err := hubert.SeesContent(ctx, "Your Cart"); err != nil {
					return err
				}
				if err := seesCartItems(ctx); err != nil {
					return err
				}
				return hubert.ClicksContent(ctx, "CHECKOUT")
			}},
			{Name: "enters first name, last name, and postcode before continuing", Run: func(ctx context.Context) error {
				if err := hubert.SeesContent(ctx, "Checkout: Your Information"); err != nil {
					return err
				}
				fields := []struct{ placeholder, value string }{
					{"First Name", firstName},
					{"Last Name", lastName},
					{"Postal Code", postcode},
				}
				for _, f := range fields {
					if err := hubert.TypesInput(ctx, f.placeholder, f.value); err != nil {
						return err
					}
				}
				for _, f := range fields {
					if err := hubert.SeesInputWithValue(ctx, f.placeholder, f.value); err != nil {
						return err
					}
				}
				return hubert.ClicksContent(ctx, "Continue")
			}},
			{Name: "confirms item quantities and prices are correct in cart overview", Run: func(ctx context.Context) error {
				if err := hubert.SeesContent(ctx, "Checkout: Overview"); err != nil {
					return err
				}
				return seesCartItems(ctx)
			}},
			{Name: "confirms item total and total including tax is correct", Run: func(ctx context.Context) error {
				return hubert.SeesCartTotals(ctx, totals)
			}},
			{Name: "completes the checkout flow and sees confirmation message", Run: func(ctx context.Context) error {
				if err := hubert.ClicksContent(ctx, "Finish"); err != nil {
					return err
				}
				if err := hubert.SeesContent(ctx, "Finish"); err != nil {
					return err
				}
				return hubert.SeesContent(ctx, "Thank you for your order")
			}},
		},
	}, nil
}

func productNames(products []fixtures.Product) []string {
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	return names
}
