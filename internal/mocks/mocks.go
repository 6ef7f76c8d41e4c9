// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/stagehand/internal/browser"
	"github.com/xkilldash9x/stagehand/internal/config"
	"github.com/xkilldash9x/stagehand/internal/network"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

var _ config.Interface = (*MockConfig)(nil)

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Browser() config.BrowserConfig {
	args := m.Called()
	return args.Get(0).(config.BrowserConfig)
}

func (m *MockConfig) Network() config.NetworkConfig {
	args := m.Called()
	return args.Get(0).(config.NetworkConfig)
}

func (m *MockConfig) Targets() config.TargetsConfig {
	args := m.Called()
	return args.Get(0).(config.TargetsConfig)
}

func (m *MockConfig) Storefront() config.StorefrontConfig {
	args := m.Called()
	return args.Get(0).(config.StorefrontConfig)
}

func (m *MockConfig) Weather() config.WeatherConfig {
	args := m.Called()
	return args.Get(0).(config.WeatherConfig)
}

func (m *MockConfig) Chance() config.ChanceConfig {
	args := m.Called()
	return args.Get(0).(config.ChanceConfig)
}

func (m *MockConfig) Runner() config.RunnerConfig {
	args := m.Called()
	return args.Get(0).(config.RunnerConfig)
}

// --- Setters ---

func (m *MockConfig) SetChanceSeed(seed string)   { m.Called(seed) }
func (m *MockConfig) SetRunnerTags(tags []string) { m.Called(tags) }
func (m *MockConfig) SetBrowserHeadless(b bool)   { m.Called(b) }

// -- Page Mock --

// MockPage mocks browser.Page. Locators are matched by value, so
// expectations can be written with the same builders the actor uses.
type MockPage struct {
	mock.Mock
}

var _ browser.Page = (*MockPage)(nil)

func (m *MockPage) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *MockPage) Fill(ctx context.Context, loc browser.Locator, value string) error {
	return m.Called(ctx, loc, value).Error(0)
}

func (m *MockPage) Click(ctx context.Context, loc browser.Locator) error {
	return m.Called(ctx, loc).Error(0)
}

func (m *MockPage) ExpectVisible(ctx context.Context, loc browser.Locator) error {
	return m.Called(ctx, loc).Error(0)
}

func (m *MockPage) ExpectText(ctx context.Context, loc browser.Locator, text string) error {
	return m.Called(ctx, loc, text).Error(0)
}

func (m *MockPage) ExpectContainsText(ctx context.Context, loc browser.Locator, text string) error {
	return m.Called(ctx, loc, text).Error(0)
}

func (m *MockPage) ExpectValue(ctx context.Context, loc browser.Locator, value string) error {
	return m.Called(ctx, loc, value).Error(0)
}

func (m *MockPage) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// -- Browser Provider Mock --

// MockProvider mocks browser.Provider.
type MockProvider struct {
	mock.Mock
}

var _ browser.Provider = (*MockProvider)(nil)

func (m *MockProvider) OpenPage(ctx context.Context) (browser.Page, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(browser.Page), args.Error(1)
}

func (m *MockProvider) ClosePage(ctx context.Context, p browser.Page) error {
	return m.Called(ctx, p).Error(0)
}

// -- HTTP Fetcher Mock --

// MockFetcher mocks anything that fetches a URL into a network.Response.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (*network.Response, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*network.Response), args.Error(1)
}
