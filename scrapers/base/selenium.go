package base

import (
	"context"
	"fmt"
	"time"

	"github.com/raushankrgupta/flyer-price-scraper/models"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

// SeleniumBrowser drives Chrome through a local chromedriver. It is the
// fallback engine for hosts where chromedp cannot attach to the browser.
type SeleniumBrowser struct {
	service *selenium.Service
	driver  selenium.WebDriver
	port    int
	settle  time.Duration
}

// NewSeleniumBrowser starts chromedriver and opens a session
func NewSeleniumBrowser(opts Options) (*SeleniumBrowser, error) {
	port, err := chromeDriverPorts.Acquire()
	if err != nil {
		return nil, fmt.Errorf("port error: %w", err)
	}

	service, err := selenium.NewChromeDriverService(opts.ChromeDriverPath, port)
	if err != nil {
		chromeDriverPorts.Release(port)
		return nil, fmt.Errorf("error starting Chrome driver service: %w", err)
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{
		Args: []string{
			"--headless=new",
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
			"--disable-gpu",
			"--window-size=1920,1080",
			fmt.Sprintf("--user-agent=%s", UserAgent),
		},
		ExcludeSwitches: []string{"enable-automation"},
	})

	driver, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", port))
	if err != nil {
		service.Stop()
		chromeDriverPorts.Release(port)
		return nil, fmt.Errorf("error creating WebDriver: %w", err)
	}
	if opts.NavigationTimeout > 0 {
		if err := driver.SetPageLoadTimeout(opts.NavigationTimeout); err != nil {
			driver.Quit()
			service.Stop()
			chromeDriverPorts.Release(port)
			return nil, fmt.Errorf("set page load timeout: %w", err)
		}
	}

	return &SeleniumBrowser{
		service: service,
		driver:  driver,
		port:    port,
		settle:  opts.SettleDelay,
	}, nil
}

func (b *SeleniumBrowser) Load(ctx context.Context, url string) error {
	if err := b.driver.Get(url); err != nil {
		return fmt.Errorf("navigation error: %w", err)
	}
	return sleepCtx(ctx, b.settle)
}

func (b *SeleniumBrowser) Images(ctx context.Context) ([]models.CandidateImage, error) {
	raw, err := b.evaluate("return " + imagesScript)
	if err != nil {
		return nil, err
	}
	pageURL, err := b.driver.CurrentURL()
	if err != nil {
		return nil, fmt.Errorf("current url: %w", err)
	}
	return decodeImages(raw, pageURL)
}

func (b *SeleniumBrowser) Links(ctx context.Context, selector string) ([]string, error) {
	raw, err := b.evaluate("return " + linksScript(selector))
	if err != nil {
		return nil, err
	}
	return decodeLinks(raw)
}

func (b *SeleniumBrowser) evaluate(script string) (string, error) {
	out, err := b.driver.ExecuteScript(script, nil)
	if err != nil {
		return "", fmt.Errorf("script error: %w", err)
	}
	raw, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("script returned %T, want string", out)
	}
	return raw, nil
}

func (b *SeleniumBrowser) Close() error {
	defer chromeDriverPorts.Release(b.port)
	quitErr := b.driver.Quit()
	if err := b.service.Stop(); err != nil {
		return err
	}
	return quitErr
}
