package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"
)

// Page is the slice of browser page behavior the scraper needs. It
// exists so classification, scrolling and extraction are testable
// without a live browser.
type Page interface {
	// Eval runs a JavaScript expression and returns its result.
	Eval(js string) (gson.JSON, error)

	// HasText reports whether the page contains text matching the
	// given regular expression within the timeout. A timeout is a
	// negative answer, not an error.
	HasText(pattern string, timeout time.Duration) (bool, error)

	// URL returns the page's current URL.
	URL() (string, error)
}

// rodPage adapts a rod page to the Page interface
type rodPage struct {
	page *rod.Page
}

// NewPage wraps a rod page
func NewPage(page *rod.Page) Page {
	return &rodPage{page: page}
}

func (p *rodPage) Eval(js string) (gson.JSON, error) {
	result, err := p.page.Eval(js)
	if err != nil {
		return gson.New(nil), err
	}
	return result.Value, nil
}

func (p *rodPage) HasText(pattern string, timeout time.Duration) (bool, error) {
	_, err := p.page.Timeout(timeout).ElementR("*", pattern)
	if err != nil {
		if isProbeTimeout(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (p *rodPage) URL() (string, error) {
	info, err := p.page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// isProbeTimeout distinguishes "not on the page within the deadline"
// from a genuine page fault.
func isProbeTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var notFound *rod.ElementNotFoundError
	return errors.As(err, &notFound)
}
