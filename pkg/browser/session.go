package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"reservewatch/pkg/logger"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// NavigationTimeout bounds a single page load.
const NavigationTimeout = 45 * time.Second

// clearedStorage is passed to Storage.clearDataForOrigin.
const clearedStorage = "local_storage,indexeddb,cache_storage,service_workers"

// Element is a handle to a node found by WaitFor.
type Element interface {
	Selector() Selector
}

type nodeElement struct {
	node *cdp.Node
	sel  Selector
}

func (e *nodeElement) Selector() Selector { return e.sel }

// Options configures the Chrome instance behind a session.
type Options struct {
	ExecPath     string
	Headless     bool
	UserAgent    string
	WindowWidth  int
	WindowHeight int
}

// ChromeSession drives a single Chrome tab for the lifetime of the process.
// It is not safe for concurrent use; the poll loop is its only caller.
type ChromeSession struct {
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	lastURL     string

	closeOnce sync.Once
	closed    bool
}

// NewChromeSession starts Chrome and opens a blank tab.
func NewChromeSession(ctx context.Context, opts Options) (*ChromeSession, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocatorOptions(opts)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar.Debugf),
		chromedp.WithErrorf(logger.Sugar.Debugf),
	)

	// The first Run allocates the browser; it must use the tab context itself.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fault("start", err)
	}

	logger.Info("Browser session started",
		zap.Bool("headless", opts.Headless),
		zap.String("exec_path", FindChrome(opts.ExecPath)))

	return &ChromeSession{
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
	}, nil
}

// runContext derives a context from the tab that is also cancelled with ctx
// and, when timeout > 0, expires after timeout.
func (s *ChromeSession) runContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	stop := context.AfterFunc(ctx, cancel)

	timeoutCancel := context.CancelFunc(func() {})
	if timeout > 0 {
		runCtx, timeoutCancel = context.WithTimeout(runCtx, timeout)
	}

	return runCtx, func() {
		timeoutCancel()
		stop()
		cancel()
	}
}

// Open navigates the tab to rawURL and waits for the load event.
func (s *ChromeSession) Open(ctx context.Context, rawURL string) error {
	if s.closed {
		return ErrSessionClosed
	}

	runCtx, cancel := s.runContext(ctx, NavigationTimeout)
	defer cancel()

	var location string
	if err := chromedp.Run(runCtx, chromedp.Navigate(rawURL), chromedp.Location(&location)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fault("open", err)
	}

	// after redirects the page may live on another origin
	if location == "" {
		location = rawURL
	}
	s.lastURL = location
	logger.FromContext(ctx).Debug("Page opened", zap.String("url", rawURL), zap.String("location", location))
	return nil
}

// URL returns the location reached by the last successful Open.
func (s *ChromeSession) URL() string {
	return s.lastURL
}

// ClearClientState drops storage the page could use to restore a previous
// selection. Before the first Open there is nothing to clear.
func (s *ChromeSession) ClearClientState(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.lastURL == "" {
		return nil
	}

	origin, err := originOf(s.lastURL)
	if err != nil {
		return fault("clear state", err)
	}

	runCtx, cancel := s.runContext(ctx, NavigationTimeout)
	defer cancel()

	err = chromedp.Run(runCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return storage.ClearDataForOrigin(origin, clearedStorage).Do(ctx)
		}),
		// sessionStorage is per tab and not covered by clearDataForOrigin.
		chromedp.Evaluate(`(function(){ try { window.sessionStorage.clear(); } catch (e) {} })()`, nil),
	)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fault("clear state", err)
	}

	logger.FromContext(ctx).Debug("Client state cleared", zap.String("origin", origin))
	return nil
}

// WaitFor polls the DOM until an element matches sel. It returns ErrNotFound
// when timeout elapses first.
func (s *ChromeSession) WaitFor(ctx context.Context, sel Selector, timeout time.Duration) (Element, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	runCtx, cancel := s.runContext(ctx, timeout)
	defer cancel()

	var nodes []*cdp.Node
	err := chromedp.Run(runCtx, chromedp.Nodes(sel.XPath, &nodes, chromedp.BySearch))
	switch {
	case err == nil && len(nodes) > 0:
		return &nodeElement{node: nodes[0], sel: sel}, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err == nil, errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: %s after %v", ErrNotFound, sel, timeout)
	default:
		return nil, fault("wait for "+sel.String(), err)
	}
}

// Click invokes element.click() in the page rather than dispatching a pointer
// event, so off-screen controls are clickable too.
func (s *ChromeSession) Click(ctx context.Context, el Element) error {
	if s.closed {
		return ErrSessionClosed
	}

	node, ok := el.(*nodeElement)
	if !ok || node.node == nil {
		return fault("click", fmt.Errorf("element %T was not produced by this session", el))
	}

	runCtx, cancel := s.runContext(ctx, NavigationTimeout)
	defer cancel()

	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(node.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = cdpruntime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		_, exception, err := cdpruntime.CallFunctionOn(`function() { this.click(); }`).
			WithObjectID(obj.ObjectID).
			Do(ctx)
		if err != nil {
			return err
		}
		if exception != nil {
			return fmt.Errorf("click threw: %s", exception.Text)
		}
		return nil
	}))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fault("click "+node.sel.String(), err)
	}
	return nil
}

// Close shuts the browser down and removes its temporary profile. Safe to call
// more than once.
func (s *ChromeSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed = true
		if cerr := chromedp.Cancel(s.tabCtx); cerr != nil && !errors.Is(cerr, context.Canceled) {
			err = fault("close", cerr)
		}
		s.tabCancel()
		s.allocCancel()
		logger.Info("Browser session closed")
	})
	return err
}

func originOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q has no origin", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
