package browser

import (
	"os"
	"runtime"

	"github.com/chromedp/chromedp"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// candidatePaths lists well-known Chrome/Chromium locations per OS.
func candidatePaths(goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "linux":
		return []string{
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/snap/bin/chromium",
			"/opt/google/chrome/google-chrome",
		}
	case "windows":
		return []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			os.Getenv("LOCALAPPDATA") + `\Google\Chrome\Application\chrome.exe`,
		}
	}
	return nil
}

// FindChrome returns the configured path if it exists, else the first
// well-known location found, else "" to let chromedp search $PATH.
func FindChrome(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}
	for _, path := range candidatePaths(runtime.GOOS) {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// allocatorOptions builds the Chrome flags for a container-friendly instance.
func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	width, height := opts.WindowWidth, opts.WindowHeight
	if width <= 0 || height <= 0 {
		width, height = 1280, 900
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("password-store", "basic"),
		chromedp.Flag("use-mock-keychain", true),
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(width, height),
	}

	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Headless)
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	if path := FindChrome(opts.ExecPath); path != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(path))
	}

	return allocOpts
}
