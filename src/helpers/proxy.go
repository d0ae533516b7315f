package helpers

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"deviation-dashboard/src/logger"
)

// -----------------------------------------------------------------------------

type ProxyManager struct {
	proxies    []string
	userAgents []string
	index      int
	mu         sync.Mutex
	logger     *logger.Logger
}

// -----------------------------------------------------------------------------

// NewProxyManager validates and formats the configured proxies. userAgent, if
// non-empty, overrides the built-in rotating pool.
func NewProxyManager(proxies []string, userAgent string) *ProxyManager {
	var validProxies []string
	for _, p := range proxies {
		if ValidateProxy(p) {
			validProxies = append(validProxies, FormatProxy(p))
		}
	}

	agents := defaultUserAgents
	if userAgent != "" {
		agents = []string{userAgent}
	}

	return &ProxyManager{
		proxies:    validProxies,
		userAgents: agents,
		logger:     logger.NewLogger("", "ProxyManager"),
	}
}

// -----------------------------------------------------------------------------

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:88.0) Gecko/20100101 Firefox/88.0",
}

// -----------------------------------------------------------------------------

// GetCurrentProxy returns the currently selected proxy URL, or empty when none
// are configured.
func (pm *ProxyManager) GetCurrentProxy() (string, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if len(pm.proxies) == 0 {
		return "", nil
	}
	return pm.proxies[pm.index%len(pm.proxies)], nil
}

// -----------------------------------------------------------------------------

// RotateProxy switches to the next available proxy.
func (pm *ProxyManager) RotateProxy() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if len(pm.proxies) == 0 {
		return
	}
	pm.index = (pm.index + 1) % len(pm.proxies)
	pm.logger.Debug("Rotated to proxy %d/%d", pm.index+1, len(pm.proxies))
}

// -----------------------------------------------------------------------------

// HasProxies returns true if there are proxies configured.
func (pm *ProxyManager) HasProxies() bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.proxies) > 0
}

// -----------------------------------------------------------------------------

// GetUserAgent returns a random User-Agent from the pool.
func (pm *ProxyManager) GetUserAgent() string {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.userAgents[rand.Intn(len(pm.userAgents))]
}

// -----------------------------------------------------------------------------

// ValidateProxy accepts host:port strings, optionally with an http/https/socks5 scheme.
func ValidateProxy(proxy string) bool {
	p := proxy
	for _, scheme := range []string{"http://", "https://", "socks5://"} {
		p = strings.TrimPrefix(p, scheme)
	}
	parts := strings.Split(p, ":")
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}

// -----------------------------------------------------------------------------

// FormatProxy normalizes a proxy string to a full URL (http scheme default).
func FormatProxy(proxy string) string {
	if strings.Contains(proxy, "://") {
		return proxy
	}
	return fmt.Sprintf("http://%s", proxy)
}
