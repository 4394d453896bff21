package util

import (
	"net/http"
	"net/url"
)

// NewProxyFunc creates a proxy function based on configuration.
// If no proxy URLs are provided, falls back to environment variables.
// Unparseable proxy URLs are ignored in favour of the environment.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	httpURL := parseProxy(httpProxy)
	httpsURL := parseProxy(httpsProxy)

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsURL != nil {
			return httpsURL, nil
		}
		if httpURL != nil {
			return httpURL, nil
		}
		return http.ProxyFromEnvironment(req)
	}
}

func parseProxy(raw string) *url.URL {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil
	}
	return u
}
