package myhttp

import (
	"fmt"
	"net/http"
	"os"
)

func HostnameWithScheme(r *http.Request) string {
	if host := os.Getenv("PUBLIC_HOSTNAME"); host != "" {
		return host
	}

	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// GuessHostnameWithScheme is used where no request is at hand, e.g. when subscribing at startup.
func GuessHostnameWithScheme() string {
	if host := os.Getenv("PUBLIC_HOSTNAME"); host != "" {
		return host
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return fmt.Sprintf("http://localhost:%s", port)
}
