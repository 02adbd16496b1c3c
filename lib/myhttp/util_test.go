package myhttp

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostname(t *testing.T) {
	t.Run("From request", func(t *testing.T) {
		t.Setenv("PUBLIC_HOSTNAME", "")
		request, err := http.NewRequest(http.MethodGet, "/checkout/123", nil)
		assert.NoError(t, err)
		request.Host = "localhost:8888"

		assert.Equal(t, "http://localhost:8888", HostnameWithScheme(request))
	})

	t.Run("Configured", func(t *testing.T) {
		t.Setenv("PUBLIC_HOSTNAME", "https://checkout.example.com")

		assert.Equal(t, "https://checkout.example.com", GuessHostnameWithScheme())
	})

	t.Run("Guessed from port", func(t *testing.T) {
		t.Setenv("PUBLIC_HOSTNAME", "")
		t.Setenv("PORT", "9090")

		assert.Equal(t, "http://localhost:9090", GuessHostnameWithScheme())
	})
}
