package warmup

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/basketcheckout/lib/mycontext"
	"github.com/MarcGrol/basketcheckout/lib/myhttp"
	"github.com/MarcGrol/basketcheckout/lib/mylog"
	"github.com/MarcGrol/basketcheckout/lib/myvault"
)

type webService struct {
	logger        mylog.Logger
	vault         myvault.VaultReader[myvault.Token]
	providerNames []string
}

// NewService warms up the vault connection by reading the token of every given provider.
func NewService(vault myvault.VaultReader[myvault.Token], providerNames ...string) *webService {
	return &webService{
		logger:        mylog.New("warmup"),
		vault:         vault,
		providerNames: providerNames,
	}
}

func (s webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")
}

func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		found := 0
		for _, providerName := range s.providerNames {
			_, exists, err := s.vault.Get(c, myvault.TokenUID(providerName))
			if err != nil {
				errorWriter.WriteError(c, w, 1, err)
				return
			}
			if exists {
				found++
			}
		}

		s.logger.Log(c, "", mylog.SeverityInfo, "Warmup: %d of %d provider tokens present", found, len(s.providerNames))

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed warmup request",
		})
	}
}
