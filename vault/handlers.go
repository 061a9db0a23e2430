// Package vault tem os handlers de negócio de exemplo protegidos pelo gateway.
//
// São stubs: respondem 200 sem corpo e só registram a chamada.
package vault

import (
	"net/http"
	"strconv"

	authdomain "vault-gateway/middleware/auth/domain"
	"vault-gateway/middleware/requestid"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handlers struct {
	Logger *zap.Logger
}

func New(logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{Logger: logger}
}

// CreateVault atende POST /vault.
func (h *Handlers) CreateVault(w http.ResponseWriter, r *http.Request) {
	h.ok(w, r, "create_vault")
}

// ListVaultItems atende GET /vault/items.
func (h *Handlers) ListVaultItems(w http.ResponseWriter, r *http.Request) {
	h.ok(w, r, "list_vault_items")
}

// CreateVaultItem atende PUT /vault/items/{id}; id precisa ser inteiro sem sinal.
func (h *Handlers) CreateVaultItem(w http.ResponseWriter, r *http.Request) {
	if _, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64); err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	h.ok(w, r, "create_vault_item")
}

func (h *Handlers) ok(w http.ResponseWriter, r *http.Request, op string) {
	id, _ := authdomain.IdentityFromContext(r.Context())
	h.Logger.Info(op,
		zap.Int("status", http.StatusOK),
		zap.String("identity", id.Fingerprint()),
		zap.String("request_id", requestid.FromContext(r.Context())),
	)
	w.WriteHeader(http.StatusOK)
}
