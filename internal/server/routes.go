package server

import (
	"log/slog"
	"net/http"

	"github.com/juank27/alegra-api/internal/auth"
)

func SetupRoutes(svc *BillService, store *auth.TokenStore, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	protect := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(store, logger, h)
	}

	mux.HandleFunc("GET /", svc.Health)
	mux.Handle("POST /api/bills", protect(svc.UploadBills))
	mux.Handle("POST /api/bills/preview", protect(svc.PreviewBills))
	mux.Handle("POST /api/tokens", protect(svc.IssueToken))
	mux.Handle("GET /api/batches", protect(svc.ListBatches))

	return mux
}
