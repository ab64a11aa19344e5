package handlers

import "net/http"

// Routes собирает все обработчики движка в один ServeMux.
// Метрики и прочие служебные эндпоинты навешиваются выше, в main.
func Routes(syncH *SyncHandler, conflictsH *ConflictsHandler, clientsH *ClientsHandler, statsH *StatsHandler, healthH *HealthHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /sync/push", syncH.HandlePush)
	mux.HandleFunc("POST /sync/pull", syncH.HandlePull)
	mux.HandleFunc("POST /sync/changes", syncH.HandleRecordChange)
	mux.HandleFunc("GET /sync/changes", syncH.HandleGetChanges)

	mux.HandleFunc("GET /sync/conflicts", conflictsH.HandleList)
	mux.HandleFunc("GET /sync/conflicts/{id}", conflictsH.HandleGet)
	mux.HandleFunc("POST /sync/conflicts/{id}/resolve", conflictsH.HandleResolve)

	mux.HandleFunc("GET /sync/clients/{id}", clientsH.HandleGet)
	mux.HandleFunc("GET /sync/stats", statsH.HandleGet)

	mux.HandleFunc("GET /healthz", healthH.HandleHealth)

	return mux
}
