package httpapi

import "net/http"

// Health is the liveness probe used by the hosting platform. It must answer
// even while the hub is busy, which it does trivially: it never touches hub
// state.
func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func Banner(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("AstraRise multiplayer server is running"))
}
