package handler

import (
	"net/http"

	"shiftpay.service/internal/core"
)

// callerID resolves the authenticated caller of the request. The auth
// layer in front of this service verifies the token and forwards the
// subject; an absent header means the request never passed auth.
func callerID(r *http.Request) (string, error) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		return "", core.ErrUnauthenticated
	}
	return id, nil
}
