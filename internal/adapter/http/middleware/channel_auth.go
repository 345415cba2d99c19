package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/api-sage/settlement-core/internal/logger"
)

// ChannelAuth gates the provider webhook with HTTP basic credentials.
// Only the bcrypt hash of the channel key is held in memory after
// construction.
type ChannelAuth struct {
	channelID string
	keyHash   []byte
}

func NewChannelAuth(channelID, channelKey string) (*ChannelAuth, error) {
	if channelID == "" || channelKey == "" {
		return nil, fmt.Errorf("channel credentials are not configured")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(channelKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash channel key: %w", err)
	}
	return &ChannelAuth{channelID: channelID, keyHash: hash}, nil
}

func (a *ChannelAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, key, ok := r.BasicAuth()
		if !ok || !a.valid(id, key) {
			logger.Info("webhook rejected: bad channel credentials", logger.Fields{
				"remoteAddr": r.RemoteAddr,
			})
			w.Header().Set("WWW-Authenticate", `Basic realm="provider webhook"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *ChannelAuth) valid(id, key string) bool {
	idMatch := subtle.ConstantTimeCompare([]byte(id), []byte(a.channelID)) == 1
	keyMatch := bcrypt.CompareHashAndPassword(a.keyHash, []byte(key)) == nil
	return idMatch && keyMatch
}
