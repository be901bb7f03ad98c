package identity

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

var (
	errBadKey       = errors.New("identity: malformed public key")
	errBadSignature = errors.New("identity: signature verification failed")
)

// Request headers carrying caller credentials.
const (
	HeaderKey       = "X-Scriptorium-Key"
	HeaderSignature = "X-Scriptorium-Signature"
	HeaderAccount   = "X-Scriptorium-Account"
)

// MiddlewareConfig groups dependencies for the authentication middleware.
type MiddlewareConfig struct {
	Logger *slog.Logger
	// AllowInsecure trusts a bare account header instead of requiring a
	// signed request. Development and tests only.
	AllowInsecure bool
}

// Middleware authenticates requests that present credentials and injects the
// derived account into the request context. Requests without credentials pass
// through unauthenticated; handlers requiring an identity reject them.
func Middleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, ok, err := authenticate(r, cfg.AllowInsecure)
			if err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Warn("request authentication failed",
						slog.String("path", r.URL.Path), slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if ok {
				r = r.WithContext(ContextWithAccount(r.Context(), account))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SignRequest computes the signature header value for a request body. Shared
// with the client side and the middleware tests.
func SignRequest(priv ed25519.PrivateKey, method, path string, body []byte) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(priv, signingMessage(method, path, body)))
}

func authenticate(r *http.Request, allowInsecure bool) (Account, bool, error) {
	rawKey := r.Header.Get(HeaderKey)
	if rawKey == "" {
		if allowInsecure {
			if raw := r.Header.Get(HeaderAccount); raw != "" {
				return Normalize(raw), true, nil
			}
		}
		return "", false, nil
	}

	pub, err := base64.StdEncoding.DecodeString(rawKey)
	if err != nil {
		return "", false, errBadKey
	}
	if len(pub) != ed25519.PublicKeySize {
		return "", false, errBadKey
	}
	sig, err := base64.StdEncoding.DecodeString(r.Header.Get(HeaderSignature))
	if err != nil {
		return "", false, errBadSignature
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", false, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if !ed25519.Verify(ed25519.PublicKey(pub), signingMessage(r.Method, r.URL.Path, body), sig) {
		return "", false, errBadSignature
	}
	return FromPublicKey(ed25519.PublicKey(pub)), true, nil
}

// signingMessage binds the signature to method, path and body digest.
func signingMessage(method, path string, body []byte) []byte {
	digest := sha256.Sum256(body)
	msg := make([]byte, 0, len(method)+len(path)+hex.EncodedLen(len(digest))+2)
	msg = append(msg, method...)
	msg = append(msg, '\n')
	msg = append(msg, path...)
	msg = append(msg, '\n')
	msg = append(msg, hex.EncodeToString(digest[:])...)
	return msg
}
