package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	// CallbackPort is the default port for the OAuth callback server
	CallbackPort = 8089
	// AuthTimeout is how long to wait for the user to complete auth
	AuthTimeout = 5 * time.Minute
)

var ErrStateMismatch = errors.New("state mismatch - possible CSRF attack")

const successPage = `<!DOCTYPE html>
<html>
<head><title>Connected to intervals.icu</title></head>
<body style="font-family: system-ui; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0;">
<div style="text-align: center;">
<h1 style="color: #10B981;">Connected!</h1>
<p>You can close this window and return to the terminal.</p>
</div>
</body>
</html>`

// Authenticate runs the OAuth flow with a local callback server on port.
// The authorization URL is written to out.
func Authenticate(ctx context.Context, cfg *oauth2.Config, port int, out io.Writer) (*AuthResult, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.Handle("/callback", callbackHandler(state, codeChan, errChan))

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("starting callback server: %w", err)
	}

	server := &http.Server{Handler: mux}
	defer shutdownServer(server)

	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			sendErr(errChan, fmt.Errorf("server error: %w", err))
		}
	}()

	authURL := cfg.AuthCodeURL(state)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To connect intervals.icu, open this URL in your browser:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", authURL)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Waiting for authorization...")

	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		return nil, err
	case <-time.After(AuthTimeout):
		return nil, fmt.Errorf("authentication timeout after %v", AuthTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}

	id, name := ExtractAthlete(token)
	return &AuthResult{
		Token:       token,
		AthleteID:   id,
		AthleteName: name,
	}, nil
}

// callbackHandler validates the redirect and forwards the code or an error
func callbackHandler(state string, codeChan chan<- string, errChan chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			sendErr(errChan, ErrStateMismatch)
			http.Error(w, "State mismatch", http.StatusBadRequest)
			return
		}

		if errMsg := q.Get("error"); errMsg != "" {
			sendErr(errChan, fmt.Errorf("auth error: %s", errMsg))
			http.Error(w, "Authentication failed", http.StatusBadRequest)
			return
		}

		code := q.Get("code")
		if code == "" {
			sendErr(errChan, fmt.Errorf("no code in callback"))
			http.Error(w, "No authorization code", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, successPage)
		select {
		case codeChan <- code:
		default:
		}
	})
}

// a second callback must not block the handler
func sendErr(errChan chan<- error, err error) {
	select {
	case errChan <- err:
	default:
	}
}

// generateState creates a random state string for CSRF protection
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownServer gracefully shuts down the HTTP server
func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}
