package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fstop/apperr"

	"github.com/go-resty/resty/v2"
)

const FirebaseAuthURL = "https://identitytoolkit.googleapis.com"

// FirebaseProvider signs in with email and password through the Identity
// Toolkit REST API.
type FirebaseProvider struct {
	client *resty.Client
	apiKey string
}

func NewFirebaseProvider(baseURL, apiKey string) *FirebaseProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &FirebaseProvider{client: client, apiKey: apiKey}
}

type firebaseSignInResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"profilePicture"`
}

type firebaseErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseProvider) Authenticate(ctx context.Context, creds Credentials) (*Identity, error) {
	const op = "identity.FirebaseProvider.Authenticate"

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetBody(map[string]any{
			"email":             creds.Email,
			"password":          creds.Password,
			"returnSecureToken": true,
		}).
		Post("/v1/accounts:signInWithPassword")
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return nil, apperr.E(op, apperr.AuthCanceled, err)
		}
		return nil, apperr.E(op, apperr.UpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusOK:
	case resp.StatusCode() >= 500:
		return nil, apperr.Msg(op, apperr.UpstreamUnavailable, "auth provider returned "+resp.Status())
	default:
		var fe firebaseErrorResponse
		_ = json.Unmarshal(resp.Body(), &fe)
		return nil, &apperr.Error{Op: op, Kind: apperr.Unauthorized, Err: errors.New(fe.Error.Message)}
	}

	var out firebaseSignInResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, apperr.E(op, apperr.UpstreamUnavailable, err)
	}
	if out.LocalID == "" {
		return nil, apperr.Msg(op, apperr.UpstreamUnavailable, "auth provider returned no user id")
	}
	return &Identity{
		UID:         out.LocalID,
		Email:       out.Email,
		DisplayName: out.DisplayName,
		PhotoURL:    out.PhotoURL,
	}, nil
}

// Revoke is a no-op: provider id tokens are never handed to clients, so the
// local session is the only credential to clear.
func (p *FirebaseProvider) Revoke(context.Context, *Identity) error {
	return nil
}
