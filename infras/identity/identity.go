package identity

//go:generate go run go.uber.org/mock/mockgen -source=./identity.go -destination=./mocks/identity_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/shared/constant"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidIdentityToken = errors.New("invalid identity token")
)

const (
	otelScopeName = "identity"
)

// Identity is the externally asserted principal extracted from a federated
// identity token.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// Verifier validates tokens issued by the configured federated identity
// provider. Only verified tokens yield an Identity; nothing else about the
// external account is trusted.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type identityClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type verifierImpl struct {
	config *config.Config
	otel   otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) Verifier {
	return &verifierImpl{
		config: cfg,
		otel:   otel,
	}
}

func (v *verifierImpl) Verify(ctx context.Context, token string) (res Identity, err error) {
	_, scope := v.otel.NewScope(ctx, constant.OtelExternalScopeName, otelScopeName+".Verify")
	defer scope.End()
	defer scope.TraceIfError(err)

	parsed, err := jwt.ParseWithClaims(token, &identityClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(v.config.External.Identity.Secret), nil
	}, jwt.WithIssuer(v.config.External.Identity.Issuer))
	if err != nil {
		return res, ErrInvalidIdentityToken
	}

	claims, ok := parsed.Claims.(*identityClaims)
	if !ok || !parsed.Valid {
		return res, ErrInvalidIdentityToken
	}

	if claims.Subject == constant.Empty || claims.Email == constant.Empty {
		return res, ErrInvalidIdentityToken
	}

	return Identity{
		UID:   claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}
