package domain

import (
	"github.com/golang-jwt/jwt"
	"github.com/x-xyz/marketengine/base/ctx"
)

type JwtCustomClaims struct {
	Address string `json:"data"`
	jwt.StandardClaims
}

type AuthUsecase interface {
	// Challenge issues a single use nonce for address to sign
	Challenge(ctx ctx.Ctx, address Address) (nonce string, err error)
	SignToken(ctx ctx.Ctx, address Address, signature string) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (address string, err error)
}
