package usecase

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/ethereum"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/service/cache/provider"
)

const (
	defaultNonceTTL = 5 * time.Minute
	defaultTokenTTL = 24 * time.Hour
	noncePrefix     = "nonce:"
)

var (
	timeNow = time.Now
)

type AuthUseCaseCfg struct {
	JwtSecret string
	// SignatureMsg is formatted with the nonce into the message to sign
	SignatureMsg string
	NonceTTL     time.Duration
	TokenTTL     time.Duration
	Cache        provider.Provider
}

type impl struct {
	jwtSecret    []byte
	signatureMsg string
	nonceTTL     time.Duration
	tokenTTL     time.Duration
	cache        provider.Provider
}

func New(cfg AuthUseCaseCfg) domain.AuthUsecase {
	if cfg.NonceTTL <= 0 {
		cfg.NonceTTL = defaultNonceTTL
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	return &impl{
		jwtSecret:    []byte(cfg.JwtSecret),
		signatureMsg: cfg.SignatureMsg,
		nonceTTL:     cfg.NonceTTL,
		tokenTTL:     cfg.TokenTTL,
		cache:        cfg.Cache,
	}
}

func nonceKey(address domain.Address) string {
	return noncePrefix + address.ToLowerStr()
}

func (im *impl) Challenge(c ctx.Ctx, address domain.Address) (string, error) {
	if !common.IsHexAddress(string(address)) {
		return "", domain.ErrInvalidAddress
	}
	nonce := uuid.NewString()
	if err := im.cache.Set(c, nonceKey(address), []byte(nonce), im.nonceTTL); err != nil {
		c.WithField("err", err).Error("cache.Set failed")
		return "", err
	}
	return nonce, nil
}

func (im *impl) SignToken(c ctx.Ctx, address domain.Address, signature string) (string, error) {
	if !common.IsHexAddress(string(address)) {
		return "", domain.ErrInvalidAddress
	}

	nonce, err := im.cache.Take(c, nonceKey(address))
	if err == provider.ErrNotFound {
		return "", domain.ErrNonceNotFound
	} else if err != nil {
		c.WithField("err", err).Error("cache.Take failed")
		return "", err
	}

	msg := fmt.Sprintf(im.signatureMsg, string(nonce))
	if ok, err := ethereum.ValidateMsgSignature([]byte(msg), signature, string(address)); err != nil {
		return "", xerrors.Errorf("%v: %w", err, domain.ErrInvalidSignature)
	} else if !ok {
		return "", domain.ErrInvalidSignature
	}

	claims := domain.JwtCustomClaims{
		Address: address.ToLowerStr(),
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  timeNow().Unix(),
			ExpiresAt: timeNow().Add(im.tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		c.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(c ctx.Ctx, str string) (string, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid {
		return claims.Address, nil
	}
	return "", domain.ErrUnauthorized
}
