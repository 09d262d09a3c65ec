package enginetest

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/base/metrics"
	"github.com/x-xyz/marketengine/base/validator"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/middleware"
	"github.com/x-xyz/marketengine/service/cache/provider/primitive"
	authMiddleware "github.com/x-xyz/marketengine/stores/auth/delivery/http/middleware"
	authUsecase "github.com/x-xyz/marketengine/stores/auth/usecase"
)

const JwtSecret = "enginetest-secret"

// Server is an echo instance with the request context and auth
// middlewares the handlers expect
type Server struct {
	Echo *echo.Echo
	Auth *authMiddleware.AuthMiddleware
}

func (e *Env) NewServer() *Server {
	ec := echo.New()
	ec.Validator = validator.NewCustomValidator(goValidator.New())
	m := middleware.InitMiddleware(metrics.New("http", metrics.WithLogClient()))
	ec.Use(m.AddContext())

	auth := authUsecase.New(authUsecase.AuthUseCaseCfg{
		JwtSecret:    JwtSecret,
		SignatureMsg: "%s",
		Cache:        primitive.NewPrimitive("nonce", 1),
	})
	return &Server{
		Echo: ec,
		Auth: authMiddleware.New(auth, e.Access),
	}
}

// Token issues a bearer token for address without a signature round trip
func Token(address domain.Address) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, domain.JwtCustomClaims{
		Address: address.ToLowerStr(),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	})
	ss, err := token.SignedString([]byte(JwtSecret))
	if err != nil {
		panic(err)
	}
	return ss
}

// Do serves one request. An empty caller sends no Authorization header.
func (s *Server) Do(method, path string, body interface{}, caller domain.Address) *httptest.ResponseRecorder {
	token := ""
	if caller != "" {
		token = Token(caller)
	}
	return s.DoWithToken(method, path, body, token)
}

func (s *Server) DoWithToken(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	payload := []byte{}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		payload = b
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals the data field of a JSON envelope into v
func Decode(rec *httptest.ResponseRecorder, v interface{}) (delivery.JsonResponseStatus, error) {
	env := struct {
		Data   json.RawMessage             `json:"data"`
		Status delivery.JsonResponseStatus `json:"status"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		return "", err
	}
	if v != nil {
		if err := json.Unmarshal(env.Data, v); err != nil {
			return env.Status, err
		}
	}
	return env.Status, nil
}
