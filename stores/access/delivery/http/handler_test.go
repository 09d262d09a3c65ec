package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/access"
	accessHttp "github.com/x-xyz/marketengine/stores/access/delivery/http"
	"github.com/x-xyz/marketengine/stores/engine/enginetest"
)

const stranger = domain.Address("0x00000000000000000000000000000000000000a1")

type handlerSuite struct {
	suite.Suite
	env    *enginetest.Env
	server *enginetest.Server
}

func Test(t *testing.T) {
	suite.Run(t, new(handlerSuite))
}

func (s *handlerSuite) SetupTest() {
	s.env = enginetest.New()
	s.server = s.env.NewServer()
	accessHttp.New(s.server.Echo, s.env.Access, s.server.Auth)
}

func (s *handlerSuite) config() access.Config {
	rec := s.server.Do(http.MethodGet, "/admin/config", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	cfg := access.Config{}
	_, err := enginetest.Decode(rec, &cfg)
	s.Require().NoError(err)
	return cfg
}

func (s *handlerSuite) role(caller domain.Address) string {
	rec := s.server.Do(http.MethodGet, "/admin/role", nil, caller)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	res := map[string]string{}
	_, err := enginetest.Decode(rec, &res)
	s.Require().NoError(err)
	return res["role"]
}

func (s *handlerSuite) TestConfigAndRoles() {
	cfg := s.config()
	s.Equal(enginetest.Owner, cfg.Owner)
	s.Equal(enginetest.Admin, cfg.Admin)
	s.Equal(enginetest.DefaultRates, cfg.Rates)
	s.False(cfg.Paused)

	s.Equal("owner", s.role(enginetest.Owner))
	s.Equal("admin", s.role(enginetest.Admin))
	s.Equal("none", s.role(stranger))
}

func (s *handlerSuite) TestPause() {
	rec := s.server.Do(http.MethodPost, "/admin/pause", nil, stranger)
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.server.Do(http.MethodPost, "/admin/pause", nil, enginetest.Admin)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.True(s.config().Paused)

	rec = s.server.Do(http.MethodPost, "/admin/pause", nil, enginetest.Admin)
	s.Equal(http.StatusLocked, rec.Code)

	rec = s.server.Do(http.MethodPost, "/admin/unpause", nil, enginetest.Owner)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.False(s.config().Paused)

	rec = s.server.Do(http.MethodPost, "/admin/unpause", nil, enginetest.Owner)
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *handlerSuite) TestOwnerOperations() {
	rec := s.server.Do(http.MethodPut, "/admin/tradeFee", map[string]uint32{"tradeFeeBps": 200}, enginetest.Admin)
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.server.Do(http.MethodPut, "/admin/tradeFee", map[string]uint32{"tradeFeeBps": 2000}, enginetest.Owner)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.server.Do(http.MethodPut, "/admin/tradeFee", map[string]string{}, enginetest.Owner)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.server.Do(http.MethodPut, "/admin/tradeFee", map[string]uint32{"tradeFeeBps": 200}, enginetest.Owner)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(uint32(200), s.config().Rates.TradeFeeBps)

	rec = s.server.Do(http.MethodPut, "/admin/admin", map[string]string{"address": "nobody"}, enginetest.Owner)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.server.Do(http.MethodPut, "/admin/admin", map[string]string{"address": string(stranger)}, enginetest.Owner)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("admin", s.role(stranger))
	s.Equal("none", s.role(enginetest.Admin))

	rec = s.server.Do(http.MethodPut, "/admin/owner", map[string]string{"address": string(stranger)}, enginetest.Owner)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("owner", s.role(stranger))
	s.Equal("none", s.role(enginetest.Owner))
}
