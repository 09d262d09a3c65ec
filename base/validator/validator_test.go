package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestIsValidAddress(t *testing.T) {
	req := require.New(t)
	req.True(IsValidAddress("0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d"))
	req.True(IsValidAddress("0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D"))
	req.False(IsValidAddress("0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13"))
	req.False(IsValidAddress("bayc"))
}

func TestIsValidAmount(t *testing.T) {
	req := require.New(t)
	req.True(IsValidAmount("0"))
	req.True(IsValidAmount("1000000000000000000000"))
	req.False(IsValidAmount("-1"))
	req.False(IsValidAmount("1.5"))
	req.False(IsValidAmount(""))
}

func TestCustomValidator(t *testing.T) {
	req := require.New(t)
	v := NewCustomValidator(validator.New())

	type params struct {
		Collection string `validate:"required,address"`
		Price      string `validate:"required,amount"`
	}
	req.NoError(v.Validate(&params{Collection: "0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d", Price: "1000"}))
	req.Error(v.Validate(&params{Collection: "0x1", Price: "1000"}))
	req.Error(v.Validate(&params{Collection: "0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d", Price: "ten"}))
}
