package domain

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// BpsDenominator is the basis point scale used by every fee rate
	BpsDenominator = 10000
)

// Address identifies an account, a collection contract or the engine itself
type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

// IsEmpty is true for "" and the zero address
func (a Address) IsEmpty() bool {
	return len(a) == 0 || a.Equals(EmptyAddress)
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

// TokenId is the decimal id of an item inside its collection
type TokenId string

func (i TokenId) String() string {
	return string(i)
}

// ItemKey addresses one item of one collection
type ItemKey struct {
	Collection Address `json:"collection" bson:"collection"`
	TokenId    TokenId `json:"tokenId" bson:"tokenId"`
}

func NewItemKey(collection Address, tokenId TokenId) ItemKey {
	return ItemKey{Collection: collection.ToLower(), TokenId: tokenId}
}

func (k ItemKey) String() string {
	return string(k.Collection) + "/" + string(k.TokenId)
}

// Amount helpers. Amounts are payment token minimal units held as *big.Int
// and never mutated in place once stored.

// ParseAmount parses a base-10 integer amount
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, ErrInvalidNumberFormat
	}
	return v, nil
}

// CopyAmount returns an independent copy, nil becomes zero
func CopyAmount(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// IsPositive reports v > 0
func IsPositive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}

// AmountString renders nil as "0"
func AmountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// DisplayAmount renders v scaled down by decimals, e.g. 1500 with 3 decimals is "1.5"
func DisplayAmount(v *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(CopyAmount(v), -decimals).String()
}
