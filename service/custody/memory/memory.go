// Package memory is an in-process custody gateway. It backs development
// servers and the engine tests, and can inject failures and callbacks.
package memory

import (
	"math/big"
	"sync"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/custody"
	"golang.org/x/xerrors"
)

var (
	ErrNotItemOwner       = xerrors.New("from is not the item owner")
	ErrTransferNotAllowed = xerrors.New("transfer not authorized")
	ErrUnknownItem        = xerrors.New("unknown item")
	ErrLowBalance         = xerrors.New("balance too low")
	ErrLowAllowance       = xerrors.New("allowance too low")
)

type Method string

const (
	MethodTransfer Method = "transfer"
	MethodPull     Method = "pull"
	MethodPush     Method = "push"
)

// Call describes a mutating gateway call handed to the Hook
type Call struct {
	Method     Method
	Collection domain.Address
	TokenId    domain.TokenId
	From       domain.Address
	To         domain.Address
	Amount     *big.Int
}

// Hook runs before every mutating call with the caller's context. A non
// nil error fails the call without effect.
type Hook func(c ctx.Ctx, call Call) error

type Gateway struct {
	mu sync.Mutex

	// operator is the engine account, the spender of allowances
	operator domain.Address

	owners     map[domain.ItemKey]domain.Address
	approvals  map[domain.ItemKey]domain.Address
	operators  map[domain.Address]map[domain.Address]bool
	balances   map[domain.Address]*big.Int
	allowances map[domain.Address]map[domain.Address]*big.Int

	hook Hook
}

func New(operator domain.Address) *Gateway {
	return &Gateway{
		operator:   operator.ToLower(),
		owners:     map[domain.ItemKey]domain.Address{},
		approvals:  map[domain.ItemKey]domain.Address{},
		operators:  map[domain.Address]map[domain.Address]bool{},
		balances:   map[domain.Address]*big.Int{},
		allowances: map[domain.Address]map[domain.Address]*big.Int{},
	}
}

var _ custody.Gateway = (*Gateway)(nil)

func (g *Gateway) SetHook(h Hook) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hook = h
}

// Mint assigns an item to owner
func (g *Gateway) Mint(collection domain.Address, tokenId domain.TokenId, owner domain.Address) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := domain.NewItemKey(collection, tokenId)
	g.owners[key] = owner.ToLower()
	delete(g.approvals, key)
}

// Approve lets operator move a single item. Only the owner's approval
// counts, matching the usual non-fungible approval model.
func (g *Gateway) Approve(collection domain.Address, tokenId domain.TokenId, operator domain.Address) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.approvals[domain.NewItemKey(collection, tokenId)] = operator.ToLower()
}

func (g *Gateway) SetApprovalForAll(owner, operator domain.Address, approved bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	owner, operator = owner.ToLower(), operator.ToLower()
	if _, ok := g.operators[owner]; !ok {
		g.operators[owner] = map[domain.Address]bool{}
	}
	g.operators[owner][operator] = approved
}

// Deposit credits account with amount of the payment token
func (g *Gateway) Deposit(account domain.Address, amount *big.Int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	account = account.ToLower()
	g.balances[account] = new(big.Int).Add(g.balance(account), amount)
}

// ApprovePayment sets the allowance owner grants spender
func (g *Gateway) ApprovePayment(owner, spender domain.Address, amount *big.Int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setAllowance(owner.ToLower(), spender.ToLower(), domain.CopyAmount(amount))
}

func (g *Gateway) OwnerOf(_ ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	owner, ok := g.owners[domain.NewItemKey(collection, tokenId)]
	if !ok {
		return domain.EmptyAddress, ErrUnknownItem
	}
	return owner, nil
}

func (g *Gateway) IsApprovedForTransfer(_ ctx.Ctx, collection domain.Address, tokenId domain.TokenId, operator domain.Address) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := domain.NewItemKey(collection, tokenId)
	owner, ok := g.owners[key]
	if !ok {
		return false, ErrUnknownItem
	}
	return g.authorized(key, owner, operator.ToLower()), nil
}

func (g *Gateway) Transfer(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId, from, to domain.Address) error {
	call := Call{Method: MethodTransfer, Collection: collection, TokenId: tokenId, From: from, To: to}
	if err := g.runHook(c, call); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	key := domain.NewItemKey(collection, tokenId)
	owner, ok := g.owners[key]
	if !ok {
		return ErrUnknownItem
	}
	if !owner.Equals(from) {
		return ErrNotItemOwner
	}
	if !owner.Equals(g.operator) && !g.authorized(key, owner, g.operator) {
		return ErrTransferNotAllowed
	}
	g.owners[key] = to.ToLower()
	delete(g.approvals, key)
	return nil
}

func (g *Gateway) BalanceOf(_ ctx.Ctx, account domain.Address) (*big.Int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return domain.CopyAmount(g.balance(account.ToLower())), nil
}

func (g *Gateway) Allowance(_ ctx.Ctx, owner, spender domain.Address) (*big.Int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return domain.CopyAmount(g.allowance(owner.ToLower(), spender.ToLower())), nil
}

// Pull spends the operator's allowance on from
func (g *Gateway) Pull(c ctx.Ctx, from, to domain.Address, amount *big.Int) error {
	call := Call{Method: MethodPull, From: from, To: to, Amount: domain.CopyAmount(amount)}
	if err := g.runHook(c, call); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	from, to = from.ToLower(), to.ToLower()
	allowance := g.allowance(from, g.operator)
	if allowance.Cmp(amount) < 0 {
		return ErrLowAllowance
	}
	if err := g.move(from, to, amount); err != nil {
		return err
	}
	g.setAllowance(from, g.operator, new(big.Int).Sub(allowance, amount))
	return nil
}

// Push pays out of the operator's own balance
func (g *Gateway) Push(c ctx.Ctx, to domain.Address, amount *big.Int) error {
	call := Call{Method: MethodPush, From: g.operator, To: to, Amount: domain.CopyAmount(amount)}
	if err := g.runHook(c, call); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.move(g.operator, to.ToLower(), amount)
}

func (g *Gateway) runHook(c ctx.Ctx, call Call) error {
	g.mu.Lock()
	hook := g.hook
	g.mu.Unlock()
	if hook == nil {
		return nil
	}
	return hook(c, call)
}

func (g *Gateway) authorized(key domain.ItemKey, owner, operator domain.Address) bool {
	if approved, ok := g.approvals[key]; ok && approved.Equals(operator) {
		return true
	}
	return g.operators[owner][operator]
}

func (g *Gateway) move(from, to domain.Address, amount *big.Int) error {
	balance := g.balance(from)
	if balance.Cmp(amount) < 0 {
		return ErrLowBalance
	}
	g.balances[from] = new(big.Int).Sub(balance, amount)
	g.balances[to] = new(big.Int).Add(g.balance(to), amount)
	return nil
}

func (g *Gateway) setAllowance(owner, spender domain.Address, amount *big.Int) {
	if _, ok := g.allowances[owner]; !ok {
		g.allowances[owner] = map[domain.Address]*big.Int{}
	}
	g.allowances[owner][spender] = amount
}

func (g *Gateway) balance(account domain.Address) *big.Int {
	if b, ok := g.balances[account]; ok {
		return b
	}
	return big.NewInt(0)
}

func (g *Gateway) allowance(owner, spender domain.Address) *big.Int {
	if a, ok := g.allowances[owner][spender]; ok {
		return a
	}
	return big.NewInt(0)
}
