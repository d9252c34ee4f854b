// Package lockoracle reads lock state from the on-chain lock contract. It
// answers one question: does this wallet hold enough locked tokens. It never
// decides eligibility on transport failure; errors propagate and callers
// fail closed.
package lockoracle

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/errgroup"
)

// Two read-only contract methods, selectors precomputed.
var (
	isLockedSelector      = ethcrypto.Keccak256([]byte("isLocked(address,uint256)"))[:4]
	lockedBalanceSelector = ethcrypto.Keccak256([]byte("lockedBalance(address)"))[:4]
)

// EVMClient defines the subset of the Ethereum RPC used by the oracle.
type EVMClient interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Dial initialises an EVM RPC client for the provided endpoint.
func Dial(endpoint string) (*ethclient.Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("evm endpoint required")
	}
	return ethclient.Dial(trimmed)
}

// Result reports lock state for one wallet against one required amount.
type Result struct {
	Eligible     bool
	LockedAmount string // human units, for display
	LockedRaw    string // base units, as returned by the contract
}

// Oracle queries the lock contract.
type Oracle struct {
	client   EVMClient
	contract common.Address
}

func New(client EVMClient, contract common.Address) *Oracle {
	return &Oracle{client: client, contract: contract}
}

// CheckLock converts requiredHuman to base units, queries both contract
// methods in parallel, and converts the raw balance back for display. Any
// transport error propagates unchanged; the caller must treat it as
// "unknown", not "ineligible".
func (o *Oracle) CheckLock(ctx context.Context, wallet common.Address, requiredHuman int64) (Result, error) {
	requiredRaw := ToBaseUnits(requiredHuman)

	var lockedOut, balanceOut []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lockedOut, err = o.call(gctx, packIsLocked(wallet, requiredRaw))
		return err
	})
	g.Go(func() error {
		var err error
		balanceOut, err = o.call(gctx, packLockedBalance(wallet))
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if len(lockedOut) < 32 || len(balanceOut) < 32 {
		return Result{}, fmt.Errorf("malformed contract response")
	}

	raw := new(big.Int).SetBytes(balanceOut[:32])
	return Result{
		Eligible:     lockedOut[31] != 0,
		LockedAmount: FromBaseUnits(raw),
		LockedRaw:    raw.String(),
	}, nil
}

func (o *Oracle) call(ctx context.Context, data []byte) ([]byte, error) {
	return o.client.CallContract(ctx, ethereum.CallMsg{To: &o.contract, Data: data}, nil)
}

func packIsLocked(wallet common.Address, amountRaw *big.Int) []byte {
	data := make([]byte, 0, 4+64)
	data = append(data, isLockedSelector...)
	data = append(data, common.LeftPadBytes(wallet.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amountRaw.Bytes(), 32)...)
	return data
}

func packLockedBalance(wallet common.Address) []byte {
	data := make([]byte, 0, 4+32)
	data = append(data, lockedBalanceSelector...)
	data = append(data, common.LeftPadBytes(wallet.Bytes(), 32)...)
	return data
}
