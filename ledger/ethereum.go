// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// electionABI covers the contract functions the gateway calls. A Hardhat or
// Truffle artifact at Config.ABIPath replaces it.
const electionABI = `[
	{"type":"function","name":"configureElection","stateMutability":"nonpayable",
	 "inputs":[{"name":"name","type":"string"},{"name":"candidateNames","type":"string[]"}],"outputs":[]},
	{"type":"function","name":"openElection","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"closeElection","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"addCandidate","stateMutability":"nonpayable",
	 "inputs":[{"name":"name","type":"string"}],"outputs":[]},
	{"type":"function","name":"vote","stateMutability":"nonpayable",
	 "inputs":[{"name":"candidateIndex","type":"uint256"}],"outputs":[]}
]`

// Ethereum mirrors elections onto an EVM contract. Transactions are signed
// with the contract owner's key; gas is estimated by the binding and every
// call waits for its receipt.
type Ethereum struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	timeout  time.Duration

	// one in-flight transaction at a time keeps nonces in order
	mu sync.Mutex
}

// DialEthereum connects to the RPC endpoint and binds the configured contract
func DialEthereum(ctx context.Context, cfg Config) (*Ethereum, error) {
	if !cfg.Enabled() {
		return nil, errors.New("ledger: contract address and owner key are required")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("ledger: invalid contract address %q", cfg.ContractAddress)
	}
	if cfg.RPCURL == "" {
		return nil, errors.New("ledger: RPC URL is required")
	}

	parsed, err := loadABI(cfg.ABIPath)
	if err != nil {
		return nil, err
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.OwnerKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("ledger: invalid owner key: %w", err)
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("ledger: dial %s: %w", cfg.RPCURL, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ledger: chain id: %w", err)
	}

	address := common.HexToAddress(cfg.ContractAddress)
	return &Ethereum{
		client:   client,
		contract: bind.NewBoundContract(address, parsed, client, client, client),
		key:      key,
		chainID:  chainID,
		timeout:  cfg.ConfirmTimeout,
	}, nil
}

func (e *Ethereum) Close() {
	e.client.Close()
}

func (e *Ethereum) ConfigureElection(ctx context.Context, title string, candidates []string) (*Receipt, error) {
	if candidates == nil {
		candidates = []string{}
	}
	return e.transact(ctx, OpConfigureElection, "configureElection", title, candidates)
}

func (e *Ethereum) OpenElection(ctx context.Context) (*Receipt, error) {
	return e.transact(ctx, OpOpenElection, "openElection")
}

func (e *Ethereum) CloseElection(ctx context.Context) (*Receipt, error) {
	return e.transact(ctx, OpCloseElection, "closeElection")
}

func (e *Ethereum) AddCandidate(ctx context.Context, name string) (*Receipt, error) {
	return e.transact(ctx, OpAddCandidate, "addCandidate", name)
}

func (e *Ethereum) CastVote(ctx context.Context, candidateIndex int) (*Receipt, error) {
	if candidateIndex < 0 {
		return nil, fmt.Errorf("%s: negative candidate index %d", OpCastVote, candidateIndex)
	}
	return e.transact(ctx, OpCastVote, "vote", big.NewInt(int64(candidateIndex)))
}

func (e *Ethereum) Receipt(ctx context.Context, txHash string) (*Receipt, error) {
	rcpt, err := e.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if errors.Is(err, ethereum.NotFound) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", OpReceipt, err)
	}
	return toReceipt(rcpt), nil
}

func (e *Ethereum) transact(ctx context.Context, op, method string, params ...interface{}) (*Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	opts, err := bind.NewKeyedTransactorWithChainID(e.key, e.chainID)
	if err != nil {
		return nil, fmt.Errorf("%s: transactor: %w", op, err)
	}
	opts.Context = ctx

	tx, err := e.contract.Transact(opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("%s: submit: %w", op, err)
	}

	rcpt, err := bind.WaitMined(ctx, e.client, tx)
	if err != nil {
		return nil, fmt.Errorf("%s: waiting for %s: %w", op, tx.Hash().Hex(), err)
	}

	r := toReceipt(rcpt)
	if r.Status != StatusSuccess {
		return r, fmt.Errorf("%s: %w (tx %s)", op, ErrReverted, r.TxHash)
	}
	return r, nil
}

func toReceipt(rcpt *types.Receipt) *Receipt {
	r := &Receipt{
		TxHash:  rcpt.TxHash.Hex(),
		GasUsed: rcpt.GasUsed,
		Status:  StatusFailed,
	}
	if rcpt.BlockNumber != nil {
		r.BlockNumber = rcpt.BlockNumber.Uint64()
	}
	if rcpt.Status == types.ReceiptStatusSuccessful {
		r.Status = StatusSuccess
	}
	return r
}

// loadABI accepts either a bare ABI array or a build artifact with an "abi" key
func loadABI(path string) (abi.ABI, error) {
	if path == "" {
		return abi.JSON(strings.NewReader(electionABI))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("ledger: contract artifact not found at %s: %w", path, err)
	}

	var artifact struct {
		ABI json.RawMessage `json:"abi"`
	}
	if err := json.Unmarshal(raw, &artifact); err == nil && len(artifact.ABI) > 0 {
		raw = artifact.ABI
	}

	parsed, err := abi.JSON(strings.NewReader(string(raw)))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("ledger: parse ABI %s: %w", path, err)
	}
	return parsed, nil
}
