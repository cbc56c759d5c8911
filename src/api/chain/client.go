package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrEventNotFound reports a confirmed transaction whose receipt lacks the
// expected proof-of-effect log. Callers must treat this as fatal for the
// request, not as a transient failure.
var ErrEventNotFound = errors.New("expected event not found in receipt")

// Client wraps an EVM JSON-RPC connection plus the operator signing key used
// for all privileged sends.
type Client struct {
	rpc      *ethclient.Client
	key      *ecdsa.PrivateKey
	operator common.Address
	chainID  *big.Int
}

// Dial connects to the node and derives the operator address from the
// private key.
func Dial(ctx context.Context, rawURL, hexKey string) (*Client, error) {
	rpc, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rawURL, err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("operator key: %w", err)
	}

	chainID, err := rpc.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}

	return &Client{
		rpc:      rpc,
		key:      key,
		operator: crypto.PubkeyToAddress(key.PublicKey),
		chainID:  chainID,
	}, nil
}

func (c *Client) Close() { c.rpc.Close() }

// Operator returns the privileged signing address.
func (c *Client) Operator() common.Address { return c.operator }

// PendingNonce returns the operator account's next transaction sequence
// number, including pending transactions.
func (c *Client) PendingNonce(ctx context.Context) (uint64, error) {
	return c.rpc.PendingNonceAt(ctx, c.operator)
}

// Call executes a read-only contract call and returns the unpacked outputs.
func (c *Client) Call(ctx context.Context, to common.Address, a *abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	input, err := a.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	output, err := c.rpc.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, to.Hex(), err)
	}

	out, err := a.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return out, nil
}

// Transact signs and submits a state-changing call at the given nonce, then
// waits for inclusion. A receipt with failed status is returned as an error:
// inclusion alone is not success.
func (c *Client) Transact(ctx context.Context, to common.Address, a *abi.ABI, method string, nonce uint64, args ...interface{}) (*ethtypes.Receipt, error) {
	input, err := a.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	gasPrice, err := c.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas price: %w", err)
	}

	gas, err := c.rpc.EstimateGas(ctx, ethereum.CallMsg{From: c.operator, To: &to, Data: input})
	if err != nil {
		return nil, fmt.Errorf("estimate %s: %w", method, err)
	}
	// headroom for state drift between estimate and inclusion
	gas = gas * 120 / 100

	tx, err := ethtypes.SignNewTx(c.key, ethtypes.LatestSignerForChainID(c.chainID), &ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     input,
	})
	if err != nil {
		return nil, fmt.Errorf("sign %s: %w", method, err)
	}

	if err := c.rpc.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("send %s: %w", method, err)
	}

	receipt, err := bind.WaitMined(ctx, c.rpc, tx)
	if err != nil {
		return nil, fmt.Errorf("wait %s: %w", method, err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%s reverted in tx %s", method, tx.Hash().Hex())
	}
	return receipt, nil
}

// TransferRecipients enumerates every address that ever received the token,
// from genesis to latest, deduplicated in first-seen order.
func (c *Client) TransferRecipients(ctx context.Context, token common.Address) ([]common.Address, error) {
	transferID := ShareABI.Events["Transfer"].ID
	logs, err := c.rpc.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: big.NewInt(0),
		Addresses: []common.Address{token},
		Topics:    [][]common.Hash{{transferID}},
	})
	if err != nil {
		return nil, fmt.Errorf("transfer logs for %s: %w", token.Hex(), err)
	}

	seen := make(map[common.Address]bool)
	var recipients []common.Address
	for _, lg := range logs {
		if len(lg.Topics) < 3 {
			continue
		}
		to := common.BytesToAddress(lg.Topics[2].Bytes())
		if !seen[to] {
			seen[to] = true
			recipients = append(recipients, to)
		}
	}
	return recipients, nil
}

// EventArgs finds the first log in the receipt emitted by emitter for the
// named event and unpacks both data and indexed topics into a map. Returns
// ErrEventNotFound when no log matches.
func EventArgs(a *abi.ABI, receipt *ethtypes.Receipt, emitter common.Address, event string) (map[string]interface{}, error) {
	ev, ok := a.Events[event]
	if !ok {
		return nil, fmt.Errorf("unknown event %q", event)
	}

	for _, lg := range receipt.Logs {
		if lg.Address != emitter {
			continue
		}
		if len(lg.Topics) == 0 || lg.Topics[0] != ev.ID {
			continue
		}

		out := make(map[string]interface{})
		if len(lg.Data) > 0 {
			if err := a.UnpackIntoMap(out, event, lg.Data); err != nil {
				return nil, fmt.Errorf("unpack %s data: %w", event, err)
			}
		}

		var indexed abi.Arguments
		for _, arg := range ev.Inputs {
			if arg.Indexed {
				indexed = append(indexed, arg)
			}
		}
		if len(indexed) > 0 {
			if err := abi.ParseTopicsIntoMap(out, indexed, lg.Topics[1:]); err != nil {
				return nil, fmt.Errorf("unpack %s topics: %w", event, err)
			}
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %s from %s", ErrEventNotFound, event, emitter.Hex())
}
