package client

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/ledger"
	"github.com/code-payments/bucky-bank-server/pkg/solana"
	"github.com/code-payments/bucky-bank-server/pkg/solana/buckybank"
)

// Bank is a bank's state alongside its address
type Bank struct {
	Address ed25519.PublicKey
	*buckybank.BankAccount
}

// WithdrawalRequest is a request's state alongside its address
type WithdrawalRequest struct {
	Address ed25519.PublicKey
	*buckybank.WithdrawalRequestAccount
}

func (c *Client) GetGlobalStats(ctx context.Context) (*buckybank.GlobalStatsAccount, error) {
	address, err := c.getGlobalStatsAddress()
	if err != nil {
		return nil, err
	}

	var stats buckybank.GlobalStatsAccount
	if err := c.getProgramAccount(ctx, address, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) GetBank(ctx context.Context, address ed25519.PublicKey) (*buckybank.BankAccount, error) {
	var bank buckybank.BankAccount
	if err := c.getProgramAccount(ctx, address, &bank); err != nil {
		return nil, err
	}
	return &bank, nil
}

func (c *Client) GetUserBankIndex(ctx context.Context, owner ed25519.PublicKey) (*buckybank.UserBankIndexAccount, error) {
	address, err := c.GetUserBankIndexAddress(owner)
	if err != nil {
		return nil, err
	}

	var index buckybank.UserBankIndexAccount
	if err := c.getProgramAccount(ctx, address, &index); err != nil {
		return nil, err
	}
	return &index, nil
}

func (c *Client) GetWithdrawalRequest(ctx context.Context, address ed25519.PublicKey) (*buckybank.WithdrawalRequestAccount, error) {
	var request buckybank.WithdrawalRequestAccount
	if err := c.getProgramAccount(ctx, address, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// GetBanksByOwner returns the banks an owner created, in creation order. An
// owner without any banks has an empty result.
func (c *Client) GetBanksByOwner(ctx context.Context, owner ed25519.PublicKey) ([]*Bank, error) {
	index, err := c.GetUserBankIndex(ctx, owner)
	if err == ledger.ErrAccountNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	res := make([]*Bank, 0, len(index.BankIds))
	for _, address := range index.BankIds {
		bank, err := c.GetBank(ctx, address)
		if err != nil {
			return nil, errors.Wrapf(err, "error getting indexed bank %s", encodeKey(address))
		}
		res = append(res, &Bank{Address: address, BankAccount: bank})
	}
	return res, nil
}

// GetWithdrawalRequestsByBank returns every withdrawal request made against a
// bank, in the order they were made. Only the bank's child can make
// requests, so requests are located by walking the bank's counter.
func (c *Client) GetWithdrawalRequestsByBank(ctx context.Context, address ed25519.PublicKey) ([]*WithdrawalRequest, error) {
	bank, err := c.GetBank(ctx, address)
	if err != nil {
		return nil, err
	}

	var res []*WithdrawalRequest
	for i := uint64(0); i < bank.WithdrawalRequestCounter; i++ {
		requestAddress, err := c.GetWithdrawalRequestAddress(address, bank.Config.ChildAddress, i)
		if err != nil {
			return nil, err
		}

		request, err := c.GetWithdrawalRequest(ctx, requestAddress)
		if err != nil {
			return nil, errors.Wrapf(err, "error getting withdrawal request %d", i)
		}
		res = append(res, &WithdrawalRequest{Address: requestAddress, WithdrawalRequestAccount: request})
	}
	return res, nil
}

type accountDecoder interface {
	Unmarshal(data []byte) error
}

func (c *Client) getProgramAccount(ctx context.Context, address ed25519.PublicKey, dst accountDecoder) error {
	account, err := c.ledger.GetAccount(ctx, address)
	if err != nil {
		return err
	}

	if !account.IsOwnedBy(buckybank.PROGRAM_ID) {
		return ErrUnexpectedAccount
	}
	return dst.Unmarshal(account.Data)
}

// isProgramError returns whether err is a failed transaction with the
// provided program error code
func isProgramError(err error, expected interface{ Code() uint32 }) bool {
	var txErr *solana.TransactionError
	if !errors.As(err, &txErr) {
		return false
	}

	custom := txErr.CustomError()
	return custom != nil && uint32(*custom) == expected.Code()
}

func publicKey(key ed25519.PrivateKey) ed25519.PublicKey {
	return key.Public().(ed25519.PublicKey)
}
