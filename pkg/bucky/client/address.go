package client

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/bucky-bank-server/pkg/solana/buckybank"
)

// Each cached address weighs one unit of the cache budget
const addressWeight = 1

func (c *Client) getGlobalStatsAddress() (ed25519.PublicKey, error) {
	return c.memoize("global_stats", func() (ed25519.PublicKey, error) {
		address, _, err := buckybank.GetGlobalStatsAddress()
		return address, err
	})
}

// GetBankAddress returns the address of the bank with the provided sequence
// number
func (c *Client) GetBankAddress(sequence uint64) (ed25519.PublicKey, error) {
	return c.memoize(fmt.Sprintf("bank:%d", sequence), func() (ed25519.PublicKey, error) {
		address, _, err := buckybank.GetBankAddress(&buckybank.GetBankAddressArgs{Sequence: sequence})
		return address, err
	})
}

// GetUserBankIndexAddress returns the address of an owner's bank index
func (c *Client) GetUserBankIndexAddress(owner ed25519.PublicKey) (ed25519.PublicKey, error) {
	return c.memoize("index:"+base58.Encode(owner), func() (ed25519.PublicKey, error) {
		address, _, err := buckybank.GetUserBankIndexAddress(&buckybank.GetUserBankIndexAddressArgs{Owner: owner})
		return address, err
	})
}

// GetWithdrawalRequestAddress returns the address of a requester's index'th
// withdrawal request against a bank
func (c *Client) GetWithdrawalRequestAddress(bank, requester ed25519.PublicKey, index uint64) (ed25519.PublicKey, error) {
	key := fmt.Sprintf("request:%s:%s:%d", base58.Encode(bank), base58.Encode(requester), index)
	return c.memoize(key, func() (ed25519.PublicKey, error) {
		address, _, err := buckybank.GetWithdrawalRequestAddress(&buckybank.GetWithdrawalRequestAddressArgs{
			Bank:      bank,
			Requester: requester,
			Index:     index,
		})
		return address, err
	})
}

func (c *Client) memoize(key string, derive func() (ed25519.PublicKey, error)) (ed25519.PublicKey, error) {
	if cached, ok := c.addresses.Retrieve(key); ok {
		return cached.(ed25519.PublicKey), nil
	}

	address, err := derive()
	if err != nil {
		return nil, err
	}

	// A concurrent derivation may have won the insert, which is fine since
	// both produce the same address.
	_ = c.addresses.Insert(key, address, addressWeight)
	return address, nil
}

func encodeKey(key ed25519.PublicKey) string {
	return base58.Encode(key)
}
