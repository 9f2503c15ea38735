package buckybank

import "bytes"

type AccountType uint8

const (
	AccountTypeUnknown AccountType = iota
	AccountTypeGlobalStats
	AccountTypeBank
	AccountTypeUserBankIndex
	AccountTypeWithdrawalRequest
)

func (t AccountType) String() string {
	switch t {
	case AccountTypeGlobalStats:
		return "global_stats"
	case AccountTypeBank:
		return "bank"
	case AccountTypeUserBankIndex:
		return "user_bank_index"
	case AccountTypeWithdrawalRequest:
		return "withdrawal_request"
	}
	return "unknown"
}

// GetAccountType identifies program account data by its discriminator.
func GetAccountType(data []byte) AccountType {
	switch {
	case bytes.HasPrefix(data, GlobalStatsAccountDiscriminator):
		return AccountTypeGlobalStats
	case bytes.HasPrefix(data, BankAccountDiscriminator):
		return AccountTypeBank
	case bytes.HasPrefix(data, UserBankIndexAccountDiscriminator):
		return AccountTypeUserBankIndex
	case bytes.HasPrefix(data, WithdrawalRequestAccountDiscriminator):
		return AccountTypeWithdrawalRequest
	}
	return AccountTypeUnknown
}
