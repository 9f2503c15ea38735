package buckybank

import "bytes"

type InstructionType uint8

const (
	InstructionTypeUnknown InstructionType = iota
	InstructionTypeInitializeGlobalStats
	InstructionTypeCreateBank
	InstructionTypeDeposit
	InstructionTypeRequestWithdrawal
	InstructionTypeApproveWithdrawal
	InstructionTypeWithdraw
)

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeInitializeGlobalStats:
		return "InitializeBankGlobalStats"
	case InstructionTypeCreateBank:
		return "CreateBuckyBank"
	case InstructionTypeDeposit:
		return "Deposit"
	case InstructionTypeRequestWithdrawal:
		return "RequestWithdrawal"
	case InstructionTypeApproveWithdrawal:
		return "ApproveWithdrawal"
	case InstructionTypeWithdraw:
		return "Withdraw"
	}
	return "Unknown"
}

// GetInstructionType identifies instruction data by its discriminator.
func GetInstructionType(data []byte) InstructionType {
	if len(data) < DiscriminatorSize {
		return InstructionTypeUnknown
	}

	prefix := data[:DiscriminatorSize]
	switch {
	case bytes.Equal(prefix, initializeGlobalStatsInstructionDiscriminator):
		return InstructionTypeInitializeGlobalStats
	case bytes.Equal(prefix, createBankInstructionDiscriminator):
		return InstructionTypeCreateBank
	case bytes.Equal(prefix, depositInstructionDiscriminator):
		return InstructionTypeDeposit
	case bytes.Equal(prefix, requestWithdrawalInstructionDiscriminator):
		return InstructionTypeRequestWithdrawal
	case bytes.Equal(prefix, approveWithdrawalInstructionDiscriminator):
		return InstructionTypeApproveWithdrawal
	case bytes.Equal(prefix, withdrawInstructionDiscriminator):
		return InstructionTypeWithdraw
	}
	return InstructionTypeUnknown
}
