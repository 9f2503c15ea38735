package buckybank

import "fmt"

type BuckyBankError uint32

const (
	// Deposit is below the minimum deposit
	ErrDepositTooSmall BuckyBankError = iota + 0x1770

	// Bank balance cannot cover the amount
	ErrInsufficientFunds

	// Name is empty or too long
	ErrInvalidName

	// Target amount must be positive
	ErrInvalidAmount

	// Duration must be positive
	ErrInvalidDeadline

	// Arithmetic overflow
	ErrOverflow

	// Bank is not active
	ErrBankNotActive

	// Signer is not the bank's child
	ErrNotChild

	// Deposit amount must be positive
	ErrInvalidDepositAmount

	// Only the child may request a withdrawal
	ErrNotChildForWithdrawal

	// Withdrawal amount is zero
	ErrInvalidWithdrawalAmount

	// Reason exceeds the maximum length
	ErrReasonTooLong

	// Signer is not the bank's parent
	ErrNotParent

	// Request is not in the required status
	ErrInvalidRequestStatus

	// Request does not belong to the bank
	ErrRequestNotFound

	// Child address is empty or equal to the parent
	ErrInvalidChildAddress

	// Reason is empty
	ErrInvalidReason
)

var buckyBankErrorNames = map[BuckyBankError]string{
	ErrDepositTooSmall:         "DepositTooSmall",
	ErrInsufficientFunds:       "InsufficientFunds",
	ErrInvalidName:             "InvalidName",
	ErrInvalidAmount:           "InvalidAmount",
	ErrInvalidDeadline:         "InvalidDeadline",
	ErrOverflow:                "Overflow",
	ErrBankNotActive:           "BankNotActive",
	ErrNotChild:                "NotChild",
	ErrInvalidDepositAmount:    "InvalidDepositAmount",
	ErrNotChildForWithdrawal:   "NotChildForWithdrawal",
	ErrInvalidWithdrawalAmount: "InvalidWithdrawalAmount",
	ErrReasonTooLong:           "ReasonTooLong",
	ErrNotParent:               "NotParent",
	ErrInvalidRequestStatus:    "InvalidRequestStatus",
	ErrRequestNotFound:         "RequestNotFound",
	ErrInvalidChildAddress:     "InvalidChildAddress",
	ErrInvalidReason:           "InvalidReason",
}

func (e BuckyBankError) Code() uint32 {
	return uint32(e)
}

func (e BuckyBankError) Name() string {
	if name, ok := buckyBankErrorNames[e]; ok {
		return name
	}
	return "Unknown"
}

func (e BuckyBankError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Name(), uint32(e))
}

// AnchorError is a framework-level account or instruction validation failure.
type AnchorError uint32

const (
	ErrInstructionFallbackNotFound  AnchorError = 101
	ErrInstructionDidNotDeserialize AnchorError = 102

	ErrConstraintMut   AnchorError = 2000
	ErrConstraintSeeds AnchorError = 2006

	ErrAccountDiscriminatorMismatch AnchorError = 3002
	ErrAccountDidNotDeserialize     AnchorError = 3003
	ErrAccountNotEnoughKeys         AnchorError = 3005
	ErrAccountOwnedByWrongProgram   AnchorError = 3007
	ErrInvalidProgramId             AnchorError = 3008
	ErrAccountNotSigner             AnchorError = 3010
	ErrAccountNotInitialized        AnchorError = 3012
)

var anchorErrorNames = map[AnchorError]string{
	ErrInstructionFallbackNotFound:  "InstructionFallbackNotFound",
	ErrInstructionDidNotDeserialize: "InstructionDidNotDeserialize",
	ErrConstraintMut:                "ConstraintMut",
	ErrConstraintSeeds:              "ConstraintSeeds",
	ErrAccountDiscriminatorMismatch: "AccountDiscriminatorMismatch",
	ErrAccountDidNotDeserialize:     "AccountDidNotDeserialize",
	ErrAccountNotEnoughKeys:         "AccountNotEnoughKeys",
	ErrAccountOwnedByWrongProgram:   "AccountOwnedByWrongProgram",
	ErrInvalidProgramId:             "InvalidProgramId",
	ErrAccountNotSigner:             "AccountNotSigner",
	ErrAccountNotInitialized:        "AccountNotInitialized",
}

func (e AnchorError) Code() uint32 {
	return uint32(e)
}

func (e AnchorError) Name() string {
	if name, ok := anchorErrorNames[e]; ok {
		return name
	}
	return "Unknown"
}

func (e AnchorError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Name(), uint32(e))
}

// ErrorNameFromCode resolves a custom program error code to its name.
func ErrorNameFromCode(code uint32) string {
	if code >= uint32(ErrDepositTooSmall) {
		return BuckyBankError(code).Name()
	}
	return AnchorError(code).Name()
}
