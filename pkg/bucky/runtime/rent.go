package runtime

const (
	// AccountStorageOverhead is the per account metadata size charged for rent
	AccountStorageOverhead = 128

	LamportsPerByteYear = 3480

	// ExemptionThreshold is the number of years of rent an account holds to
	// be exempt from collection
	ExemptionThreshold = 2

	// MaxPermittedDataIncrease bounds how much an account may grow within a
	// single instruction
	MaxPermittedDataIncrease = 10 * 1024

	// MaxPermittedDataLength bounds the size of any account
	MaxPermittedDataLength = 10 * 1024 * 1024
)

// MinimumBalanceForRentExemption returns the lamports an account holding
// dataLen bytes must keep.
func MinimumBalanceForRentExemption(dataLen int) uint64 {
	return uint64(AccountStorageOverhead+dataLen) * LamportsPerByteYear * ExemptionThreshold
}

// IsRentExempt returns whether an account with lamports and dataLen bytes is
// rent exempt.
func IsRentExempt(lamports uint64, dataLen int) bool {
	return lamports >= MinimumBalanceForRentExemption(dataLen)
}
