package buckybank

type BankStatus uint8

const (
	BankStatusActive BankStatus = iota
	BankStatusCompleted
	BankStatusFailed
)

func (s BankStatus) String() string {
	switch s {
	case BankStatusActive:
		return "active"
	case BankStatusCompleted:
		return "completed"
	case BankStatusFailed:
		return "failed"
	}
	return "unknown"
}

func (s BankStatus) IsValid() bool {
	return s <= BankStatusFailed
}

type WithdrawalStatus uint8

const (
	WithdrawalStatusPending WithdrawalStatus = iota
	WithdrawalStatusApproved
	WithdrawalStatusRejected
	WithdrawalStatusWithdrawed
)

func (s WithdrawalStatus) String() string {
	switch s {
	case WithdrawalStatusPending:
		return "pending"
	case WithdrawalStatusApproved:
		return "approved"
	case WithdrawalStatusRejected:
		return "rejected"
	case WithdrawalStatusWithdrawed:
		return "withdrawed"
	}
	return "unknown"
}

func (s WithdrawalStatus) IsValid() bool {
	return s <= WithdrawalStatusWithdrawed
}

// IsTerminal reports whether no instruction can move the request further.
func (s WithdrawalStatus) IsTerminal() bool {
	return s == WithdrawalStatusRejected || s == WithdrawalStatusWithdrawed
}
