package buckybank

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventsFromLogs(t *testing.T) {
	bank := newKey(t)
	request := newKey(t)
	child := newKey(t)
	parent := newKey(t)

	emitted := []Event{
		&BankCreatedEvent{BankId: bank, Name: "trip", Parent: parent, Child: child, TargetAmount: 100, CreatedAtMs: 1, DeadlineMs: 2, DurationDays: 3},
		&DepositMadeEvent{BankId: bank, Amount: 60, Depositor: parent, CreatedAtMs: 4},
		&WithdrawalRequestedEvent{RequestId: request, BankId: bank, Amount: 30, Requester: child, Reason: "snacks", Status: WithdrawalStatusPending, ApprovedBy: parent, CreatedAtMs: 5},
		&WithdrawalApprovedEvent{RequestId: request, BankId: bank, Amount: 30, ApprovedBy: parent, Requester: child, Reason: "ok", CreatedAtMs: 6},
		&WithdrawalRejectedEvent{RequestId: request, BankId: bank, Amount: 30, Requester: child, RejectedBy: parent, Reason: "no", CreatedAtMs: 7},
		&WithdrawalCompletedEvent{RequestId: request, BankId: bank, Amount: 30, LeftBalance: 75, Withdrawer: child, CreatedAtMs: 8},
	}

	logs := []string{
		"Program 5uykfXh94mwTz2Vxb2Y7RpntvanSkcWq4hENoDM4duVf invoke [1]",
		InstructionLog(InstructionTypeDeposit),
		EventLog([]byte("not an event from this program")),
	}
	for _, event := range emitted {
		logs = append(logs, EventLog(event.Marshal()))
	}

	parsed, err := ParseEventsFromLogs(logs)
	require.NoError(t, err)
	require.Len(t, parsed, len(emitted))
	for i := range emitted {
		assert.Equal(t, emitted[i], parsed[i])
		assert.EqualValues(t, bank, parsed[i].Bank())
	}

	assert.Equal(t, "Program log: Instruction: Deposit", logs[1])
	assert.Equal(t, "EventWithdrawalCompleted", parsed[5].Type().String())
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent([]byte{1, 2, 3})
	assert.Equal(t, ErrInvalidEventData, err)

	data := (&DepositMadeEvent{BankId: newKey(t), Depositor: newKey(t)}).Marshal()
	_, err = DecodeEvent(data[:len(data)-1])
	assert.True(t, errors.Is(err, ErrInvalidEventData))

	_, err = ParseEventsFromLogs([]string{EventLogPrefix + "***"})
	assert.Error(t, err)
}

func TestErrors(t *testing.T) {
	assert.EqualValues(t, 6000, ErrDepositTooSmall.Code())
	assert.EqualValues(t, 6014, ErrRequestNotFound.Code())
	assert.EqualValues(t, 6016, ErrInvalidReason.Code())
	assert.Equal(t, "NotParent (6012)", ErrNotParent.Error())

	assert.Equal(t, "InsufficientFunds", ErrorNameFromCode(6001))
	assert.Equal(t, "ConstraintSeeds", ErrorNameFromCode(2006))
	assert.Equal(t, "Unknown", ErrorNameFromCode(7000))
}
