package solana

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// TransactionErrorKey names a transaction-level failure in the JSON form
// reported by validators.
type TransactionErrorKey string

const (
	TransactionErrorInternal                 TransactionErrorKey = "Internal"
	TransactionErrorAccountInUse             TransactionErrorKey = "AccountInUse"
	TransactionErrorAccountLoadedTwice       TransactionErrorKey = "AccountLoadedTwice"
	TransactionErrorAccountNotFound          TransactionErrorKey = "AccountNotFound"
	TransactionErrorProgramAccountNotFound   TransactionErrorKey = "ProgramAccountNotFound"
	TransactionErrorInsufficientFundsForFee  TransactionErrorKey = "InsufficientFundsForFee"
	TransactionErrorDuplicateSignature       TransactionErrorKey = "DuplicateSignature"
	TransactionErrorInstructionError         TransactionErrorKey = "InstructionError"
	TransactionErrorMissingSignatureForFee   TransactionErrorKey = "MissingSignatureForFee"
	TransactionErrorInvalidAccountIndex      TransactionErrorKey = "InvalidAccountIndex"
	TransactionErrorSignatureFailure         TransactionErrorKey = "SignatureFailure"
	TransactionErrorSanitizeFailure          TransactionErrorKey = "SanitizeFailure"
	TransactionErrorTooManyAccountLocks      TransactionErrorKey = "TooManyAccountLocks"
	TransactionErrorInvalidRentPayingAccount TransactionErrorKey = "InvalidRentPayingAccount"
	TransactionErrorBlockhashNotFound        TransactionErrorKey = "BlockhashNotFound"
	TransactionErrorAlreadyProcessed         TransactionErrorKey = "AlreadyProcessed"
)

// InstructionErrorKey names a built-in instruction failure.
type InstructionErrorKey string

const (
	InstructionErrorGenericError                InstructionErrorKey = "GenericError"
	InstructionErrorInvalidArgument             InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData      InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData          InstructionErrorKey = "InvalidAccountData"
	InstructionErrorAccountDataTooSmall         InstructionErrorKey = "AccountDataTooSmall"
	InstructionErrorInsufficientFunds           InstructionErrorKey = "InsufficientFunds"
	InstructionErrorIncorrectProgramID          InstructionErrorKey = "IncorrectProgramId"
	InstructionErrorMissingRequiredSignature    InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorAccountAlreadyInitialized   InstructionErrorKey = "AccountAlreadyInitialized"
	InstructionErrorUninitializedAccount        InstructionErrorKey = "UninitializedAccount"
	InstructionErrorUnbalancedInstruction       InstructionErrorKey = "UnbalancedInstruction"
	InstructionErrorModifiedProgramID           InstructionErrorKey = "ModifiedProgramId"
	InstructionErrorExternalAccountLamportSpend InstructionErrorKey = "ExternalAccountLamportSpend"
	InstructionErrorExternalAccountDataModified InstructionErrorKey = "ExternalAccountDataModified"
	InstructionErrorReadonlyLamportChange       InstructionErrorKey = "ReadonlyLamportChange"
	InstructionErrorReadonlyDataModified        InstructionErrorKey = "ReadonlyDataModified"
	InstructionErrorNotEnoughAccountKeys        InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorAccountDataSizeChanged      InstructionErrorKey = "AccountDataSizeChanged"
	InstructionErrorCustom                      InstructionErrorKey = "Custom"
	InstructionErrorUnsupportedProgramID        InstructionErrorKey = "UnsupportedProgramId"
	InstructionErrorMissingAccount              InstructionErrorKey = "MissingAccount"
	InstructionErrorInvalidSeeds                InstructionErrorKey = "InvalidSeeds"
	InstructionErrorInvalidRealloc              InstructionErrorKey = "InvalidRealloc"
	InstructionErrorPrivilegeEscalation         InstructionErrorKey = "PrivilegeEscalation"
	InstructionErrorAccountAlreadyInUse         InstructionErrorKey = "AccountAlreadyInUse"
	InstructionErrorArithmeticOverflow          InstructionErrorKey = "ArithmeticOverflow"
	InstructionErrorCallDepth                   InstructionErrorKey = "CallDepth"
	InstructionErrorExecutableModified          InstructionErrorKey = "ExecutableModified"
)

// Error allows built-in failures to be returned directly by program handlers.
func (k InstructionErrorKey) Error() string {
	return string(k)
}

// CustomError is a program-defined error code.
type CustomError uint32

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: 0x%x", uint32(c))
}

// InstructionError attributes a failure to the instruction at Index.
type InstructionError struct {
	Index int
	Err   error
}

// NewInstructionError wraps a built-in instruction failure.
func NewInstructionError(index int, key InstructionErrorKey) *InstructionError {
	return &InstructionError{Index: index, Err: key}
}

// NewCustomInstructionError wraps a program error code.
func NewCustomInstructionError(index int, code uint32) *InstructionError {
	return &InstructionError{Index: index, Err: CustomError(code)}
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: %v", i.Index, i.Err)
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	if i.Err == nil {
		return ""
	}
	if i.CustomError() != nil {
		return InstructionErrorCustom
	}
	if key, ok := i.Err.(InstructionErrorKey); ok {
		return key
	}
	return InstructionErrorKey(i.Err.Error())
}

func (i InstructionError) CustomError() *CustomError {
	if ce, ok := i.Err.(CustomError); ok {
		return &ce
	}
	return nil
}

func (i InstructionError) raw() interface{} {
	var inner interface{} = string(i.ErrorKey())
	if ce := i.CustomError(); ce != nil {
		inner = map[string]interface{}{string(InstructionErrorCustom): uint32(*ce)}
	}
	return []interface{}{i.Index, inner}
}

// TransactionError is the outcome of a failed transaction.
type TransactionError struct {
	key              TransactionErrorKey
	instructionError *InstructionError
}

// NewTransactionError returns a transaction-level failure.
func NewTransactionError(key TransactionErrorKey) *TransactionError {
	return &TransactionError{key: key}
}

// TransactionErrorFromInstructionError lifts an instruction failure.
func TransactionErrorFromInstructionError(err *InstructionError) *TransactionError {
	return &TransactionError{
		key:              TransactionErrorInstructionError,
		instructionError: err,
	}
}

func (t TransactionError) Error() string {
	if t.instructionError != nil {
		return t.instructionError.Error()
	}
	return string(t.key)
}

func (t TransactionError) ErrorKey() TransactionErrorKey {
	return t.key
}

func (t TransactionError) InstructionError() *InstructionError {
	return t.instructionError
}

// CustomError returns the program error code, if the failure carries one.
func (t TransactionError) CustomError() *CustomError {
	if t.instructionError == nil {
		return nil
	}
	return t.instructionError.CustomError()
}

func (t TransactionError) raw() interface{} {
	if t.instructionError != nil {
		return map[string]interface{}{string(TransactionErrorInstructionError): t.instructionError.raw()}
	}
	return string(t.key)
}

// JSONString renders the error in validator JSON form, for example
// {"InstructionError":[0,{"Custom":6000}]}.
func (t TransactionError) JSONString() (string, error) {
	b, err := json.Marshal(t.raw())
	return string(b), err
}

// ParseTransactionErrorJSON is the inverse of JSONString.
func ParseTransactionErrorJSON(value string) (*TransactionError, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, errors.Wrap(err, "invalid transaction error json")
	}
	return ParseTransactionError(raw)
}

// ParseTransactionError decodes a generic JSON value into a TransactionError.
func ParseTransactionError(raw interface{}) (*TransactionError, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return NewTransactionError(TransactionErrorKey(t)), nil
	case map[string]interface{}:
		if len(t) != 1 {
			return nil, errors.Errorf("invalid transaction error size: %d", len(t))
		}

		for k, v := range t {
			if k != string(TransactionErrorInstructionError) {
				return NewTransactionError(TransactionErrorKey(k)), nil
			}

			ixErr, err := parseInstructionError(v)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse instruction error")
			}
			return TransactionErrorFromInstructionError(ixErr), nil
		}
	}
	return nil, errors.Errorf("unhandled transaction error type %T", raw)
}

func parseInstructionError(v interface{}) (*InstructionError, error) {
	tuple, ok := v.([]interface{})
	if !ok || len(tuple) != 2 {
		return nil, errors.New("instruction error must be a two element tuple")
	}

	index, err := parseJSONNumber(tuple[0])
	if err != nil {
		return nil, err
	}

	switch t := tuple[1].(type) {
	case string:
		return NewInstructionError(index, InstructionErrorKey(t)), nil
	case map[string]interface{}:
		if len(t) != 1 {
			return nil, errors.Errorf("invalid instruction error size: %d", len(t))
		}
		for k, v := range t {
			if k != string(InstructionErrorCustom) {
				return NewInstructionError(index, InstructionErrorKey(k)), nil
			}

			code, err := parseJSONNumber(v)
			if err != nil {
				return nil, errors.Wrap(err, "invalid custom error code")
			}
			return NewCustomInstructionError(index, uint32(code)), nil
		}
	}
	return nil, errors.Errorf("unhandled instruction error type %T", tuple[1])
}

func parseJSONNumber(v interface{}) (int, error) {
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, errors.Errorf("non integer value: %v", v)
		}
		return int(n), nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, errors.Errorf("non numeric value: %v", v)
		}
		return int(n), nil
	case float64:
		return int(t), nil
	}
	return 0, errors.Errorf("non numeric value: %v", v)
}
