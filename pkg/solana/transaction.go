package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

// MaxTransactionSize is the largest serialized transaction accepted on the wire.
const MaxTransactionSize = 1232

var (
	ErrMissingSignatures = errors.New("transaction has no signatures")
	ErrInvalidSignature  = errors.New("transaction signature verification failed")
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

// Header counts the signer and read-only partitions of Message.Accounts.
type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

// Message is the signed portion of a legacy transaction.
type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles instructions into an unsigned transaction with payer
// as the first signer.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	metas := []AccountMeta{{PublicKey: payer, IsSigner: true, IsWritable: true, isPayer: true}}
	for _, ix := range instructions {
		metas = append(metas, AccountMeta{PublicKey: ix.Program, isProgram: true})
		metas = append(metas, ix.Accounts...)
	}

	metas = mergeAccountMetas(metas)
	sort.Sort(accountOrder(metas))

	var m Message
	for _, meta := range metas {
		m.Accounts = append(m.Accounts, meta.PublicKey)

		switch {
		case meta.IsSigner:
			m.Header.NumSignatures++
			if !meta.IsWritable {
				m.Header.NumReadonlySigned++
			}
		case !meta.IsWritable:
			m.Header.NumReadOnly++
		}
	}

	for _, ix := range instructions {
		compiled := CompiledInstruction{
			ProgramIndex: compiledIndex(m.Accounts, ix.Program),
			Data:         ix.Data,
		}
		for _, account := range ix.Accounts {
			compiled.Accounts = append(compiled.Accounts, compiledIndex(m.Accounts, account.PublicKey))
		}
		m.Instructions = append(m.Instructions, compiled)
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

// mergeAccountMetas collapses duplicate keys, keeping the strongest
// permissions requested for each.
func mergeAccountMetas(metas []AccountMeta) []AccountMeta {
	merged := make([]AccountMeta, 0, len(metas))
	for _, meta := range metas {
		meta.PublicKey = normalizeKey(meta.PublicKey)

		i := -1
		for j := range merged {
			if bytes.Equal(merged[j].PublicKey, meta.PublicKey) {
				i = j
				break
			}
		}
		if i < 0 {
			merged = append(merged, meta)
			continue
		}

		merged[i].IsSigner = merged[i].IsSigner || meta.IsSigner
		merged[i].IsWritable = merged[i].IsWritable || meta.IsWritable
		merged[i].isPayer = merged[i].isPayer || meta.isPayer
		merged[i].isProgram = merged[i].isProgram || meta.isProgram
	}
	return merged
}

// normalizeKey maps an empty key to ZeroAddress, which is how it's encoded
func normalizeKey(key ed25519.PublicKey) ed25519.PublicKey {
	if len(key) == 0 {
		return ZeroAddress
	}
	return key
}

// compiledIndex is the position of key in a message's account list. Every
// instruction key is in the list by construction, and a message can't address
// more than 256 accounts.
func compiledIndex(accounts []ed25519.PublicKey, key ed25519.PublicKey) byte {
	i := indexOf(accounts, normalizeKey(key))
	if i < 0 {
		panic(fmt.Sprintf("account %s missing from compiled message", base58.Encode(key)))
	}
	if i > 255 {
		panic(fmt.Sprintf("message references %d accounts, at most 256 are addressable", len(accounts)))
	}
	return byte(i)
}

func indexOf(accounts []ed25519.PublicKey, target ed25519.PublicKey) int {
	for i, account := range accounts {
		if bytes.Equal(account, target) {
			return i
		}
	}
	return -1
}

// Signature returns the first signature, which identifies the transaction.
func (t *Transaction) Signature() []byte {
	if len(t.Signatures) == 0 {
		return nil
	}
	return t.Signatures[0][:]
}

// Base58Signature is the text form of the identifying signature.
func (t *Transaction) Base58Signature() string {
	return base58.Encode(t.Signature())
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

// Sign fills in the signature slot of each signer.
func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	payload := t.Message.Marshal()

	for _, signer := range signers {
		pub := signer.Public().(ed25519.PublicKey)

		index := indexOf(t.Message.Accounts, pub)
		if index < 0 {
			return errors.Errorf("signer %s is not in the account list", base58.Encode(pub))
		}
		if index >= len(t.Signatures) {
			return errors.Errorf("account %s is not a required signer", base58.Encode(pub))
		}

		copy(t.Signatures[index][:], ed25519.Sign(signer, payload))
	}
	return nil
}

// VerifySignatures checks every required signature against the message.
func (t *Transaction) VerifySignatures() error {
	if len(t.Signatures) == 0 {
		return ErrMissingSignatures
	}
	if len(t.Signatures) != int(t.Message.Header.NumSignatures) || len(t.Message.Accounts) < len(t.Signatures) {
		return errors.Errorf("expected %d signatures, got %d", t.Message.Header.NumSignatures, len(t.Signatures))
	}

	payload := t.Message.Marshal()
	for i, sig := range t.Signatures {
		if !ed25519.Verify(t.Message.Accounts[i], payload, sig[:]) {
			return errors.Wrapf(ErrInvalidSignature, "signer %s", base58.Encode(t.Message.Accounts[i]))
		}
	}
	return nil
}

// IsSigner reports whether the account at index is a required signer.
func (m *Message) IsSigner(index int) bool {
	return index < int(m.Header.NumSignatures)
}

// IsWritable reports whether the account at index may be written.
func (m *Message) IsWritable(index int) bool {
	if index < 0 || index >= len(m.Accounts) {
		return false
	}

	numSigners := int(m.Header.NumSignatures)
	if index < numSigners {
		return index < numSigners-int(m.Header.NumReadonlySigned)
	}
	return index < len(m.Accounts)-int(m.Header.NumReadOnly)
}

// DecompileInstruction reconstructs the instruction at index.
func (m *Message) DecompileInstruction(index int) (Instruction, error) {
	if index < 0 || index >= len(m.Instructions) {
		return Instruction{}, errors.Errorf("instruction index %d out of range", index)
	}

	compiled := m.Instructions[index]
	if int(compiled.ProgramIndex) >= len(m.Accounts) {
		return Instruction{}, errors.Errorf("program index %d out of range", compiled.ProgramIndex)
	}

	ix := Instruction{
		Program: m.Accounts[compiled.ProgramIndex],
		Data:    compiled.Data,
	}
	for _, accountIndex := range compiled.Accounts {
		if int(accountIndex) >= len(m.Accounts) {
			return Instruction{}, errors.Errorf("account index %d out of range", accountIndex)
		}

		ix.Accounts = append(ix.Accounts, AccountMeta{
			PublicKey:  m.Accounts[accountIndex],
			IsSigner:   m.IsSigner(int(accountIndex)),
			IsWritable: m.IsWritable(int(accountIndex)),
		})
	}
	return ix, nil
}

func (t *Transaction) String() string {
	var sb strings.Builder
	sb.WriteString("Signatures:\n")
	for i, sig := range t.Signatures {
		fmt.Fprintf(&sb, "  %d: %s\n", i, base58.Encode(sig[:]))
	}
	sb.WriteString("Message:\n")
	fmt.Fprintf(&sb, "  Header: signatures=%d readonly_signed=%d readonly=%d\n",
		t.Message.Header.NumSignatures, t.Message.Header.NumReadonlySigned, t.Message.Header.NumReadOnly)
	sb.WriteString("  Accounts:\n")
	for i, account := range t.Message.Accounts {
		fmt.Fprintf(&sb, "    %d: %s\n", i, base58.Encode(account))
	}
	sb.WriteString("  Instructions:\n")
	for i, ix := range t.Message.Instructions {
		fmt.Fprintf(&sb, "    %d: program=%d accounts=%v data=%x\n", i, ix.ProgramIndex, ix.Accounts, ix.Data)
	}
	return sb.String()
}
