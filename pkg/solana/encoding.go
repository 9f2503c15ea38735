package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/code-payments/bucky-bank-server/pkg/solana/shortvec"
)

const versionPrefixMask = 0x80

func (t Transaction) Marshal() []byte {
	var buf bytes.Buffer

	_, _ = shortvec.EncodeLen(&buf, len(t.Signatures))
	for _, sig := range t.Signatures {
		buf.Write(sig[:])
	}
	buf.Write(t.Message.Marshal())

	return buf.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	r := bytes.NewReader(b)

	count, err := shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read signature count")
	}

	t.Signatures = make([]Signature, count)
	for i := range t.Signatures {
		if _, err := io.ReadFull(r, t.Signatures[i][:]); err != nil {
			return errors.Wrapf(err, "failed to read signature %d", i)
		}
	}

	rest := make([]byte, r.Len())
	_, _ = r.Read(rest)
	return t.Message.Unmarshal(rest)
}

func (m Message) Marshal() []byte {
	var buf bytes.Buffer

	buf.WriteByte(m.Header.NumSignatures)
	buf.WriteByte(m.Header.NumReadonlySigned)
	buf.WriteByte(m.Header.NumReadOnly)

	_, _ = shortvec.EncodeLen(&buf, len(m.Accounts))
	for _, account := range m.Accounts {
		buf.Write(account)
	}

	buf.Write(m.RecentBlockhash[:])

	_, _ = shortvec.EncodeLen(&buf, len(m.Instructions))
	for _, ix := range m.Instructions {
		buf.WriteByte(ix.ProgramIndex)

		_, _ = shortvec.EncodeLen(&buf, len(ix.Accounts))
		buf.Write(ix.Accounts)

		_, _ = shortvec.EncodeLen(&buf, len(ix.Data))
		buf.Write(ix.Data)
	}

	return buf.Bytes()
}

// Unmarshal decodes a legacy message. Versioned messages are rejected.
func (m *Message) Unmarshal(b []byte) error {
	r := bytes.NewReader(b)

	var header [3]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return errors.Wrap(err, "failed to read header")
	}
	if header[0]&versionPrefixMask != 0 {
		return errors.Errorf("unsupported message version: %d", header[0]&^versionPrefixMask)
	}
	m.Header = Header{
		NumSignatures:     header[0],
		NumReadonlySigned: header[1],
		NumReadOnly:       header[2],
	}

	count, err := shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read account count")
	}
	m.Accounts = make([]ed25519.PublicKey, count)
	for i := range m.Accounts {
		m.Accounts[i] = make(ed25519.PublicKey, ed25519.PublicKeySize)
		if _, err := io.ReadFull(r, m.Accounts[i]); err != nil {
			return errors.Wrapf(err, "failed to read account %d", i)
		}
	}

	if _, err := io.ReadFull(r, m.RecentBlockhash[:]); err != nil {
		return errors.Wrap(err, "failed to read blockhash")
	}

	count, err = shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read instruction count")
	}
	m.Instructions = make([]CompiledInstruction, count)
	for i := range m.Instructions {
		ix := &m.Instructions[i]

		if ix.ProgramIndex, err = r.ReadByte(); err != nil {
			return errors.Wrapf(err, "failed to read program index of instruction %d", i)
		}

		if ix.Accounts, err = readVector(r); err != nil {
			return errors.Wrapf(err, "failed to read accounts of instruction %d", i)
		}
		if ix.Data, err = readVector(r); err != nil {
			return errors.Wrapf(err, "failed to read data of instruction %d", i)
		}

		if int(ix.ProgramIndex) >= len(m.Accounts) {
			return errors.Errorf("instruction %d program index %d out of range", i, ix.ProgramIndex)
		}
		for _, index := range ix.Accounts {
			if int(index) >= len(m.Accounts) {
				return errors.Errorf("instruction %d account index %d out of range", i, index)
			}
		}
	}

	if r.Len() > 0 {
		return errors.Errorf("%d trailing bytes after message", r.Len())
	}
	return nil
}

func readVector(r *bytes.Reader) ([]byte, error) {
	length, err := shortvec.DecodeLen(r)
	if err != nil {
		return nil, err
	}
	if length > r.Len() {
		return nil, io.ErrUnexpectedEOF
	}

	v := make([]byte, length)
	_, err = io.ReadFull(r, v)
	return v, err
}
