// Copyright 2020 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package chain

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// MessageHeaderLength is the size of the fixed message prefix preceding the body.
const MessageHeaderLength = 1 + 4 + 4 + 32 + 4 + 32

// RawMessage is a message as it was committed into the origin mailbox tree.
type RawMessage struct {
	Nonce uint32
	Bytes []byte
}

// ID returns the leaf value of the message in the origin tree.
func (m RawMessage) ID() common.Hash {
	return crypto.Keccak256Hash(m.Bytes)
}

// Message is the decoded form of RawMessage.Bytes.
type Message struct {
	Version     uint8
	Nonce       uint32
	Origin      Domain
	Sender      common.Hash
	Destination Domain
	Recipient   common.Hash
	Body        []byte
}

func (m *Message) Encode() []byte {
	buf := make([]byte, MessageHeaderLength, MessageHeaderLength+len(m.Body))
	buf[0] = m.Version
	binary.BigEndian.PutUint32(buf[1:5], m.Nonce)
	binary.BigEndian.PutUint32(buf[5:9], uint32(m.Origin))
	copy(buf[9:41], m.Sender[:])
	binary.BigEndian.PutUint32(buf[41:45], uint32(m.Destination))
	copy(buf[45:77], m.Recipient[:])
	return append(buf, m.Body...)
}

func (m *Message) ID() common.Hash {
	return crypto.Keccak256Hash(m.Encode())
}

// Raw wraps the encoded message with its nonce.
func (m *Message) Raw() RawMessage {
	return RawMessage{Nonce: m.Nonce, Bytes: m.Encode()}
}

func DecodeMessage(data []byte) (*Message, error) {
	if len(data) < MessageHeaderLength {
		return nil, fmt.Errorf("message too short: got %d bytes, need at least %d", len(data), MessageHeaderLength)
	}

	m := Message{
		Version:     data[0],
		Nonce:       binary.BigEndian.Uint32(data[1:5]),
		Origin:      Domain(binary.BigEndian.Uint32(data[5:9])),
		Sender:      common.BytesToHash(data[9:41]),
		Destination: Domain(binary.BigEndian.Uint32(data[41:45])),
		Recipient:   common.BytesToHash(data[45:77]),
		Body:        append([]byte{}, data[77:]...),
	}

	return &m, nil
}

// Decode parses the raw bytes and checks the embedded nonce against the tree position.
func (m RawMessage) Decode() (*Message, error) {
	msg, err := DecodeMessage(m.Bytes)
	if err != nil {
		return nil, err
	}
	if msg.Nonce != m.Nonce {
		return nil, fmt.Errorf("message nonce %d does not match leaf index %d", msg.Nonce, m.Nonce)
	}
	return msg, nil
}
