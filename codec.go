// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/luxfi/ledger-radix-go/hdpath"
	"github.com/luxfi/ledger-radix-go/semver"
)

const (
	// PurposeBIP44 and CoinTypeRadix are pinned by the device application.
	PurposeBIP44  = 44
	CoinTypeRadix = 536

	radixPathDepth = 5

	pathPayloadSize = 3 * 4
	publicKeySize   = btcec.PubKeyBytesLenCompressed
	// 0x04 || x || y
	uncompressedKeySize    = 1 + 2*32
	sharedPointSize        = uncompressedKeySize - 1
	signHashPayloadSize    = pathPayloadSize + chainhash.HashSize
	keyExchangePayloadSize = pathPayloadSize + uncompressedKeySize
)

// RadixPath builds m/44'/536'/account'/change/address'.
func RadixPath(account, change, address int64) (hdpath.Path, error) {
	purpose, _ := hdpath.NewComponent(PurposeBIP44, true, 1)
	coinType, _ := hdpath.NewComponent(CoinTypeRadix, true, 2)

	a, err := hdpath.NewComponent(account, true, 3)
	if err != nil {
		return hdpath.Path{}, err
	}
	c, err := hdpath.NewComponent(change, false, 4)
	if err != nil {
		return hdpath.Path{}, err
	}
	i, err := hdpath.NewComponent(address, true, 5)
	if err != nil {
		return hdpath.Path{}, err
	}

	return hdpath.NewPath(purpose, coinType, a, c, i)
}

// encodePath serializes the account, change and address indexes. Purpose and
// coin type are implied and the device hardens account and address itself,
// so the pre-hardening indexes go on the wire. The account must be hardened
// and the change must not be; the address is accepted either way.
func encodePath(path hdpath.Path) ([]byte, error) {
	components := path.Components()
	if len(components) != radixPathDepth {
		return nil, fmt.Errorf("%w: expected %d components, got %d in %q",
			ErrMalformedPath, radixPathDepth, len(components), path)
	}
	purpose, coinType := components[0], components[1]
	if !purpose.Hardened() || purpose.Index() != PurposeBIP44 ||
		!coinType.Hardened() || coinType.Index() != CoinTypeRadix {
		return nil, fmt.Errorf("%w: %q is not a Radix path", ErrMalformedPath, path)
	}
	if account, change := components[2], components[3]; !account.Hardened() || change.Hardened() {
		return nil, fmt.Errorf("%w: %q must have a hardened account and a plain change index", ErrMalformedPath, path)
	}

	buf := make([]byte, 0, pathPayloadSize)
	for _, c := range components[2:] {
		buf = binary.BigEndian.AppendUint32(buf, uint32(c.Index()))
	}
	return buf, nil
}

// decodePath is the inverse of encodePath and always yields the hardened
// account and address the device derives from.
func decodePath(data []byte) (hdpath.Path, error) {
	if len(data) != pathPayloadSize {
		return hdpath.Path{}, fmt.Errorf("%w: path payload of %d bytes", ErrMalformedPath, len(data))
	}
	account := int32(binary.BigEndian.Uint32(data[0:4]))
	change := int32(binary.BigEndian.Uint32(data[4:8]))
	address := int32(binary.BigEndian.Uint32(data[8:12]))
	return RadixPath(int64(account), int64(change), int64(address))
}

func confirmationParam(requireConfirmation bool) byte {
	if requireConfirmation {
		return p1Confirmation
	}
	return p1NoConfirmation
}

func newRequest(ins Instruction, p1 byte, data []byte) Request {
	return Request{
		Cla:                 CLA,
		Ins:                 ins,
		P1:                  p1,
		P2:                  0x00,
		Data:                data,
		ExpectedStatusCodes: []StatusCode{StatusOK},
	}
}

func getVersionRequest() Request {
	return newRequest(InsGetVersion, p1NoConfirmation, nil)
}

func getPublicKeyRequest(path hdpath.Path, requireConfirmation bool) (Request, error) {
	data, err := encodePath(path)
	if err != nil {
		return Request{}, err
	}
	return newRequest(InsGetPublicKey, confirmationParam(requireConfirmation), data), nil
}

func signHashRequest(path hdpath.Path, hash chainhash.Hash, requireConfirmation bool) (Request, error) {
	data, err := encodePath(path)
	if err != nil {
		return Request{}, err
	}
	data = append(data, hash[:]...)
	return newRequest(InsSignHash, confirmationParam(requireConfirmation), data), nil
}

func keyExchangeRequest(path hdpath.Path, publicKeyOfOtherParty *btcec.PublicKey, requireConfirmation bool) (Request, error) {
	if publicKeyOfOtherParty == nil {
		return Request{}, fmt.Errorf("%w: public key of other party is nil", ErrInvalidArgument)
	}
	data, err := encodePath(path)
	if err != nil {
		return Request{}, err
	}
	data = append(data, publicKeyOfOtherParty.SerializeUncompressed()...)
	return newRequest(InsKeyExchange, confirmationParam(requireConfirmation), data), nil
}

// checkStatus fails unless the response carries an accepted status word.
func checkStatus(req Request, resp Response) error {
	if req.Accepts(resp.StatusCode) {
		return nil
	}
	return &StatusCodeError{
		Instruction: req.Ins,
		Code:        resp.StatusCode,
		Expected:    req.ExpectedStatusCodes,
	}
}

func decodeVersion(resp Response) (semver.SemVer, error) {
	v, err := semver.FromBytes(resp.Data)
	if err != nil {
		return semver.SemVer{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return v, nil
}

func decodePublicKey(resp Response) (*btcec.PublicKey, error) {
	if len(resp.Data) != publicKeySize {
		return nil, fmt.Errorf("%w: public key of %d bytes, expected %d",
			ErrMalformedResponse, len(resp.Data), publicKeySize)
	}
	publicKey, err := btcec.ParsePubKey(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return publicKey, nil
}

func decodeSignature(resp Response) (*ecdsa.Signature, error) {
	signature, err := ecdsa.ParseDERSignature(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return signature, nil
}

func decodeSharedPoint(resp Response) (*btcec.PublicKey, error) {
	if len(resp.Data) != sharedPointSize {
		return nil, fmt.Errorf("%w: shared point of %d bytes, expected %d",
			ErrMalformedResponse, len(resp.Data), sharedPointSize)
	}
	uncompressed := make([]byte, 0, uncompressedKeySize)
	uncompressed = append(uncompressed, 0x04)
	uncompressed = append(uncompressed, resp.Data...)
	point, err := btcec.ParsePubKey(uncompressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return point, nil
}

// SharedPointBytes renders a key exchange result as x||y.
func SharedPointBytes(point *btcec.PublicKey) []byte {
	return point.SerializeUncompressed()[1:]
}
