// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package signer_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/BoostyLabs/utxobuilder/bitcoin/networks"
	"github.com/BoostyLabs/utxobuilder/bitcoin/script"
	"github.com/BoostyLabs/utxobuilder/bitcoin/signer"
)

func TestKeyPair(t *testing.T) {
	privKey := append(make([]byte, 31), 0x01)

	t.Run("from bytes", func(t *testing.T) {
		keyPair, err := signer.KeyPairFromBytes(privKey, true, networks.MainNet)
		require.NoError(t, err)
		require.Equal(t, "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", hex.EncodeToString(keyPair.PublicKey()))
		require.Same(t, networks.MainNet, keyPair.Network())

		wif, err := keyPair.WIF()
		require.NoError(t, err)
		require.Equal(t, "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn", wif)

		uncompressed, err := signer.KeyPairFromBytes(privKey, false, networks.MainNet)
		require.NoError(t, err)
		require.Len(t, uncompressed.PublicKey(), 65)

		wif, err = uncompressed.WIF()
		require.NoError(t, err)
		require.Equal(t, "5HpHagT65TZzG1PH3CSu63k8DbpvD8s5ip4nEB3kEsreAnchuDf", wif)
	})

	t.Run("invalid bytes", func(t *testing.T) {
		_, err := signer.KeyPairFromBytes(make([]byte, 32), true, networks.MainNet)
		require.ErrorIs(t, err, signer.ErrInvalidPrivateKey)

		_, err = signer.KeyPairFromBytes(bytes.Repeat([]byte{0xff}, 32), true, networks.MainNet)
		require.ErrorIs(t, err, signer.ErrInvalidPrivateKey)

		_, err = signer.KeyPairFromBytes(privKey[1:], true, networks.MainNet)
		require.ErrorIs(t, err, signer.ErrInvalidPrivateKey)
	})

	t.Run("from wif", func(t *testing.T) {
		keyPair, err := signer.KeyPairFromWIF("KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn", networks.MainNet)
		require.NoError(t, err)
		require.True(t, keyPair.Compressed())
		require.Equal(t, privKey, keyPair.PrivateKey().Serialize())

		_, err = signer.KeyPairFromWIF("KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn", networks.TestNet)
		require.ErrorIs(t, err, signer.ErrWrongNetwork)

		testnet, err := signer.KeyPairFromWIF("91avARGdfge8E4tZfYLoxeJ5sGBdNJQH4kvjJoQFacbgx3cTMqe", networks.TestNet)
		require.NoError(t, err)
		require.False(t, testnet.Compressed())
	})
}

func TestSign(t *testing.T) {
	keyPair, err := signer.KeyPairFromBytes(append(make([]byte, 31), 0x01), true, networks.MainNet)
	require.NoError(t, err)

	hash := sha256.Sum256([]byte("utxobuilder"))

	t.Run("matches rfc6979 signing", func(t *testing.T) {
		sig, err := keyPair.Sign(hash[:])
		require.NoError(t, err)
		require.Len(t, sig, 64)

		expected := ecdsa.Sign(keyPair.PrivateKey(), hash[:])

		parsed, err := script.ParseSignature(sig)
		require.NoError(t, err)
		require.Equal(t, expected.Serialize(), parsed.Serialize())
		require.True(t, keyPair.Verify(hash[:], sig))
		require.True(t, keyPair.Verify(hash[:], expected.Serialize()))
	})

	t.Run("invalid digest", func(t *testing.T) {
		_, err := keyPair.Sign(hash[:31])
		require.ErrorIs(t, err, signer.ErrInvalidHash)

		_, err = keyPair.SignLowR(nil)
		require.ErrorIs(t, err, signer.ErrInvalidHash)
	})

	t.Run("wrong digest does not verify", func(t *testing.T) {
		sig, err := keyPair.Sign(hash[:])
		require.NoError(t, err)

		other := sha256.Sum256([]byte("other"))
		require.False(t, keyPair.Verify(other[:], sig))
	})
}

func TestSignLowRProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "key")
		message := rapid.SliceOf(rapid.Byte()).Draw(t, "message")

		keyPair, err := signer.KeyPairFromBytes(seed, true, networks.TestNet)
		if err != nil {
			t.Skip("seed is not a valid private key")
		}

		hash := sha256.Sum256(message)
		sig, err := keyPair.SignLowR(hash[:])
		if err != nil {
			t.Fatalf("sign: %v", err)
		}

		if sig[0] > 0x7f {
			t.Fatalf("r has high bit set: %x", sig)
		}
		if !keyPair.Verify(hash[:], sig) {
			t.Fatalf("signature does not verify")
		}

		var s btcec.ModNScalar
		s.SetByteSlice(sig[32:])
		if s.IsOverHalfOrder() {
			t.Fatalf("s is not canonical")
		}
	})
}
