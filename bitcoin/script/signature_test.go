// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package script_test

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/utxobuilder/bitcoin/script"
)

func TestEncodeSignature(t *testing.T) {
	privKey, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x01}, 32))
	hash := sha256.Sum256([]byte("digest"))
	der := ecdsa.Sign(privKey, hash[:]).Serialize()

	t.Run("der", func(t *testing.T) {
		encoded, err := script.EncodeSignature(der, txscript.SigHashAll)
		require.NoError(t, err)
		require.Equal(t, append(append([]byte{}, der...), 0x01), encoded)
		require.True(t, script.IsCanonicalScriptSignature(encoded))
		require.True(t, script.VerifySignature(encoded, hash[:], privKey.PubKey().SerializeCompressed()))

		decoded, hashType, err := script.DecodeSignature(encoded)
		require.NoError(t, err)
		require.Equal(t, der, decoded)
		require.Equal(t, txscript.SigHashAll, hashType)
	})

	t.Run("compact", func(t *testing.T) {
		compact := bytes.Repeat([]byte{0x5f}, 64)

		encoded, err := script.EncodeSignature(compact, txscript.SigHashSingle|txscript.SigHashAnyOneCanPay)
		require.NoError(t, err)
		require.Equal(t, byte(0x83), encoded[len(encoded)-1])
		require.True(t, script.IsCanonicalScriptSignature(encoded))

		// 0x30 len 0x02 0x20 r 0x02 0x20 s.
		require.Len(t, encoded, 2+2+32+2+32+1)
		require.Equal(t, compact[:32], encoded[4:36])
		require.Equal(t, script.SigHashTypeOf(encoded), txscript.SigHashSingle|txscript.SigHashAnyOneCanPay)
	})

	t.Run("high s is normalized", func(t *testing.T) {
		low := bytes.Repeat([]byte{0x5f}, 64)

		var s btcec.ModNScalar
		s.SetByteSlice(low[32:])
		s.Negate()

		high := append([]byte{}, low...)
		s.PutBytesUnchecked(high[32:])

		expected, err := script.EncodeSignature(low, txscript.SigHashAll)
		require.NoError(t, err)

		encoded, err := script.EncodeSignature(high, txscript.SigHashAll)
		require.NoError(t, err)
		require.Equal(t, expected, encoded)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := script.EncodeSignature(der, 0x04)
		require.ErrorIs(t, err, script.ErrInvalidHashType)

		_, err = script.EncodeSignature(make([]byte, 64), txscript.SigHashAll)
		require.ErrorIs(t, err, script.ErrInvalidSignature)

		_, err = script.EncodeSignature([]byte{0x30, 0x00}, txscript.SigHashAll)
		require.ErrorIs(t, err, script.ErrInvalidSignature)

		_, _, err = script.DecodeSignature(nil)
		require.ErrorIs(t, err, script.ErrInvalidSignature)

		require.False(t, script.IsCanonicalScriptSignature(append(append([]byte{}, der...), 0x00)))
	})
}

func TestIsDefinedHashType(t *testing.T) {
	for _, hashType := range []txscript.SigHashType{0x01, 0x02, 0x03, 0x81, 0x82, 0x83} {
		require.True(t, script.IsDefinedHashType(hashType))
	}
	for _, hashType := range []txscript.SigHashType{0x00, 0x04, 0x80, 0x84, 0x41} {
		require.False(t, script.IsDefinedHashType(hashType))
	}
}

func TestIsCanonicalPubKey(t *testing.T) {
	privKey, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x02}, 32))

	require.True(t, script.IsCanonicalPubKey(privKey.PubKey().SerializeCompressed()))
	require.True(t, script.IsCanonicalPubKey(privKey.PubKey().SerializeUncompressed()))
	require.True(t, script.IsCompressedPubKey(privKey.PubKey().SerializeCompressed()))
	require.False(t, script.IsCompressedPubKey(privKey.PubKey().SerializeUncompressed()))
	require.False(t, script.IsCanonicalPubKey(make([]byte, 33)))
	require.False(t, script.IsCanonicalPubKey([]byte{0x02, 0x01}))
	require.False(t, script.IsCanonicalPubKey(privKey.PubKey().SerializeUncompressed()[:64]))
}
