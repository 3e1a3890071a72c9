// Package sign provides the signing primitives behind the signature auth scheme.
//
// A Signer never exposes its private key; callers only get signatures and the
// public key. Messages are hashed with Keccak-256 before signing, so a
// gateway can recover the signer's address from (message, signature) alone.
//
//	signer, err := sign.NewEthereumSigner(privateKeyHex)
//	if err != nil {
//	    return err
//	}
//	sig, err := sign.SignMessage(signer, []byte("1700000000000"))
//	addr, err := sign.RecoverAddress([]byte("1700000000000"), sig)
package sign

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Signer signs pre-hashed data.
type Signer interface {
	PublicKey() PublicKey
	// Sign signs a 32-byte hash.
	Sign(hash []byte) (Signature, error)
}

// PublicKey is the public half of a Signer.
type PublicKey interface {
	Address() Address
	Bytes() []byte
}

// Address identifies a signer.
type Address interface {
	fmt.Stringer

	Equals(other Address) bool
}

// Signature is a raw signature, hex-encoded in JSON and in String.
type Signature []byte

func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Signature) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	decoded, err := hexutil.Decode(hexStr)
	if err != nil {
		return fmt.Errorf("invalid signature hex: %w", err)
	}
	*s = decoded
	return nil
}

func (s Signature) String() string {
	return hexutil.Encode(s)
}

// HashMessage returns the Keccak-256 hash that SignMessage signs.
func HashMessage(msg []byte) []byte {
	return ethcrypto.Keccak256(msg)
}

// SignMessage hashes msg and signs the hash with signer.
func SignMessage(signer Signer, msg []byte) (Signature, error) {
	sig, err := signer.Sign(HashMessage(msg))
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return sig, nil
}
