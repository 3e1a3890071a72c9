package sign

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	_ Signer    = (*EthereumSigner)(nil)
	_ PublicKey = EthereumPublicKey{}
	_ Address   = EthereumAddress{}
)

// EthereumAddress is a 20-byte secp256k1 address.
type EthereumAddress struct{ common.Address }

func (a EthereumAddress) String() string { return a.Address.Hex() }

// Equals compares by value for Ethereum addresses and by string otherwise.
func (a EthereumAddress) Equals(other Address) bool {
	if o, ok := other.(EthereumAddress); ok {
		return a.Address == o.Address
	}
	return strings.EqualFold(a.String(), other.String())
}

// NewEthereumAddressFromHex parses a 0x-prefixed hex address.
func NewEthereumAddressFromHex(hexAddr string) (EthereumAddress, error) {
	if !common.IsHexAddress(hexAddr) {
		return EthereumAddress{}, fmt.Errorf("invalid ethereum address: %q", hexAddr)
	}
	return EthereumAddress{common.HexToAddress(hexAddr)}, nil
}

// EthereumPublicKey wraps a secp256k1 public key.
type EthereumPublicKey struct{ *ecdsa.PublicKey }

func (p EthereumPublicKey) Address() Address {
	return EthereumAddress{ethcrypto.PubkeyToAddress(*p.PublicKey)}
}

func (p EthereumPublicKey) Bytes() []byte { return ethcrypto.FromECDSAPub(p.PublicKey) }

// EthereumSigner signs with a secp256k1 private key and emits 65-byte
// signatures with V in {27, 28}.
type EthereumSigner struct {
	privateKey *ecdsa.PrivateKey
	publicKey  EthereumPublicKey
}

// NewEthereumSigner parses a hex private key, with or without 0x prefix.
func NewEthereumSigner(privateKeyHex string) (*EthereumSigner, error) {
	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("could not parse ethereum private key: %w", err)
	}
	return NewEthereumSignerFromKey(key), nil
}

// NewEthereumSignerFromKey wraps an existing key.
func NewEthereumSignerFromKey(key *ecdsa.PrivateKey) *EthereumSigner {
	return &EthereumSigner{
		privateKey: key,
		publicKey:  EthereumPublicKey{&key.PublicKey},
	}
}

func (s *EthereumSigner) PublicKey() PublicKey { return s.publicKey }

func (s *EthereumSigner) Sign(hash []byte) (Signature, error) {
	sig, err := ethcrypto.Sign(hash, s.privateKey)
	if err != nil {
		return nil, err
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return Signature(sig), nil
}

// RecoverAddress returns the address that produced sig over msg with SignMessage.
func RecoverAddress(msg []byte, sig Signature) (Address, error) {
	if len(sig) != 65 {
		return nil, fmt.Errorf("invalid signature length: %d", len(sig))
	}
	local := make([]byte, 65)
	copy(local, sig)
	if local[64] >= 27 {
		local[64] -= 27
	}

	pub, err := ethcrypto.SigToPub(HashMessage(msg), local)
	if err != nil {
		return nil, fmt.Errorf("signature recovery failed: %w", err)
	}
	return EthereumAddress{ethcrypto.PubkeyToAddress(*pub)}, nil
}
