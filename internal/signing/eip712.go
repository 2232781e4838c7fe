// Package signing builds and signs exchange orders over the EIP-712 typed
// data scheme the settlement contract verifies.
package signing

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidOrderSalt   = errors.New("invalid order salt")
	ErrInvalidTokenID     = errors.New("invalid token ID")
	ErrInvalidMakerAmount = errors.New("invalid maker amount")
	ErrInvalidTakerAmount = errors.New("invalid taker amount")
)

// EIP-712 domain constants fixed by the exchange contract.
const (
	DomainName    = "OPINION CTF Exchange"
	DomainVersion = "1"
)

// Pre-computed type hashes.
var (
	domainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)",
	))

	orderTypeHash = crypto.Keccak256Hash([]byte(
		"Order(uint256 salt,address maker,address signer,address taker,uint256 tokenId,uint256 makerAmount,uint256 takerAmount,uint256 expiration,uint256 nonce,uint256 feeRateBps,uint8 side,uint8 signatureType)",
	))
)

// Domain is the EIP-712 domain separator data.
type Domain struct {
	ChainID           *big.Int
	VerifyingContract common.Address
}

// NewDomain creates the exchange domain for a chain and exchange contract.
func NewDomain(chainID int64, verifyingContract common.Address) *Domain {
	return &Domain{
		ChainID:           big.NewInt(chainID),
		VerifyingContract: verifyingContract,
	}
}

// Separator computes the EIP-712 domain separator hash.
func (d *Domain) Separator() common.Hash {
	bytes32Type, _ := abi.NewType("bytes32", "", nil)
	uint256Type, _ := abi.NewType("uint256", "", nil)
	addressType, _ := abi.NewType("address", "", nil)

	arguments := abi.Arguments{
		{Type: bytes32Type}, // typeHash
		{Type: bytes32Type}, // keccak256(name)
		{Type: bytes32Type}, // keccak256(version)
		{Type: uint256Type}, // chainId
		{Type: addressType}, // verifyingContract
	}

	encoded, err := arguments.Pack(
		domainTypeHash,
		crypto.Keccak256Hash([]byte(DomainName)),
		crypto.Keccak256Hash([]byte(DomainVersion)),
		d.ChainID,
		d.VerifyingContract,
	)
	if err != nil {
		panic("encode domain separator: " + err.Error())
	}

	return crypto.Keccak256Hash(encoded)
}

// orderTypedData is the order decoded into the ABI value types the struct
// hash is computed over.
type orderTypedData struct {
	Salt          *big.Int
	Maker         common.Address
	Signer        common.Address
	Taker         common.Address
	TokenID       *big.Int
	MakerAmount   *big.Int
	TakerAmount   *big.Int
	Expiration    *big.Int
	Nonce         *big.Int
	FeeRateBps    *big.Int
	Side          uint8
	SignatureType uint8
}

func (o *orderTypedData) hash() common.Hash {
	bytes32Type, _ := abi.NewType("bytes32", "", nil)
	addressType, _ := abi.NewType("address", "", nil)
	uint256Type, _ := abi.NewType("uint256", "", nil)
	uint8Type, _ := abi.NewType("uint8", "", nil)

	arguments := abi.Arguments{
		{Type: bytes32Type}, // typeHash
		{Type: uint256Type}, // salt
		{Type: addressType}, // maker
		{Type: addressType}, // signer
		{Type: addressType}, // taker
		{Type: uint256Type}, // tokenId
		{Type: uint256Type}, // makerAmount
		{Type: uint256Type}, // takerAmount
		{Type: uint256Type}, // expiration
		{Type: uint256Type}, // nonce
		{Type: uint256Type}, // feeRateBps
		{Type: uint8Type},   // side
		{Type: uint8Type},   // signatureType
	}

	encoded, err := arguments.Pack(
		orderTypeHash,
		o.Salt,
		o.Maker,
		o.Signer,
		o.Taker,
		o.TokenID,
		o.MakerAmount,
		o.TakerAmount,
		o.Expiration,
		o.Nonce,
		o.FeeRateBps,
		o.Side,
		o.SignatureType,
	)
	if err != nil {
		panic("encode order struct: " + err.Error())
	}

	return crypto.Keccak256Hash(encoded)
}

// OrderSignHash is the final EIP-712 digest:
// keccak256("\x19\x01" || domainSeparator || structHash).
func OrderSignHash(domain *Domain, order *Order) (common.Hash, error) {
	typed, err := orderToTypedData(order)
	if err != nil {
		return common.Hash{}, err
	}

	data := make([]byte, 0, 2+32+32)
	data = append(data, 0x19, 0x01)
	data = append(data, domain.Separator().Bytes()...)
	data = append(data, typed.hash().Bytes()...)

	return crypto.Keccak256Hash(data), nil
}

func orderToTypedData(order *Order) (*orderTypedData, error) {
	salt, ok := new(big.Int).SetString(order.Salt, 10)
	if !ok {
		return nil, ErrInvalidOrderSalt
	}

	tokenID, ok := new(big.Int).SetString(order.TokenID, 10)
	if !ok {
		return nil, ErrInvalidTokenID
	}

	makerAmount, ok := new(big.Int).SetString(order.MakerAmount, 10)
	if !ok {
		return nil, ErrInvalidMakerAmount
	}

	takerAmount, ok := new(big.Int).SetString(order.TakerAmount, 10)
	if !ok {
		return nil, ErrInvalidTakerAmount
	}

	expiration, ok := new(big.Int).SetString(order.Expiration, 10)
	if !ok {
		expiration = big.NewInt(0)
	}

	nonce, ok := new(big.Int).SetString(order.Nonce, 10)
	if !ok {
		nonce = big.NewInt(0)
	}

	feeRateBps, ok := new(big.Int).SetString(order.FeeRateBps, 10)
	if !ok {
		feeRateBps = big.NewInt(0)
	}

	side := uint8(0)
	if order.Side == "1" {
		side = 1
	}

	sigType := uint8(0)
	switch order.SignatureType {
	case "1":
		sigType = 1
	case "2":
		sigType = 2
	}

	return &orderTypedData{
		Salt:          salt,
		Maker:         common.HexToAddress(order.Maker),
		Signer:        common.HexToAddress(order.Signer),
		Taker:         common.HexToAddress(order.Taker),
		TokenID:       tokenID,
		MakerAmount:   makerAmount,
		TakerAmount:   takerAmount,
		Expiration:    expiration,
		Nonce:         nonce,
		FeeRateBps:    feeRateBps,
		Side:          side,
		SignatureType: sigType,
	}, nil
}
