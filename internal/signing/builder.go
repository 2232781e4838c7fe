package signing

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Signer builds and signs orders against a fixed exchange domain.
type Signer struct {
	domain     *Domain
	privateKey *ecdsa.PrivateKey
	address    string
	logger     *zap.Logger
}

// NewSigner creates a signer for the given exchange domain and key.
func NewSigner(domain *Domain, privateKey *ecdsa.PrivateKey, logger *zap.Logger) *Signer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Signer{
		domain:     domain,
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey).Hex(),
		logger:     logger,
	}
}

// Address returns the signing address derived from the private key.
func (s *Signer) Address() string {
	return s.address
}

// BuildOrder constructs the order struct from the input, generating the salt.
// The salt is drawn once here; the same struct is hashed, signed, and
// submitted, so the exchange verifies exactly what was signed.
func (s *Signer) BuildOrder(data *OrderData) (*Order, error) {
	salt, err := newSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	maker := data.Maker
	if maker == "" {
		maker = s.address
	}
	signer := data.Signer
	if signer == "" {
		signer = s.address
	}
	taker := data.Taker
	if taker == "" {
		taker = "0x0000000000000000000000000000000000000000"
	}

	feeRateBps := data.FeeRateBps
	if feeRateBps == "" {
		feeRateBps = "0"
	}
	nonce := data.Nonce
	if nonce == "" {
		nonce = "0"
	}
	expiration := data.Expiration
	if expiration == "" {
		expiration = "0"
	}

	return &Order{
		Salt:          strconv.FormatUint(salt, 10),
		Maker:         maker,
		Signer:        signer,
		Taker:         taker,
		TokenID:       data.TokenID,
		MakerAmount:   data.MakerAmount,
		TakerAmount:   data.TakerAmount,
		Expiration:    expiration,
		Nonce:         nonce,
		FeeRateBps:    feeRateBps,
		Side:          strconv.Itoa(int(data.Side)),
		SignatureType: strconv.Itoa(int(data.SignatureType)),
	}, nil
}

// SignOrder hashes the order under the domain and signs the digest.
func (s *Signer) SignOrder(order *Order) (*SignedOrder, error) {
	digest, err := OrderSignHash(s.domain, order)
	if err != nil {
		return nil, fmt.Errorf("hash order: %w", err)
	}

	signature, err := crypto.Sign(digest.Bytes(), s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign order: %w", err)
	}

	// Contracts expect the recovery id in {27, 28}.
	signature[64] += 27

	s.logger.Debug("order-signed",
		zap.String("maker", order.Maker),
		zap.String("token_id", order.TokenID),
		zap.String("side", order.Side),
	)

	return &SignedOrder{
		Order:     order,
		Signature: hexutil.Encode(signature),
	}, nil
}

// BuildSignedOrder builds and signs an order in one step.
func (s *Signer) BuildSignedOrder(data *OrderData) (*SignedOrder, error) {
	order, err := s.BuildOrder(data)
	if err != nil {
		return nil, err
	}
	return s.SignOrder(order)
}

// newSalt returns a random 64-bit salt.
func newSalt() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
