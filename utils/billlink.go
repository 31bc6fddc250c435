// utils/billlink.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidBillLink = errors.New("invalid or expired bill link")

// BillLinkClaims identify one bill of one customer.
type BillLinkClaims struct {
	CustomerID string `json:"cid"`
	BillID     string `json:"bid"`
	jwt.RegisteredClaims
}

// BillLinkSigner issues and verifies the tokens embedded in shareable bill URLs.
type BillLinkSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewBillLinkSigner(secret string, ttl time.Duration) (*BillLinkSigner, error) {
	if secret == "" {
		return nil, errors.New("BILL_LINK_SECRET not set")
	}
	return &BillLinkSigner{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Sign returns a token that grants read access to a single bill.
func (s *BillLinkSigner) Sign(customerID, billID uuid.UUID) (string, error) {
	issued := s.now()
	claims := BillLinkClaims{
		CustomerID: customerID.String(),
		BillID:     billID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   billID.String(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses a token and returns the bill it points to.
func (s *BillLinkSigner) Verify(token string) (uuid.UUID, uuid.UUID, error) {
	var claims BillLinkClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return uuid.Nil, uuid.Nil, ErrInvalidBillLink
	}

	customerID, err := uuid.Parse(claims.CustomerID)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidBillLink
	}
	billID, err := uuid.Parse(claims.BillID)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidBillLink
	}
	return customerID, billID, nil
}
