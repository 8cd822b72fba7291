package auth

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kodbank/backend/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims carried by every issued token.
type Claims struct {
	TokenID int    `json:"tid"`
	Name    string `json:"name"`
	jwt.RegisteredClaims
}

// TokenRegistry issues signed session tokens and keeps the list an
// administrator can inspect and revoke. A token is valid only while its
// signature checks out, it has not expired and it is still registered.
type TokenRegistry struct {
	mu     sync.RWMutex
	nextID int
	tokens map[int]models.Token
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenRegistry(secret string, ttl time.Duration) *TokenRegistry {
	return &TokenRegistry{
		nextID: 1,
		tokens: make(map[int]models.Token),
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a new token for the account and registers it.
func (r *TokenRegistry) Issue(accountID int, ownerName string) (models.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	issuedAt := r.now()
	expiresAt := issuedAt.Add(r.ttl)

	claims := Claims{
		TokenID: id,
		Name:    ownerName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(accountID),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
	if err != nil {
		return models.Token{}, fmt.Errorf("sign token: %w", err)
	}

	tok := models.Token{
		ID:        id,
		Value:     signed,
		AccountID: accountID,
		OwnerName: ownerName,
		ExpiresAt: expiresAt.UTC(),
	}
	r.nextID++
	r.tokens[id] = tok
	return tok, nil
}

// List returns the registered tokens ordered by id.
func (r *TokenRegistry) List() []models.Token {
	r.mu.RLock()
	out := make([]models.Token, 0, len(r.tokens))
	for _, t := range r.tokens {
		out = append(out, t)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Revoke drops the token. Unknown ids are ignored.
func (r *TokenRegistry) Revoke(id int) {
	r.mu.Lock()
	delete(r.tokens, id)
	r.mu.Unlock()
}

// Validate parses value and returns the registered token it names.
func (r *TokenRegistry) Validate(value string) (models.Token, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(value, &claims, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(r.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	r.mu.RLock()
	tok, ok := r.tokens[claims.TokenID]
	r.mu.RUnlock()
	if !ok || tok.Value != value {
		return models.Token{}, ErrTokenRevoked
	}
	return tok, nil
}
