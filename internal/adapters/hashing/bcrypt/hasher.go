package bcrypt

import (
	"errors"

	"github.com/vncsmyrnk/tasks/internal/core/ports"
	"golang.org/x/crypto/bcrypt"
)

const DefaultCost = 10

type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt PasswordHasher. Costs outside bcrypt's accepted
// range fall back to DefaultCost.
func NewHasher(cost int) ports.PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *Hasher) Compare(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
