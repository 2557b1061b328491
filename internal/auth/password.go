package auth

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost bcrypt 代价
	DefaultCost = 12
	// MinPasswordLength 可哈希的最短密码
	MinPasswordLength = 6
	// DefaultGeneratedLength 生成密码的默认长度
	DefaultGeneratedLength = 16

	minStrongLength = 8
	maxGenerated    = 64
	specialChars    = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"
	generateCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"
)

// Hasher bcrypt 密码哈希
type Hasher struct {
	Cost int
}

// NewHasher cost 超出 bcrypt 范围时取默认值
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{Cost: cost}
}

// Hash 生成哈希
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", ErrWeakPassword.WithError(err)
	}
	return string(b), nil
}

// Verify 校验密码，任一参数为空时返回 false
func (h *Hasher) Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateStrength 检查密码强度，返回全部未满足的要求
func ValidateStrength(password string) []string {
	var problems []string
	if password == "" {
		problems = append(problems, "Password is required")
	}
	if len(password) < minStrongLength {
		problems = append(problems, "Password must be at least 8 characters long")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	if !upper {
		problems = append(problems, "Password must contain at least one uppercase letter")
	}
	if !lower {
		problems = append(problems, "Password must contain at least one lowercase letter")
	}
	if !digit {
		problems = append(problems, "Password must contain at least one number")
	}
	if !special {
		problems = append(problems, "Password must contain at least one special character")
	}
	return problems
}

// Generate 生成满足强度要求的随机密码
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultGeneratedLength
	}
	length = min(max(length, minStrongLength), maxGenerated)

	size := big.NewInt(int64(len(generateCharset)))
	buf := make([]byte, length)
	for {
		for i := range buf {
			n, err := rand.Int(rand.Reader, size)
			if err != nil {
				return "", err
			}
			buf[i] = generateCharset[n.Int64()]
		}
		if pw := string(buf); len(ValidateStrength(pw)) == 0 {
			return pw, nil
		}
	}
}
