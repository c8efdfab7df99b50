package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNonceInvalid covers missing, expired, forged and mismatched nonces.
var ErrNonceInvalid = errors.New("nonce is invalid")

const defaultNonceTTL = 12 * time.Hour

// Nonce actions.
const (
	NonceActionPublic   = "public"
	NonceActionDebugLog = "debug-log"
)

type nonceClaims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

// NonceService issues and verifies short-lived request tokens bound to an
// action and a user id (0 for anonymous visitors).
type NonceService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewNonceService 构造 NonceService，ttl 非正数时使用 12 小时。
func NewNonceService(secret string, ttl time.Duration) *NonceService {
	if ttl <= 0 {
		ttl = defaultNonceTTL
	}
	return &NonceService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock 允许测试固定当前时间。
func (s *NonceService) WithClock(now func() time.Time) *NonceService {
	if now != nil {
		s.now = now
	}
	return s
}

// Issue signs a nonce for action and userID.
func (s *NonceService) Issue(action string, userID uint) (string, error) {
	issued := s.now()
	claims := nonceClaims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks that token was issued by this service for action and userID
// and has not expired.
func (s *NonceService) Verify(token, action string, userID uint) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNonceInvalid
	}

	claims := &nonceClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return ErrNonceInvalid
	}

	if claims.Action != action || claims.Subject != strconv.FormatUint(uint64(userID), 10) {
		return ErrNonceInvalid
	}
	return nil
}
