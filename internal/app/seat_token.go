package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

var ErrInvalidSeatToken = errors.New("invalid seat token")

// SeatTokenService signs and checks the tokens a player presents to reclaim
// their seat after a reconnect.
type SeatTokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// SeatClaims is the verified content of a seat token.
type SeatClaims struct {
	PlayerID  string
	GameID    string
	Seat      int
	ExpiresAt time.Time
}

func NewSeatTokenService(secret, issuer string, ttl time.Duration) *SeatTokenService {
	return &SeatTokenService{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// GenerateToken signs an HS256 token binding a player to a seat in a game.
func (s *SeatTokenService) GenerateToken(playerID, gameID string, seat int) (string, error) {
	if s == nil {
		return "", fmt.Errorf("seat token service is nil")
	}
	if playerID == "" || gameID == "" {
		return "", fmt.Errorf("player and game are required")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("seat token secret is not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  s.issuer,
		"sub":  playerID,
		"gid":  gameID,
		"seat": seat,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken verifies the signature, expiry and issuer of a seat token.
func (s *SeatTokenService) ParseToken(tokenString string) (SeatClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return SeatClaims{}, fmt.Errorf("%w: %v", ErrInvalidSeatToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return SeatClaims{}, ErrInvalidSeatToken
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return SeatClaims{}, fmt.Errorf("%w: wrong issuer", ErrInvalidSeatToken)
	}

	sub, _ := claims["sub"].(string)
	gid, _ := claims["gid"].(string)
	seat, _ := claims["seat"].(float64)
	exp, _ := claims["exp"].(float64)
	if sub == "" || gid == "" {
		return SeatClaims{}, fmt.Errorf("%w: missing subject or game", ErrInvalidSeatToken)
	}

	return SeatClaims{
		PlayerID:  sub,
		GameID:    gid,
		Seat:      int(seat),
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}

// Verify checks that token was issued to playerID for gameID.
func (s *SeatTokenService) Verify(tokenString, playerID, gameID string) error {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return err
	}
	if claims.PlayerID != playerID || claims.GameID != gameID {
		return fmt.Errorf("%w: token belongs to another seat", ErrInvalidSeatToken)
	}
	return nil
}
