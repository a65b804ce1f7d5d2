package app

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

func TestSeatTokenServiceGenerateToken(t *testing.T) {
	secret := "test-secret"
	svc := NewSeatTokenService(secret, "belote", time.Minute)

	tokenString, err := svc.GenerateToken("user123", "game-1", 2)
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}

	claims := parseSeatClaims(t, tokenString, secret)
	if got := stringClaim(t, claims, "sub"); got != "user123" {
		t.Fatalf("sub = %s, want user123", got)
	}
	if got := stringClaim(t, claims, "gid"); got != "game-1" {
		t.Fatalf("gid = %s, want game-1", got)
	}
	if got := stringClaim(t, claims, "iss"); got != "belote" {
		t.Fatalf("iss = %s, want belote", got)
	}
	if seat, _ := claims["seat"].(float64); seat != 2 {
		t.Fatalf("seat = %v, want 2", claims["seat"])
	}
}

func TestSeatTokenServiceRoundTrip(t *testing.T) {
	svc := NewSeatTokenService("test-secret", "belote", time.Minute)
	tokenString, err := svc.GenerateToken("user123", "game-1", 3)
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}

	claims, err := svc.ParseToken(tokenString)
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	if claims.PlayerID != "user123" || claims.GameID != "game-1" || claims.Seat != 3 {
		t.Fatalf("claims = %+v", claims)
	}
	if err := svc.Verify(tokenString, "user123", "game-1"); err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if err := svc.Verify(tokenString, "someone-else", "game-1"); !errors.Is(err, ErrInvalidSeatToken) {
		t.Fatalf("verify for another player = %v, want ErrInvalidSeatToken", err)
	}
}

func TestSeatTokenServiceRejectsBadTokens(t *testing.T) {
	svc := NewSeatTokenService("test-secret", "belote", time.Minute)
	valid, err := svc.GenerateToken("user123", "game-1", 0)
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}
	expired, err := NewSeatTokenService("test-secret", "belote", -time.Minute).GenerateToken("user123", "game-1", 0)
	if err != nil {
		t.Fatalf("generate expired token error: %v", err)
	}
	otherIssuer, err := NewSeatTokenService("test-secret", "someone", time.Minute).GenerateToken("user123", "game-1", 0)
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}

	tests := []struct {
		name  string
		svc   *SeatTokenService
		token string
	}{
		{name: "wrong secret", svc: NewSeatTokenService("other", "belote", time.Minute), token: valid},
		{name: "expired", svc: svc, token: expired},
		{name: "wrong issuer", svc: svc, token: otherIssuer},
		{name: "garbage", svc: svc, token: "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.svc.ParseToken(tt.token); !errors.Is(err, ErrInvalidSeatToken) {
				t.Fatalf("ParseToken() error = %v, want ErrInvalidSeatToken", err)
			}
		})
	}
}

func TestSeatTokenServiceRequiresConfig(t *testing.T) {
	if _, err := NewSeatTokenService("", "belote", time.Minute).GenerateToken("u", "g", 0); err == nil {
		t.Fatal("expected error without a secret")
	}
	if _, err := NewSeatTokenService("s", "belote", time.Minute).GenerateToken("", "g", 0); err == nil {
		t.Fatal("expected error without a player")
	}
}

func parseSeatClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	if !token.Valid {
		t.Fatal("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not map claims")
	}
	return claims
}

func stringClaim(t *testing.T, claims jwt.MapClaims, name string) string {
	t.Helper()
	value, ok := claims[name]
	if !ok {
		t.Fatalf("missing %s claim", name)
	}
	str, ok := value.(string)
	if !ok {
		t.Fatalf("%s claim is not a string", name)
	}
	return str
}
