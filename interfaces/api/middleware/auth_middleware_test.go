package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"clipforge/pkg/utils"
)

const testSecret = "unit-test-secret"

func protectedApp(secret string) *fiber.App {
	app := fiber.New()
	app.Use(Protected(secret))
	app.Get("/", func(c *fiber.Ctx) error {
		user, err := utils.GetUserFromContext(c)
		if err != nil {
			return utils.InternalServerErrorResponse(c)
		}
		return utils.SuccessResponse(c, fiber.Map{"user_id": user.ID.String()})
	})
	return app
}

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := utils.JWTClaims{
		UserID:   uuid.NewString(),
		Username: "tester",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func requestWithAuth(t *testing.T, app *fiber.App, authHeader string) (int, utils.Response) {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var envelope utils.Response
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("body %q is not an envelope: %v", body, err)
	}
	return resp.StatusCode, envelope
}

func TestProtectedRejectsWhenSecretUnset(t *testing.T) {
	app := protectedApp("")

	status, envelope := requestWithAuth(t, app, "Bearer "+signToken(t, testSecret, time.Now().Add(time.Hour)))
	if status != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500 when no secret is configured", status)
	}
	if envelope.Error == nil || envelope.Error.Code != utils.ErrCodeInternalError {
		t.Errorf("error = %+v, want %s", envelope.Error, utils.ErrCodeInternalError)
	}
}

func TestProtectedUnauthorizedCases(t *testing.T) {
	app := protectedApp(testSecret)

	tests := []struct {
		name        string
		authHeader  string
		wantMessage string
	}{
		{"missing header", "", "Missing authorization header"},
		{"malformed header", "Token abc", "Invalid authorization header format"},
		{"wrong secret", "Bearer " + signToken(t, "some-other-secret", time.Now().Add(time.Hour)), "Invalid token"},
		{"expired token", "Bearer " + signToken(t, testSecret, time.Now().Add(-time.Hour)), "Token has expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, envelope := requestWithAuth(t, app, tt.authHeader)
			if status != fiber.StatusUnauthorized {
				t.Errorf("status = %d, want 401", status)
			}
			if envelope.Error == nil || envelope.Error.Message != tt.wantMessage {
				t.Errorf("error = %+v, want message %q", envelope.Error, tt.wantMessage)
			}
		})
	}
}

func TestProtectedPassesValidToken(t *testing.T) {
	app := protectedApp(testSecret)

	status, envelope := requestWithAuth(t, app, "Bearer "+signToken(t, testSecret, time.Now().Add(time.Hour)))
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !envelope.Success {
		t.Error("a valid token must reach the handler")
	}
}
