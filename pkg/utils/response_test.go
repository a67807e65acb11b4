package utils

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func performRequest(t *testing.T, handler fiber.Handler) (int, Response) {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	var envelope Response
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("body %q is not an envelope: %v", body, err)
	}
	return resp.StatusCode, envelope
}

func TestSuccessResponseEnvelope(t *testing.T) {
	status, envelope := performRequest(t, func(c *fiber.Ctx) error {
		return SuccessResponse(c, map[string]int{"segments": 3})
	})

	if status != fiber.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if !envelope.Success {
		t.Error("success must be true")
	}
	if envelope.Error != nil {
		t.Errorf("error must be omitted, got %+v", envelope.Error)
	}
	if envelope.Data == nil {
		t.Error("data must be carried")
	}
}

func TestErrorResponseEnvelopes(t *testing.T) {
	tests := []struct {
		name       string
		handler    fiber.Handler
		wantStatus int
		wantCode   string
	}{
		{
			"bad request",
			func(c *fiber.Ctx) error { return BadRequestResponse(c, "script has no segments") },
			fiber.StatusBadRequest, ErrCodeBadRequest,
		},
		{
			"validation",
			func(c *fiber.Ctx) error {
				return ValidationErrorResponse(c, map[string]string{"resolution": "must be one of 480p 720p 1080p 4K"})
			},
			fiber.StatusBadRequest, ErrCodeValidation,
		},
		{
			"unauthorized default message",
			func(c *fiber.Ctx) error { return UnauthorizedResponse(c, "") },
			fiber.StatusUnauthorized, ErrCodeUnauthorized,
		},
		{
			"not found",
			func(c *fiber.Ctx) error { return NotFoundResponse(c, "content not found") },
			fiber.StatusNotFound, ErrCodeNotFound,
		},
		{
			"internal",
			func(c *fiber.Ctx) error { return InternalServerErrorResponse(c) },
			fiber.StatusInternalServerError, ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, envelope := performRequest(t, tt.handler)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if envelope.Success {
				t.Error("success must be false on the error branch")
			}
			if envelope.Error == nil || envelope.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", envelope.Error, tt.wantCode)
			}
			if envelope.Error != nil && envelope.Error.Message == "" {
				t.Error("error message must never be empty")
			}
		})
	}
}
