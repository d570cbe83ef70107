package server

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"reeltrack/internal/middleware"
	"reeltrack/internal/models"

	"github.com/gofiber/fiber/v2"
)

// currentUserID returns the caller set by AuthRequired.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

// respondError maps err to its HTTP status. Internal failures are logged
// with the request context and answered without details.
func respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}
	return models.RespondWithError(c, status, err)
}

// parseBody decodes the JSON body into dst.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// looseString accepts a JSON string or number. Movie ids come from the
// catalog client and are sent either way.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

func (s looseString) String() string {
	return strings.TrimSpace(string(s))
}

// tokenTTL returns the lifetime left on the caller's token.
func tokenTTL(c *fiber.Ctx) time.Duration {
	exp, ok := c.Locals("tokenExpiresAt").(time.Time)
	if !ok {
		return 0
	}
	return time.Until(exp)
}
