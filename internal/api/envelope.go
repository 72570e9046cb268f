package api

import "github.com/gofiber/fiber/v2"

// envelope is the wire wrapper every handler responds through (spec.md
// §4.6, C10): {ok:true, result} on success, {ok:false, error_code,
// description} on failure.
type envelope struct {
	OK          bool        `json:"ok"`
	Result      interface{} `json:"result,omitempty"`
	ErrorCode   int         `json:"error_code,omitempty"`
	Description string      `json:"description,omitempty"`
}

func ok(c *fiber.Ctx, result interface{}) error {
	return c.Status(fiber.StatusOK).JSON(envelope{OK: true, Result: result})
}

func fail(c *fiber.Ctx, status int, description string) error {
	return c.Status(status).JSON(envelope{OK: false, ErrorCode: status, Description: description})
}
