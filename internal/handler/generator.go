package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/altinm/password-vault/internal/generator"
)

// generateReq mirrors the generator endpoint's body. Class flags default to
// true so an empty body produces a password from all four alphabets, and
// length defaults to 12.
type generateReq struct {
	Length    *int  `json:"length"`
	Uppercase *bool `json:"uppercase"`
	Lowercase *bool `json:"lowercase"`
	Numbers   *bool `json:"numbers"`
	Symbols   *bool `json:"symbols"`
}

func boolOr(p *bool, def bool) bool {
	if p != nil {
		return *p
	}
	return def
}

// GeneratePassword handles POST /password/generate. It needs no identity:
// generation is pure computation and deliberately sits outside the auth
// gate.
func GeneratePassword(c echo.Context) error {
	var req generateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	length := 12
	if req.Length != nil {
		length = *req.Length
	}

	pw, err := generator.Generate(
		length,
		boolOr(req.Uppercase, true),
		boolOr(req.Lowercase, true),
		boolOr(req.Numbers, true),
		boolOr(req.Symbols, true),
	)
	if err != nil {
		switch err {
		case generator.ErrInvalidLength, generator.ErrNoClasses:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generation failed"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"password": pw, "length": length})
}
