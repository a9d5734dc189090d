package httpapi

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
)

// jsonSerializer implements echo.JSONSerializer on top of jsoniter.
type jsonSerializer struct{}

// Serialize writes the JSON encoding of i to the response.
func (jsonSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := jsoniter.ConfigFastest.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}

	return enc.Encode(i)
}

// Deserialize decodes the request body into i. Echo's binder maps any
// returned error to a 400 response.
func (jsonSerializer) Deserialize(c echo.Context, i any) error {
	return jsoniter.ConfigFastest.NewDecoder(c.Request().Body).Decode(i)
}
