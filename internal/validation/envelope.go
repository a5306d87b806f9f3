package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/deppfellow/webbrayns-backend/internal/errs"
	"github.com/labstack/echo/v4"
)

// Envelope parameter names.
const (
	InputParam = "i"
	HostParam  = "h"
)

// maxJSONBody caps a raw JSON request body.
const maxJSONBody = 1 << 20

// Validatable is implemented by request payload types that check
// themselves after decoding.
type Validatable interface {
	Validate() error
}

// ReadInput returns the raw JSON input of the request: the "i" parameter,
// or the body itself for an application/json POST.
func ReadInput(c echo.Context) ([]byte, error) {
	req := c.Request()

	if req.Method == http.MethodPost && strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		body, err := io.ReadAll(io.LimitReader(req.Body, maxJSONBody+1))
		if err != nil {
			return nil, errs.BadInput("Unable to read request body!").WithCause(err)
		}
		if len(body) > maxJSONBody {
			return nil, errs.BadInput("Request body is too large!")
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return nil, errs.BadInput("Missing mandatory url param '%s'!", InputParam)
		}
		return body, nil
	}

	// FormValue parses the query string and urlencoded or multipart bodies
	// into req.Form.
	raw := c.FormValue(InputParam)
	if _, present := req.Form[InputParam]; !present {
		return nil, errs.BadInput("Missing mandatory url param '%s'!", InputParam)
	}
	return []byte(raw), nil
}

// BindInput decodes the request input into payload and validates it.
func BindInput(c echo.Context, payload Validatable) error {
	raw, err := ReadInput(c)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, payload); err != nil {
		return errs.BadInput("Invalid JSON param! %s", describeJSONError(err)).WithCause(err)
	}

	if err := payload.Validate(); err != nil {
		return ToRPCError(err)
	}
	return nil
}

// BindAny decodes the request input without a schema.
func BindAny(c echo.Context) (any, error) {
	raw, err := ReadInput(c)
	if err != nil {
		return nil, err
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, errs.BadInput("Invalid JSON param! %s", describeJSONError(err)).WithCause(err)
	}
	return value, nil
}

// BindHost returns the Brayns hostname of the request. The web client sends
// it JSON encoded ("\"host:5000\""); raw strings are accepted as well.
func BindHost(c echo.Context) (string, error) {
	raw := strings.TrimSpace(c.FormValue(HostParam))

	host := raw
	var decoded string
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		host = strings.TrimSpace(decoded)
	}

	if host == "" {
		return "", errs.BadInput("Missing mandatory url param '%s'!", HostParam)
	}
	return host, nil
}

func describeJSONError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return "Attribute \"" + typeErr.Field + "\" must be of type " + typeErr.Type.String() + "."
	}
	return err.Error()
}
