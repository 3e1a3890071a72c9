package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Method describes one JSON-RPC method: its wire name, how its parameters
// are encoded, the result type R and the business error type E.
//
// Methods can only be built by the constructors of this package. The zero
// value is not a valid method and is rejected by Call.
type Method[R, E any] struct {
	name     MethodName
	params   func() (any, error)
	fallback func(data json.RawMessage) (E, bool, error)
}

// AdminMethod is a Method that may only be sent by an authenticated client.
// See CallAdmin.
type AdminMethod[R, E any] struct {
	method Method[R, E]
}

func newMethod[R, E any](name MethodName, params func() (any, error)) Method[R, E] {
	return Method[R, E]{name: name, params: params}
}

func newAdminMethod[R, E any](name MethodName, params func() (any, error)) AdminMethod[R, E] {
	return AdminMethod[R, E]{method: newMethod[R, E](name, params)}
}

// Name returns the wire name.
func (m Method[R, E]) Name() MethodName { return m.name }

// Name returns the wire name.
func (m AdminMethod[R, E]) Name() MethodName { return m.method.name }

// Params returns the encoded params. Methods without params encode to [].
func (m Method[R, E]) Params() (json.RawMessage, error) {
	if m.params == nil {
		return emptyParams, nil
	}

	v, err := m.params()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Params returns the encoded params.
func (m AdminMethod[R, E]) Params() (json.RawMessage, error) { return m.method.Params() }

func (m Method[R, E]) valid() bool { return m.name != "" }

func (m Method[R, E]) decodeResult(raw json.RawMessage) (R, error) {
	var res R
	if err := json.Unmarshal(raw, &res); err != nil {
		return res, &ParseError{Err: fmt.Errorf("%w for %s: %w", ErrDecodingResult, m.name, err)}
	}
	return res, nil
}

// decodeError classifies a failure envelope: typed business error first,
// then the method's raw fallback, then the raw payload as received.
func (m Method[R, E]) decodeError(obj *ErrorObject) error {
	var typed E
	if err := decodeBusinessError(obj.Data, &typed); err == nil {
		return &HandlerError[E]{Code: obj.Code, Message: obj.Message, Err: typed}
	}

	if m.fallback != nil {
		v, applies, err := m.fallback(obj.Data)
		if applies {
			if err != nil {
				return &ParseError{Err: fmt.Errorf("%w for %s: %w", ErrDecodingError, m.name, err)}
			}
			return &HandlerError[E]{Code: obj.Code, Message: obj.Message, Err: v}
		}
	}

	return newRawHandlerError(obj)
}

var errNoErrorData = errors.New("error data is empty")

func decodeBusinessError(data json.RawMessage, v any) error {
	if len(data) == 0 || isJSONNull(data) {
		return errNoErrorData
	}
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}

	if err := validate.Struct(v); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// not a struct; nothing to check
			return nil
		}
		return err
	}
	return nil
}

// NoError is the business error type of methods that define none. It never
// decodes, so every server error for such a method surfaces as a
// RawHandlerError.
type NoError struct{}

func (*NoError) UnmarshalJSON([]byte) error {
	return errors.New("method defines no business error")
}

func (NoError) Error() string { return "no error" }

// Empty is the result type of methods whose result carries no data.
// Any result value, null included, is accepted.
type Empty struct{}

func (*Empty) UnmarshalJSON([]byte) error { return nil }

// ============================================================================
// Parameter validation
// ============================================================================

// accountIDPattern follows the NEAR account id rules; 64-char implicit
// accounts match it as well.
var accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[\-_])*[a-z\d]+\.)*([a-z\d]+[\-_])*[a-z\d]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("near_account", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) >= 2 && len(s) <= 64 && accountIDPattern.MatchString(s)
	})
	v.RegisterStructValidation(validateBlockReference, BlockReference{})
	return v
}

// validateBlockReference requires exactly one way of selecting a block.
func validateBlockReference(sl validator.StructLevel) {
	ref := sl.Current().Interface().(BlockReference)

	set := 0
	if ref.Finality != "" {
		set++
	}
	if ref.BlockID != nil {
		set++
	}
	if ref.SyncCheckpoint != "" {
		set++
	}
	if set != 1 {
		sl.ReportError(ref.Finality, "Finality", "finality", "block_reference", "")
	}
}

// validated returns a param builder that checks req before encoding it with
// encode. A nil encode sends req itself.
func validated[T any](req T, encode func(T) any) func() (any, error) {
	return func() (any, error) {
		if err := validate.Struct(req); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
		if encode == nil {
			return req, nil
		}
		return encode(req), nil
	}
}

// positional returns a param builder for a fixed positional list.
func positional(values ...any) func() (any, error) {
	if values == nil {
		values = []any{}
	}
	return func() (any, error) { return values, nil }
}

// bare returns a param builder that sends v as-is, without a list around it.
func bare(v any) func() (any, error) {
	return func() (any, error) { return v, nil }
}
