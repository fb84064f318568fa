package errors

import (
	"bytes"
	stderrors "errors"
	"text/template"

	"github.com/louisbranch/hippycrown/internal/platform/i18n/catalog"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// Localize renders the user-facing message for err in locale. Errors without
// a code render the UNKNOWN message; unknown locales fall back to en-US.
func Localize(err error, locale string) string {
	code := CodeUnknown
	var metadata map[string]string
	var target *Error
	if stderrors.As(err, &target) {
		code = target.Code
		metadata = target.Metadata
	}
	return Format(locale, code, metadata)
}

// Format renders the catalog template for code with metadata. Templates are
// executed even with empty metadata so missing fields render as empty.
func Format(locale string, code Code, metadata map[string]string) string {
	tmpl, ok := catalog.Default().Message(locale, "errors."+string(code))
	if !ok {
		return string(code)
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	t, err := template.New("msg").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// UserMessage returns the LocalizedMessage detail of a gRPC status error, as
// attached by LocalizedStatus.
func UserMessage(err error) (string, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return "", false
	}
	for _, detail := range st.Details() {
		if msg, ok := detail.(*errdetails.LocalizedMessage); ok {
			return msg.GetMessage(), true
		}
	}
	return "", false
}

// LocalizedStatus converts the error to a gRPC status whose LocalizedMessage
// comes from the locale catalog.
func (e *Error) LocalizedStatus(locale string) error {
	if locale == "" {
		locale = catalog.BaseLocale
	}
	return e.ToGRPCStatus(locale, Format(locale, e.Code, e.Metadata))
}
