package cli

import (
	"io"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/league-rating/internal/usecase"
)

type errorReport struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Reason  string   `json:"reason"`
	Message string   `json:"message"`
	Hints   []string `json:"hints,omitempty"`
}

func reasonOf(err error) string {
	switch {
	case crerr.Is(err, usecase.ErrInvalidInput):
		return "invalidInput"
	case crerr.Is(err, usecase.ErrIntegrity):
		return "integrityViolation"
	case crerr.Is(err, usecase.ErrNumerical):
		return "numericalFailure"
	default:
		return "internalError"
	}
}

// writeError prints err and every hint attached to it.
func writeError(w io.Writer, format string, err error) {
	body := errorBody{
		Reason:  reasonOf(err),
		Message: err.Error(),
		Hints:   crerr.GetAllHints(err),
	}

	if format == FormatJSON {
		if out, marshalErr := sonic.ConfigDefault.Marshal(errorReport{Error: body}); marshalErr == nil {
			_, _ = w.Write(append(out, '\n'))
			return
		}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString("error: ")
	buf.WriteString(body.Message)
	buf.WriteByte('\n')
	for _, hint := range body.Hints {
		buf.WriteString("hint: ")
		buf.WriteString(hint)
		buf.WriteByte('\n')
	}
	_, _ = w.Write(buf.B)
}
