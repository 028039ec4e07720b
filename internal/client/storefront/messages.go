package storefront

import (
	"context"
	"errors"
	"strings"

	"github.com/asquebay/simple-storefront/internal/client/rpc"
	"github.com/asquebay/simple-storefront/internal/lib/apperr"
)

// UserMessage переводит ошибку мутации или запроса в текст для покупателя
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was interrupted. Please try again."
	case errors.Is(err, rpc.ErrTransport):
		return "Could not reach the store. Check your connection and try again."
	}

	switch apperr.CodeOf(err) {
	case apperr.BadRequest:
		return capitalize(apperr.MessageOf(err)) + "."
	case apperr.Unauthorized:
		return "You are not allowed to do that. Sign in with the account that owns it."
	case apperr.NotFound:
		return "It looks like this was removed. Refresh the page to see the latest version."
	default:
		return "Something went wrong on our side. Please try again later."
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
