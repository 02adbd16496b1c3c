package checkouterrors

import (
	"context"
	"errors"

	"github.com/MarcGrol/basketcheckout/services/basket"
)

type Kind string

const (
	KindFieldValidation Kind = "FieldValidation"
	KindBasketConflict  Kind = "BasketConflict"
	KindDeclined        Kind = "Declined"
	KindProviderFailure Kind = "ProviderFailure"
	KindAborted         Kind = "Aborted"
	KindUnknown         Kind = "Unknown"
)

const (
	CodeFallbackError       = "fallback-error"
	CodeBasketChanged       = "basket-changed-error-message"
	CodeTransactionDeclined = "transaction-declined-message"
)

var (
	basketChangedCodes = map[string]bool{
		CodeBasketChanged: true,
		"basket-changed":  true,
	}
	declinedCodes = map[string]bool{
		CodeTransactionDeclined: true,
		"payment-declined":      true,
	}
)

func IsBasketChangedCode(code string) bool {
	return basketChangedCodes[code]
}

func IsDeclinedCode(code string) bool {
	return declinedCodes[code]
}

// Envelope is the normalized form of any failure reaching a workflow.
type Envelope struct {
	Kind           Kind
	FieldErrors    map[string]string
	AttachedBasket *basket.Basket
	Messages       []basket.Message
}

// Silent tells if nothing should be surfaced to the shopper.
func (e Envelope) Silent() bool {
	return e.Kind == KindAborted
}

// Classify maps every error onto exactly one kind.
func Classify(err error) Envelope {
	if err == nil {
		return withFallbackMessage(Envelope{Kind: KindUnknown})
	}

	var raw *RawError
	if !errors.As(err, &raw) {
		if errors.Is(err, context.Canceled) {
			return Envelope{Kind: KindAborted}
		}
		return withFallbackMessage(Envelope{Kind: KindUnknown})
	}

	if raw.Aborted || (errors.Is(raw.Err, context.Canceled) && !raw.hasStructuredPayload()) {
		return Envelope{
			Kind:           KindAborted,
			AttachedBasket: copyBasket(raw.Basket),
		}
	}

	if raw.Code != "" && !raw.hasStructuredPayload() {
		return Envelope{
			Kind:     KindProviderFailure,
			Messages: []basket.Message{codeMessage(raw.Code, raw.UserMessage)},
		}
	}

	envelope := Envelope{
		AttachedBasket: copyBasket(raw.Basket),
		Messages:       messagesOf(raw),
	}

	switch {
	case len(raw.FieldErrors) > 0:
		envelope.Kind = KindFieldValidation
		envelope.FieldErrors = TranslateFieldErrors(raw.FieldErrors)
	case containsCode(envelope.Messages, IsBasketChangedCode):
		envelope.Kind = KindBasketConflict
	case raw.Declined || containsCode(envelope.Messages, IsDeclinedCode):
		envelope.Kind = KindDeclined
		if len(envelope.Messages) == 0 {
			envelope.Messages = []basket.Message{codeMessage(CodeTransactionDeclined, raw.UserMessage)}
		}
	default:
		envelope.Kind = KindUnknown
	}

	return withFallbackMessage(envelope)
}

func messagesOf(raw *RawError) []basket.Message {
	messages := []basket.Message{}
	if raw.Code != "" {
		messages = append(messages, codeMessage(raw.Code, raw.UserMessage))
	}
	messages = append(messages, raw.Messages...)
	if len(messages) == 0 {
		return nil
	}
	return messages
}

func codeMessage(code string, userMessage string) basket.Message {
	return basket.Message{
		Code:        code,
		UserMessage: userMessage,
		MessageType: basket.MessageTypeError,
	}
}

func withFallbackMessage(e Envelope) Envelope {
	if e.Kind == KindUnknown && len(e.Messages) == 0 {
		e.Messages = []basket.Message{codeMessage(CodeFallbackError, "")}
	}
	return e
}

func containsCode(messages []basket.Message, predicate func(code string) bool) bool {
	for _, m := range messages {
		if predicate(m.Code) {
			return true
		}
	}
	return false
}

func copyBasket(b *basket.Basket) *basket.Basket {
	if b == nil {
		return nil
	}
	cp := b.Normalized()
	return &cp
}
