package webhook

import (
	"errors"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/marcelsud/webhook-dispatch/webhook/signature"
)

// Vocabulary is the closed set of event types subscriptions may reference
type Vocabulary interface {
	Contains(name string) bool
}

var absoluteHTTPURL = validation.By(func(value interface{}) error {
	raw, _ := value.(string)
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must use the http or https scheme")
	}
	if u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
})

func knownEventType(vocab Vocabulary) validation.Rule {
	return validation.By(func(value interface{}) error {
		name, _ := value.(string)
		if !vocab.Contains(name) {
			return errors.New("unknown event type " + name)
		}
		return nil
	})
}

var secretFormat = validation.By(func(value interface{}) error {
	secret, _ := value.(string)
	if strings.TrimSpace(secret) == "" {
		return errors.New("cannot be blank")
	}
	if strings.HasPrefix(secret, signature.SecretPrefix) {
		if _, err := signature.ParseSecret(secret); err != nil {
			return err
		}
	}
	return nil
})

// validateSubscription checks a complete subscription record
func validateSubscription(s Subscription, vocab Vocabulary) error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.ID, validation.Required, validation.Length(1, 128)),
		validation.Field(&s.URL, validation.Required, is.URL, absoluteHTTPURL),
		validation.Field(&s.Events, validation.Required, validation.Each(validation.Required, knownEventType(vocab))),
		validation.Field(&s.Secret, secretFormat),
	)
	return toValidationError(err)
}

// toValidationError converts ozzo errors into the package error taxonomy
func toValidationError(err error) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return NewValidationError("subscription", err.Error())
	}

	ve := &ValidationError{Problems: make(map[string]string, len(errs))}
	for field, fieldErr := range errs {
		ve.Problems[strings.ToLower(field)] = fieldErr.Error()
	}
	return ve
}
