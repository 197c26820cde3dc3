// Package service implements the lost and found workflows on top of the database.
package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/go-playground/validator/v10"
)

type (
	// A Signal is notified when the item set changes.
	Signal interface {
		Changed()
	}

	// A Notifier delivers notifications.
	Notifier interface {
		Notify(notification *model.Notification) error
	}

	// NopSignal ignores change signals.
	NopSignal struct{}
)

// Changed implements Signal.
func (NopSignal) Changed() {}

// Validator is the shared request validator.
var Validator = validator.New(validator.WithRequiredStructEnabled())

func init() {
	Validator.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
}

// Validate checks the given params against their validate tags.
func Validate(params any) error {
	err := Validator.Struct(params)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return lferror.Invalid(err.Error())
	}

	messages := make([]string, 0, len(verrs))
	for _, ferr := range verrs {
		messages = append(messages, describe(ferr))
	}
	return lferror.Invalid(strings.Join(messages, " "))
}

func describe(ferr validator.FieldError) string {
	field := ferr.Field()
	switch ferr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email.", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", field, ferr.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long.", field, ferr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long.", field, ferr.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s.", field, ferr.Param())
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}

// storeRead maps database failures to lferror, keeping workflow errors as is.
func storeRead(err error) error {
	return mapStore(err, lferror.StoreRead)
}

// storeWrite maps database failures to lferror, keeping workflow errors as is.
func storeWrite(err error) error {
	return mapStore(err, lferror.StoreWrite)
}

func mapStore(err error, wrap func(error) error) error {
	if err == nil {
		return nil
	}

	var lferr *lferror.LFError
	if errors.As(err, &lferr) {
		return err
	}
	return wrap(err)
}

func requireAdmin(user *model.User) error {
	if !user.IsAdmin() {
		return lferror.ErrAdminRequired
	}
	return nil
}
