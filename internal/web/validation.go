package web

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var fieldMessages = map[string]string{
	"Name.required":           "Name is required",
	"Email.required":          "Email is required",
	"Email.email":             "Email is not valid",
	"Password.required":       "Password is required",
	"Password.min":            "Password must be at least 6 characters",
	"RepeatPassword.required": "Passwords do not match",
	"RepeatPassword.eqfield":  "Passwords do not match",
	"Title.required":          "Title is required",
	"Description.required":    "Description is required",
	"Description.max":         "Description is too long",
	"Category.required":       "Select a category",
	"Price.required":          "Select a price range",
	"Bedrooms.required":       "Select the number of bedrooms",
	"Parking.required":        "Select the number of parking spots",
	"Bathrooms.required":      "Select the number of bathrooms",
	"Lat.required":            "Place the property on the map",
	"Body.required":           "The message cannot be empty",
	"Body.min":                "The message is too short",
}

// ValidationMessages turns a binding error into messages for the form page.
func ValidationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"The submitted form is not valid"}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
			msgs = append(msgs, msg)
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s is not valid", fe.Field()))
	}
	return msgs
}
