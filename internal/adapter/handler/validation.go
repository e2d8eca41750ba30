package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rl1809/botshop/internal/core/domain"
)

var errNegativePrice = errors.New("price must not be negative")

// ProductRequest is the admin product form. Price and stock accept either
// JSON numbers or numeric strings.
type ProductRequest struct {
	Name        string      `json:"name" validate:"required,max=200"`
	Description string      `json:"description" validate:"max=2000"`
	Price       json.Number `json:"price" validate:"required,numeric"`
	Stock       json.Number `json:"stock" validate:"required,number"`
	ImageURL    string      `json:"image_url" validate:"omitempty,url"`
}

func (r ProductRequest) Fields() (domain.ProductFields, error) {
	price, err := decimal.NewFromString(r.Price.String())
	if err != nil {
		return domain.ProductFields{}, fmt.Errorf("parse price: %w", err)
	}
	if price.IsNegative() {
		return domain.ProductFields{}, errNegativePrice
	}
	stock, err := strconv.Atoi(r.Stock.String())
	if err != nil {
		return domain.ProductFields{}, fmt.Errorf("parse stock: %w", err)
	}
	return domain.ProductFields{
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Price:       price,
		Stock:       stock,
		ImageURL:    r.ImageURL,
	}, nil
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

type UserRequest struct {
	Username  string `json:"username" validate:"max=64"`
	FirstName string `json:"first_name" validate:"max=64"`
	LastName  string `json:"last_name" validate:"max=64"`
}

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gt=0"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

type CartActionRequest struct {
	Action string `json:"action" validate:"required,oneof=increase decrease remove"`
}

type CheckoutRequest struct {
	RequestID string `json:"request_id" validate:"omitempty,max=128"`
	Address   string `json:"address" validate:"required,max=1000"`
}

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationDetails(err error) []ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationDetail{{Message: err.Error()}}
	}
	details := make([]ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, ValidationDetail{Field: e.Field(), Message: validationMessage(e)})
	}
	return details
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "url":
		return "Invalid URL format"
	case "numeric":
		return "Must be numeric"
	case "number":
		return "Must be a whole non-negative number"
	default:
		return "Invalid value"
	}
}
