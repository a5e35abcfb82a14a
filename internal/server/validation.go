package server

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/tournevent/ratebridge/pkg/shipment"
)

type addressRequest struct {
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" validate:"required"`
	CompanyName  string `json:"companyName"`
	Country      string `json:"country" validate:"required"`
	Name         string `json:"name"`
	PhoneNumber  string `json:"phoneNumber"`
	Postcode     string `json:"postcode" validate:"required"`
	State        string `json:"state"`
}

type weightRequest struct {
	Value float64 `json:"value" validate:"gt=0"`
	Unit  string  `json:"unit" validate:"required,oneof=kilogram ounce pound gram"`
}

// fetchRatesRequest is the body of POST /rates.
type fetchRatesRequest struct {
	ShippingAddress *addressRequest `json:"shippingAddress" validate:"required"`
	Weight          *weightRequest  `json:"weight" validate:"required"`
}

func (r *fetchRatesRequest) toPayload() *shipment.FetchRatesPayload {
	a := r.ShippingAddress
	return &shipment.FetchRatesPayload{
		ShippingAddress: shipment.ShippingAddress{
			AddressLine1: a.AddressLine1,
			AddressLine2: a.AddressLine2,
			City:         a.City,
			CompanyName:  a.CompanyName,
			Country:      a.Country,
			Name:         a.Name,
			PhoneNumber:  a.PhoneNumber,
			Postcode:     a.Postcode,
			State:        a.State,
		},
		Weight: shipment.Weight{
			Value: r.Weight.Value,
			Unit:  shipment.WeightUnit(r.Weight.Unit),
		},
	}
}

// newValidator returns a validator reporting fields by their JSON names.
func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindAndValidate binds the JSON body into out and validates it.
// On failure it writes a 400 response and returns the error so the handler
// can stop.
func bindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) error {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid_request_body",
			"msg":   err.Error(),
		})
		return err
	}

	if err := v.Struct(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation_failed",
			"fields": validationErrorsToMap(err),
		})
		return err
	}
	return nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fieldPath(fe.Namespace())] = fe.Error()
		}
		return out
	}
	out["error"] = err.Error()
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
