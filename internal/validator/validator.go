// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("receipt_status", validateReceiptStatus)
		_ = v.RegisterValidation("match_status", validateMatchStatus)
		_ = v.RegisterValidation("proposal_sort", validateProposalSort)
	}
}

func validateReceiptStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "uploaded", "processing", "ready", "review_required", "matched", "error":
		return true
	}
	return false
}

func validateMatchStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "unmatched", "proposed", "matched":
		return true
	}
	return false
}

func validateProposalSort(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "score", "date":
		return true
	}
	return false
}
