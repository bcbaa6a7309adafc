// internal/handlers/form.go
package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/utils"
)

// formFields reads optional multipart fields. The first field that
// fails to parse is kept in failed.
type formFields struct {
	c      *gin.Context
	failed string
}

func (f *formFields) fail(field string) {
	if f.failed == "" {
		f.failed = field
	}
}

func (f *formFields) text(field string) *string {
	if raw, ok := f.c.GetPostForm(field); ok {
		return &raw
	}
	return nil
}

func (f *formFields) id(field string) uuid.UUID {
	id, err := uuid.Parse(f.c.PostForm(field))
	if err != nil {
		f.fail(field)
	}
	return id
}

func (f *formFields) money(field string) *decimal.Decimal {
	raw, ok := f.c.GetPostForm(field)
	if !ok || raw == "" {
		return nil
	}
	v, err := utils.ParseMoney(raw)
	if err != nil {
		f.fail(field)
		return nil
	}
	return &v
}

func (f *formFields) count(field string) int {
	v, err := strconv.Atoi(f.c.PostForm(field))
	if err != nil {
		f.fail(field)
	}
	return v
}

func (f *formFields) flag(field string) *bool {
	raw, ok := f.c.GetPostForm(field)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		f.fail(field)
		return nil
	}
	return &v
}

func (f *formFields) variants() *[]models.Variant {
	raw, ok := f.c.GetPostForm("variants")
	if !ok {
		return nil
	}
	variants := []models.Variant{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &variants); err != nil {
			f.fail("variants")
			return nil
		}
	}
	return &variants
}

func (f *formFields) existingImages() []string {
	raw, ok := f.c.GetPostForm("existing_images")
	if !ok {
		return nil
	}
	images := []string{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &images); err != nil {
			f.fail("existing_images")
			return nil
		}
	}
	return images
}
