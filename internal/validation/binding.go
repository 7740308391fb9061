package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ignatzorin/campus-lostfound/internal/models"
)

var registerOnce sync.Once

// RegisterBindings добавляет теги itemstatus, claimstatus и category в валидатор gin.
func RegisterBindings() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("validation: движок gin не go-playground/validator")
			return
		}
		err = RegisterTags(v)
	})
	return err
}

// RegisterTags регистрирует доменные теги на переданном валидаторе.
// В ошибках поля называются по тегу json или form.
func RegisterTags(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)

	tags := map[string]map[string]struct{}{
		"itemstatus":  models.ValidItemStatuses,
		"claimstatus": models.ValidClaimStatuses,
		"category":    models.ValidCategories,
		"role":        models.ValidRoles,
	}
	for tag, allowed := range tags {
		allowed := allowed
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			_, ok := allowed[fl.Field().String()]
			return ok
		}); err != nil {
			return err
		}
	}
	return nil
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}
