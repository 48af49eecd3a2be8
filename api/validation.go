package api

import (
	"log"
	"sync"

	"github.com/Domenick1991/shortlet/internal/availability"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the "day" tag to gin's validator. It accepts any
// date string the availability package can parse.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("day", validDay); err != nil {
			log.Printf("[http] register day validator: %v", err)
		}
	})
}

func validDay(fl validator.FieldLevel) bool {
	_, err := availability.ParseDay(fl.Field().String())
	return err == nil
}
