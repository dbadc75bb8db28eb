package codex

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator builds the validator shared by every entity, with one
// custom tag per closed enumeration.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so messages match the persisted document.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	enums := map[string]func(string) bool{
		"emotion":           func(s string) bool { return validEmotions[EmotionType(s)] },
		"relationship_type": func(s string) bool { return validRelationshipTypes[RelationshipType(s)] },
		"scene_type":        func(s string) bool { return validSceneTypes[SceneType(s)] },
		"arc_type":          func(s string) bool { return validArcTypes[ArcType(s)] },
		"callback_status":   func(s string) bool { return validStatuses[CallbackStatus(s)] },
		"importance":        func(s string) bool { return Importance(s).Rank() > 0 },
		"draft_status":      func(s string) bool { return validDraftStatuses[DraftStatus(s)] },
	}
	for tag, ok := range enums {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return ok(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("registering %s validation: %v", tag, err))
		}
	}
	return v
}

// validateStruct runs the struct-tag constraints and folds any failures
// into a single ErrInvalid error.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}
