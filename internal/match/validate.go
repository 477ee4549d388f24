package match

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"roll-for-your-life/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterCustomTypeFunc(IDValue, ID{})
	})
	return validate
}

// Validate checks that cfg can start a match: a match id, a positive target
// score and at least one player, each with a unique id, a name and an avatar.
func Validate(cfg Config) error {
	err := configValidator().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.CodeConfig, "invalid match configuration", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, verr := range verrs {
		fields = append(fields, fmt.Sprintf("%s(%s)", verr.Namespace(), verr.Tag()))
	}
	return apperr.WithMetadata(
		apperr.CodeConfig,
		"invalid match configuration: "+strings.Join(fields, ", "),
		map[string]string{
			"match_id": cfg.MatchID.String(),
			"fields":   strings.Join(fields, ","),
		},
	)
}
