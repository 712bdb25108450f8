package scaffold

import (
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// Blueprint ids of the Quarkus family the plan is built from.
const (
	DefaultResource    = "resource/v2"
	ModelBlueprint     = "model/front"
	FieldBlueprint     = "model/field"
	MethodBlueprint    = "resource/method"
	ConstantsBlueprint = "commons/constants"
	proxyPrefix        = "proxy/"
)

// DefaultProxies is used when Options.Proxies is empty.
var DefaultProxies = []string{"apim"}

// Options select what a scaffold contains.
type Options struct {
	// Package is the Java base package, at least three dot separated segments.
	Package string `json:"package" yaml:"package" validate:"required,javapackage"`
	// Proxies name the proxy/<name> blueprints injected into the resource.
	Proxies []string `json:"proxies,omitempty" yaml:"proxies,omitempty" validate:"dive,required,alphanum"`
	// Resource is the resource blueprint id.
	Resource string `json:"resource,omitempty" yaml:"resource,omitempty"`
	// Workers bounds concurrent renders. Zero means one per CPU.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty" validate:"gte=0"`
	// Timeout bounds the whole batch. Zero means no deadline.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"gte=0"`
}

var javaPackageRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*){2,}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("javapackage", func(fl validator.FieldLevel) bool {
		return javaPackageRe.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks opts and fills in defaults.
func (o *Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	if len(o.Proxies) == 0 {
		o.Proxies = append([]string(nil), DefaultProxies...)
	}
	if o.Resource == "" {
		o.Resource = DefaultResource
	}
	return nil
}
