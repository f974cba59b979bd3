package wizard

import (
	"log/slog"

	"github.com/goliatone/go-declaration/pkg/address"
	"github.com/goliatone/go-declaration/pkg/validation"
	"github.com/goliatone/go-declaration/pkg/values"
	"github.com/goliatone/go-declaration/pkg/visibility"
)

// Option configures a Declaration.
type Option func(*Declaration)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Declaration) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithValueOptions forwards options to the answer store.
func WithValueOptions(options ...values.Option) Option {
	return func(d *Declaration) {
		d.valueOptions = append(d.valueOptions, options...)
	}
}

// WithFormatValidator replaces the default format rules.
func WithFormatValidator(v validation.FormatValidator) Option {
	return func(d *Declaration) {
		if v != nil {
			d.format = v
		}
	}
}

// WithAddressModel replaces the built-in address model.
func WithAddressModel(m address.Model) Option {
	return func(d *Declaration) {
		if m != nil {
			d.address = m
		}
	}
}

// WithEvaluator replaces the page visible_if evaluator.
func WithEvaluator(e visibility.Evaluator) Option {
	return func(d *Declaration) {
		if e != nil {
			d.evaluator = e
		}
	}
}

// WithExtras exposes caller flags to page visible_if rules.
func WithExtras(extras map[string]any) Option {
	return func(d *Declaration) {
		d.extras = extras
	}
}
