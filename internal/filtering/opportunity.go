package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/maganghub/internal/maganghub"
)

type opportunityFilter struct {
	disabled bool
	reason   string
	ratio    Ratio
}

// NewOpportunity creates a filter that keeps vacancies meeting the configured opportunity ratio.
func NewOpportunity() Filter {
	return &opportunityFilter{}
}

func (f *opportunityFilter) Name() string { return "opportunity" }

func (f *opportunityFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *opportunityFilter) IsEnabled() bool { return !f.disabled }

func (f *opportunityFilter) Validate(cfg *Config) error {
	f.ratio = RatioAny
	if cfg == nil {
		return nil
	}

	ratio, err := ParseRatio(cfg.Opportunity)
	if err != nil {
		return err
	}
	f.ratio = ratio
	return nil
}

func (f *opportunityFilter) Apply(_ context.Context, deps Deps, v *maganghub.Vacancies) (*maganghub.Vacancies, Step, error) {
	initial := v.Len()
	if f.ratio == RatioAny {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	kept := ApplyRatio(v.Items, f.ratio)
	dropped := droppedIDs(v.Items, kept)
	v.Items = kept

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding vacancies by opportunity ratio",
			zap.String("ratio", string(f.ratio)),
			zap.Strings("excluded_vacancies", dropped),
			zap.Int("vacancies_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}

func (f *opportunityFilter) Status() Status {
	details := map[string]string{}
	if f.ratio != RatioAny {
		details["ratio"] = string(f.ratio)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
