package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Veraticus/course-planner/internal/common"
	"github.com/Veraticus/course-planner/internal/model"
)

// Profile is a student's planning request.
type Profile struct {
	Name                      string         `mapstructure:"name" yaml:"name,omitempty"`
	BreadthAreas              []string       `mapstructure:"breadth_areas" yaml:"breadth_areas" validate:"len=2,dive,required"`
	FoundationsNotSatisfied   []string       `mapstructure:"foundations_not_satisfied" yaml:"foundations_not_satisfied,omitempty" validate:"max=2,dive,required"`
	Topics                    map[string]int `mapstructure:"topics" yaml:"topics,omitempty" validate:"dive,keys,required,endkeys,gte=0"`
	Taken                     []string       `mapstructure:"taken" yaml:"taken,omitempty"`
	Waived                    []string       `mapstructure:"waived" yaml:"waived,omitempty"`
	Years                     int            `mapstructure:"years" yaml:"years" validate:"gte=1,lte=6"`
	InternshipQuarter         int            `mapstructure:"internship_quarter" yaml:"internship_quarter,omitempty" validate:"gte=0"`
	Seed                      uint64         `mapstructure:"seed" yaml:"seed,omitempty"`
	SignificantImplementation bool           `mapstructure:"significant_implementation" yaml:"significant_implementation,omitempty"`
	PreferRewards             bool           `mapstructure:"prefer_rewards" yaml:"prefer_rewards,omitempty"`
	Shuffle                   bool           `mapstructure:"shuffle" yaml:"shuffle,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultProfile is used when no profile is configured.
func DefaultProfile() Profile {
	return Profile{
		BreadthAreas: []string{"theory", "systems"},
		Years:        2,
	}
}

// LoadProfile decodes the "profile" key and validates it. Unset breadth
// areas and years take their DefaultProfile values.
func LoadProfile(v *viper.Viper) (Profile, error) {
	var profile Profile
	if v.IsSet("profile") {
		if err := v.UnmarshalKey("profile", &profile); err != nil {
			return Profile{}, fmt.Errorf("%w: profile: %w", common.ErrInvalidConfig, err)
		}
	}
	defaults := DefaultProfile()
	if profile.BreadthAreas == nil {
		profile.BreadthAreas = defaults.BreadthAreas
	}
	if profile.Years == 0 {
		profile.Years = defaults.Years
	}
	if err := profile.Validate(); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Validate checks the profile's field constraints.
func (p Profile) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(msgs, "; "))
}

// MaxQuarter is the last quarter index covered by the profile's years.
func (p Profile) MaxQuarter() int {
	return p.Years * model.QuartersPerYear
}
