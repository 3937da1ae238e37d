// Package calorie estimates daily energy needs with the Harris-Benedict
// equations.
package calorie

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidInput is wrapped by every validation error.
var ErrInvalidInput = errors.New("invalid calorie input")

// Sex selects the equation.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// TargetDelta is the daily surplus or deficit used for the gain and lose
// targets.
const TargetDelta = 500

// Level is a named activity factor.
type Level struct {
	Name   string  `json:"name"`
	Factor float64 `json:"factor"`
}

var levels = []Level{
	{"sedentary", 1.2},
	{"light", 1.375},
	{"moderate", 1.55},
	{"active", 1.725},
	{"athlete", 1.9},
}

// Levels returns the activity levels from least to most active.
func Levels() []Level {
	return append([]Level(nil), levels...)
}

// Input is one form submission. Age is in years, height in cm, weight in kg.
type Input struct {
	Sex            Sex     `json:"sex"`
	Age            float64 `json:"age"`
	HeightCM       float64 `json:"height_cm"`
	WeightKG       float64 `json:"weight_kg"`
	ActivityFactor float64 `json:"activity_factor"`
}

// Result holds rounded kcal/day values.
type Result struct {
	BMR      int `json:"bmr"`
	TDEE     int `json:"tdee"`
	Lose     int `json:"lose"`
	Maintain int `json:"maintain"`
	Gain     int `json:"gain"`
}

// Validate checks in without computing anything.
func (in Input) Validate() error {
	if in.Sex != Male && in.Sex != Female {
		return fmt.Errorf("%w: sex must be male or female, got %q", ErrInvalidInput, in.Sex)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"age", in.Age}, {"height", in.HeightCM}, {"weight", in.WeightKG}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v <= 0 {
			return fmt.Errorf("%w: %s must be a positive number", ErrInvalidInput, f.name)
		}
	}
	if _, ok := levelFor(in.ActivityFactor); !ok {
		return fmt.Errorf("%w: unsupported activity factor %v", ErrInvalidInput, in.ActivityFactor)
	}
	return nil
}

func levelFor(factor float64) (Level, bool) {
	for _, l := range levels {
		if math.Abs(l.Factor-factor) < 1e-9 {
			return l, true
		}
	}
	return Level{}, false
}

// BMR returns the unrounded basal metabolic rate. It does not validate.
func BMR(sex Sex, age, heightCM, weightKG float64) float64 {
	if sex == Female {
		return 447.593 + 9.247*weightKG + 3.098*heightCM - 4.330*age
	}
	return 88.362 + 13.397*weightKG + 4.799*heightCM - 5.677*age
}

// Estimate computes BMR and TDEE and the weight-change targets derived from
// TDEE. Both BMR and TDEE are rounded from the unrounded BMR. There is no
// lower bound on the lose target.
func Estimate(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	bmr := BMR(in.Sex, in.Age, in.HeightCM, in.WeightKG)
	tdee := int(math.Round(bmr * in.ActivityFactor))
	return Result{
		BMR:      int(math.Round(bmr)),
		TDEE:     tdee,
		Lose:     tdee - TargetDelta,
		Maintain: tdee,
		Gain:     tdee + TargetDelta,
	}, nil
}

// ParseInput builds an Input from form strings. activity is either a factor
// such as "1.55" or a level name such as "moderate".
func ParseInput(sex, age, height, weight, activity string) (Input, error) {
	in := Input{Sex: Sex(strings.ToLower(strings.TrimSpace(sex)))}

	var err error
	if in.Age, err = parseNumber("age", age); err != nil {
		return Input{}, err
	}
	if in.HeightCM, err = parseNumber("height", height); err != nil {
		return Input{}, err
	}
	if in.WeightKG, err = parseNumber("weight", weight); err != nil {
		return Input{}, err
	}

	activity = strings.ToLower(strings.TrimSpace(activity))
	for _, l := range levels {
		if l.Name == activity {
			in.ActivityFactor = l.Factor
			break
		}
	}
	if in.ActivityFactor == 0 {
		if in.ActivityFactor, err = parseNumber("activity", activity); err != nil {
			return Input{}, err
		}
	}
	return in, in.Validate()
}

func parseNumber(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidInput, name)
	}
	return v, nil
}
