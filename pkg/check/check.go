package check

import "github.com/pkg/errors"

// True returns an error with the provided message if the condition is false.
func True(condition bool, msg string) error {
	return check(condition, msg, "expected true, got false")
}

// GreaterThan returns an error if actual is not strictly above bound.
func GreaterThan(actual, bound float64, msg string) error {
	return check(actual > bound, msg, "%v is not greater than %v", actual, bound)
}

// GreaterThanOrEqualTo returns an error if actual is below bound.
func GreaterThanOrEqualTo(actual, bound float64, msg string) error {
	return check(actual >= bound, msg, "%v is less than %v", actual, bound)
}

// Between returns an error if actual falls outside [lo, hi].
func Between(actual, lo, hi float64, msg string) error {
	return check(lo <= actual && actual <= hi, msg, "%v is not between %v and %v", actual, lo, hi)
}

// In returns an error if actual is not one of the allowed values.
func In(actual string, allowed []string, msg string) error {
	for _, a := range allowed {
		if a == actual {
			return nil
		}
	}
	return check(false, msg, "%q not in %q", actual, allowed)
}

func check(condition bool, msg string, format string, args ...interface{}) error {
	if condition {
		return nil
	}
	err := errors.Errorf(format, args...)
	if msg == "" {
		return err
	}
	return errors.Wrap(err, msg)
}
