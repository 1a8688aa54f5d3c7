package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var selectionValidator = validator.New()

// YearRange is an inclusive span of years.
type YearRange struct {
	From int `json:"from" validate:"gte=2023,lte=2035"`
	To   int `json:"to" validate:"gte=2023,lte=2035,gtefield=From"`
}

// FullRange covers every year of the table.
func FullRange() YearRange {
	return YearRange{From: FirstYear, To: LastYear}
}

// ClampRange pulls both ends into the table bounds. Order is kept, so an
// inverted range stays inverted.
func ClampRange(from, to int) YearRange {
	return YearRange{From: clampYear(from), To: clampYear(to)}
}

func clampYear(year int) int {
	if year < FirstYear {
		return FirstYear
	}
	if year > LastYear {
		return LastYear
	}
	return year
}

// Years lists the years covered by r.
func (r YearRange) Years() []int {
	return YearsBetween(r.From, r.To)
}

// Validate reports ErrInvalidRange for inverted or out-of-bounds ranges.
func (r YearRange) Validate() error {
	if err := selectionValidator.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %s (from=%d to=%d)", ErrInvalidRange, strings.ToLower(fe.Field()), fe.Tag(), r.From, r.To)
		}
		return fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return nil
}

func (r YearRange) String() string {
	return strconv.Itoa(r.From) + "-" + strconv.Itoa(r.To)
}

// Selection is the per-request choice of metrics and years.
type Selection struct {
	Metrics []string  `json:"metrics" validate:"dive,required"`
	Years   YearRange `json:"years"`
}

// Validate checks the selection shape. Membership of the metric names is
// checked against the table by FilterAndTransform.
func (s Selection) Validate() error {
	if len(s.Metrics) == 0 {
		return ErrEmptySelection
	}
	if err := selectionValidator.Var(s.Metrics, "dive,required"); err != nil {
		return fmt.Errorf("%w: blank metric name", ErrUnknownMetric)
	}
	return s.Years.Validate()
}

// Key is a stable token for the selection, used in cache keys. Metric order
// does not change the derived series, so it does not change the key either.
func (s Selection) Key() string {
	metrics := append([]string(nil), s.Metrics...)
	sort.Strings(metrics)
	digest := uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(metrics, "\x00")))
	return digest.String() + ":" + s.Years.String()
}
