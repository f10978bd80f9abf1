package clock

import (
	"time"
	_ "time/tzdata"

	"github.com/Rosario027/finalerp/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Clock supplies the current instant in the business timezone.
type Clock interface {
	Now() time.Time
}

var Module = fx.Module("clock",
	fx.Provide(NewFromConfig),
)

// indiaStandardTime is used when the configured zone cannot be loaded.
var indiaStandardTime = time.FixedZone("IST", 5*60*60+30*60)

type SystemClock struct {
	loc *time.Location
}

func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = indiaStandardTime
	}
	return &SystemClock{loc: loc}
}

func NewFromConfig(cfg config.Config, log *zap.Logger) Clock {
	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		log.Warn("unknown business timezone, falling back to IST",
			zap.String("timezone", cfg.BusinessTimezone),
			zap.Error(err),
		)
		loc = indiaStandardTime
	}
	return NewSystemClock(loc)
}

func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *SystemClock) Location() *time.Location {
	return c.loc
}
