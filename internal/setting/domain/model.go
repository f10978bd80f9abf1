package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/Rosario027/finalerp/internal/tax"
)

type Setting struct {
	Key       string    `gorm:"column:name;primaryKey;type:varchar(100)"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Setting) TableName() string { return "settings" }

const (
	KeyInvoiceSeriesStart = "invoice_series_start"
	KeyCashGSTMode        = "cash_gst_mode"
	KeyOnlineGSTMode      = "online_gst_mode"
)

// NumberingConfig is a point-in-time snapshot of the settings the invoice
// pipeline depends on. It is rebuilt for every allocation.
type NumberingConfig struct {
	SeriesStart   int64
	CashGSTMode   tax.GSTMode
	OnlineGSTMode tax.GSTMode
}

func DefaultNumberingConfig() NumberingConfig {
	return NumberingConfig{
		SeriesStart:   1,
		CashGSTMode:   tax.GSTModeInclusive,
		OnlineGSTMode: tax.GSTModeInclusive,
	}
}

// NumberingConfigFrom overlays stored values on the defaults. Unparsable
// values fall back to the default for that key.
func NumberingConfigFrom(values map[string]string) NumberingConfig {
	cfg := DefaultNumberingConfig()
	if raw, ok := values[KeyInvoiceSeriesStart]; ok {
		if start, err := ParseSeriesStart(raw); err == nil {
			cfg.SeriesStart = start
		}
	}
	if raw, ok := values[KeyCashGSTMode]; ok {
		if mode, err := tax.ParseGSTMode(raw); err == nil {
			cfg.CashGSTMode = mode
		}
	}
	if raw, ok := values[KeyOnlineGSTMode]; ok {
		if mode, err := tax.ParseGSTMode(raw); err == nil {
			cfg.OnlineGSTMode = mode
		}
	}
	return cfg
}

func ParseSeriesStart(raw string) (int64, error) {
	start, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || start < 1 {
		return 0, ErrInvalidSeriesStart
	}
	return start, nil
}

// NumberingKeys are read together when building a NumberingConfig.
var NumberingKeys = []string{KeyInvoiceSeriesStart, KeyCashGSTMode, KeyOnlineGSTMode}
