package config

import (
	"errors"
	"log"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BusinessProfile is the seller identity printed on tax invoices.
type BusinessProfile struct {
	LegalName string `mapstructure:"legalName"`
	Address   string `mapstructure:"address"`
	State     string `mapstructure:"state"`
	StateCode string `mapstructure:"stateCode"`
	GSTIN     string `mapstructure:"gstin"`
	Phone     string `mapstructure:"phone"`
	Email     string `mapstructure:"email"`
	Footer    string `mapstructure:"footer"`
}

func DefaultBusinessProfile() BusinessProfile {
	return BusinessProfile{
		LegalName: "FinalERP Store",
		Address:   "",
		State:     "Kerala",
		StateCode: "32",
		Footer:    "This is a computer generated invoice.",
	}
}

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z0-9]{13}$`)

type BusinessProfileHolder struct {
	current atomic.Value // holds BusinessProfile
}

// NewStaticBusinessProfileHolder wraps a fixed profile, mainly for tests.
func NewStaticBusinessProfileHolder(profile BusinessProfile) *BusinessProfileHolder {
	holder := &BusinessProfileHolder{}
	holder.current.Store(profile)
	return holder
}

func NewBusinessProfileHolder(cfg Config) (*BusinessProfileHolder, error) {
	v := viper.New()

	if path := strings.TrimSpace(cfg.BusinessConfigPath); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("business")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/finalerp")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FINALERP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBusinessProfile()
	v.SetDefault("business.legalName", defaults.LegalName)
	v.SetDefault("business.address", defaults.Address)
	v.SetDefault("business.state", defaults.State)
	v.SetDefault("business.stateCode", defaults.StateCode)
	v.SetDefault("business.footer", defaults.Footer)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		watch = false
	}

	var profile BusinessProfile
	if err := v.UnmarshalKey("business", &profile); err != nil {
		return nil, err
	}
	profile = normalizeBusinessProfile(profile)
	if err := validateBusinessProfile(profile); err != nil {
		return nil, err
	}

	holder := &BusinessProfileHolder{}
	holder.current.Store(profile)

	if watch {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated BusinessProfile
			if err := v.UnmarshalKey("business", &updated); err != nil {
				log.Printf("[business-config] reload failed: %v", err)
				return
			}
			updated = normalizeBusinessProfile(updated)
			if err := validateBusinessProfile(updated); err != nil {
				log.Printf("[business-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[business-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *BusinessProfileHolder) Get() BusinessProfile {
	if h == nil {
		return DefaultBusinessProfile()
	}
	return h.current.Load().(BusinessProfile)
}

func normalizeBusinessProfile(p BusinessProfile) BusinessProfile {
	p.LegalName = strings.TrimSpace(p.LegalName)
	p.Address = strings.TrimSpace(p.Address)
	p.State = strings.TrimSpace(p.State)
	p.StateCode = strings.TrimSpace(p.StateCode)
	p.GSTIN = strings.ToUpper(strings.TrimSpace(p.GSTIN))
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(p.Email)
	p.Footer = strings.TrimSpace(p.Footer)
	return p
}

func validateBusinessProfile(p BusinessProfile) error {
	if p.LegalName == "" {
		return errors.New("business.legalName cannot be empty")
	}
	if p.GSTIN != "" && !gstinPattern.MatchString(p.GSTIN) {
		return errors.New("business.gstin is not a valid GSTIN")
	}
	return nil
}
