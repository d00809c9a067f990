package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/repository"
	"blogmodapk-backend/pkg/cache"
	"blogmodapk-backend/pkg/logger"
)

type settingKind int

const (
	settingText settingKind = iota
	settingBool
	settingPageSize
)

type settingDefinition struct {
	def    string
	kind   settingKind
	public bool
}

var settingDefinitions = map[string]settingDefinition{
	"siteName":               {def: "Blog ModAPK", public: true},
	"siteDescription":        {def: "Download the latest Android apps and games", public: true},
	"siteUrl":                {def: "", public: true},
	"siteKeywords":           {def: "", public: true},
	"contactEmail":           {def: "", public: true},
	"socialFacebook":         {def: "", public: true},
	"socialTwitter":          {def: "", public: true},
	"socialInstagram":        {def: "", public: true},
	"socialYoutube":          {def: "", public: true},
	"googleSiteVerification": {def: ""},
	"googleAnalytics":        {def: ""},
	"enableComments":         {def: "true", kind: settingBool, public: true},
	"enableDownloads":        {def: "true", kind: settingBool, public: true},
	"postsPerPage":           {def: "12", kind: settingPageSize, public: true},
}

// SettingsPayload is a settings snapshot with a validator for conditional requests.
type SettingsPayload struct {
	Settings map[string]string `json:"settings"`
	ETag     string            `json:"-"`
}

type SettingService struct {
	settingRepo repository.SettingRepository
	cache       *cache.Cache
}

func NewSettingService(settingRepo repository.SettingRepository, cacheService *cache.Cache) *SettingService {
	return &SettingService{settingRepo: settingRepo, cache: cacheService}
}

// GetPublic returns the settings safe to expose to anonymous visitors.
func (s *SettingService) GetPublic() (*SettingsPayload, error) {
	return s.load(true)
}

func (s *SettingService) GetAll(actor Actor) (*SettingsPayload, error) {
	if err := actor.require(authorization.PermissionManageSettings); err != nil {
		return nil, err
	}
	return s.load(false)
}

// Update validates every supplied key before writing any of them.
func (s *SettingService) Update(actor Actor, values map[string]string) (*SettingsPayload, error) {
	if err := actor.require(authorization.PermissionManageSettings); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, newValidationError("No settings supplied")
	}

	cleaned := make(map[string]string, len(values))
	for key, value := range values {
		definition, ok := settingDefinitions[key]
		if !ok {
			return nil, newValidationError("Unknown setting %q", key)
		}
		normalised, err := normaliseSetting(key, definition, value)
		if err != nil {
			return nil, err
		}
		cleaned[key] = normalised
	}

	if err := s.settingRepo.SetMany(cleaned); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	if err := s.cache.InvalidateSettings(); err != nil {
		logger.Warn("Failed to invalidate settings cache", map[string]interface{}{"error": err.Error()})
	}
	return s.load(false)
}

func (s *SettingService) load(public bool) (*SettingsPayload, error) {
	if s.cache.Enabled() {
		var cached SettingsPayload
		if err := s.cache.GetCachedSettings(public, &cached.Settings); err == nil {
			cached.ETag = settingsETag(cached.Settings)
			return &cached, nil
		}
	}

	stored, err := s.settingRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	values := make(map[string]string, len(settingDefinitions))
	for key, definition := range settingDefinitions {
		if public && !definition.public {
			continue
		}
		values[key] = definition.def
	}
	for _, setting := range stored {
		definition, ok := settingDefinitions[setting.Key]
		if !ok || (public && !definition.public) {
			continue
		}
		values[setting.Key] = setting.Value
	}

	if err := s.cache.CacheSettings(public, values); err != nil {
		logger.Warn("Failed to cache settings", map[string]interface{}{"error": err.Error()})
	}
	return &SettingsPayload{Settings: values, ETag: settingsETag(values)}, nil
}

func normaliseSetting(key string, definition settingDefinition, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch definition.kind {
	case settingBool:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return "", newValidationError("%s must be true or false", key)
		}
		return strconv.FormatBool(parsed), nil
	case settingPageSize:
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 || parsed > 100 {
			return "", newValidationError("%s must be a number between 1 and 100", key)
		}
		return strconv.Itoa(parsed), nil
	default:
		return value, nil
	}
}

// settingsETag hashes the payload in key order so equal settings give equal tags.
func settingsETag(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	digest := xxhash.New()
	for _, key := range keys {
		encoded, _ := json.Marshal([2]string{key, values[key]})
		_, _ = digest.Write(encoded)
	}
	return fmt.Sprintf(`W/"%016x"`, digest.Sum64())
}
