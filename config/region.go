package config

import "net/url"

// RegionConfig holds region-specific search parameters
type RegionConfig struct {
	Gl string // Country code
	Lr string // Language restriction
	Hl string // Host language
}

// RegionConfigs maps region codes to their configurations
var RegionConfigs = map[string]RegionConfig{
	"us": {"us", "lang_en", "en-US"},
	"uk": {"gb", "lang_en", "en-GB"},
	"ca": {"ca", "lang_en", "en-CA"},
	"au": {"au", "lang_en", "en-AU"},
	"in": {"in", "lang_en", "en-IN"},
	"de": {"de", "lang_de", "de-DE"},
	"fr": {"fr", "lang_fr", "fr-FR"},
	"es": {"es", "lang_es", "es-ES"},
	"it": {"it", "lang_it", "it-IT"},
	"nl": {"nl", "lang_nl", "nl-NL"},
	"br": {"br", "lang_pt", "pt-BR"},
	"tr": {"tr", "lang_tr", "tr-TR"},
}

// Apply adds the region parameters to params, leaving keys already present untouched.
func (r RegionConfig) Apply(params url.Values) {
	if r.Gl != "" && params.Get("gl") == "" {
		params.Set("gl", r.Gl)
	}
	if r.Lr != "" && params.Get("lr") == "" {
		params.Set("lr", r.Lr)
	}
	if r.Hl != "" && params.Get("hl") == "" {
		params.Set("hl", r.Hl)
	}
}
