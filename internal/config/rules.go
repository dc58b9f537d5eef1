// Package config holds the monitoring rules: which locations make a document
// geographically relevant, which keywords tag it, which subreddits and
// bulletin site to watch, and the time-window parameters. Compiled-in
// defaults cover the Ontario condominium campaign; a YAML rules file can
// override any field.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Rules is the full rule set for one monitoring campaign.
//
// A YAML override file is merged over the defaults: keys absent from the
// file keep their default values.
type Rules struct {
	// LocationTerms make a document geo-relevant when any one of them
	// appears (case-insensitive) in the combined title+body text.
	LocationTerms []string `yaml:"location_terms"`

	// StandardKeywords is the shared topic keyword list, in priority order.
	// Matched keywords become tags in this order.
	StandardKeywords []string `yaml:"standard_keywords"`

	// ForumExtraKeywords and BulletinExtraKeywords are appended to the
	// standard list for the respective source.
	ForumExtraKeywords    []string `yaml:"forum_extra_keywords"`
	BulletinExtraKeywords []string `yaml:"bulletin_extra_keywords"`

	// Subreddits the forum adapter lists, without the "r/" prefix.
	Subreddits []string `yaml:"subreddits"`

	// BulletinIndexURL is the page scanned for bulletin PDF links.
	BulletinIndexURL string `yaml:"bulletin_index_url"`

	// CampaignStart is the hard lower bound of the absolute window.
	// Documents published before it are rejected regardless of freshness.
	CampaignStart time.Time `yaml:"campaign_start"`

	// WindowDays is the rolling recency horizon in days.
	WindowDays int `yaml:"window_days"`

	// MaxTags caps the matched-tag sequence per document.
	MaxTags int `yaml:"max_tags"`

	// FuzzyEnabled turns on the edit-distance refinement for keywords that
	// miss on exact containment. FuzzyThreshold is the 0-100 partial-ratio
	// score a sentence must reach.
	FuzzyEnabled   bool `yaml:"fuzzy_enabled"`
	FuzzyThreshold int  `yaml:"fuzzy_threshold"`

	// MinYear and MaxYear bound plausible years for title-embedded dates.
	// A matched year outside the range is treated as a non-match.
	MinYear int `yaml:"min_year"`
	MaxYear int `yaml:"max_year"`
}

// DefaultRules returns the compiled-in Ontario condominium rule set.
func DefaultRules() Rules {
	return Rules{
		LocationTerms: []string{
			"ontario", "toronto", "canada", "ottawa", "mississauga",
			"brampton", "hamilton", "london", "markham", "vaughan",
			"kitchener", "windsor", "richmond hill", "oakville", "burlington",
			"oshawa", "barrie", "st. catharines", "cambridge", "kingston",
			"whitby", "guelph", "thunder bay", "waterloo", "brantford",
			"niagara falls",
		},
		StandardKeywords: []string{
			"condominium authority of ontario",
			"condo authority of ontario",
			"condo authority",
			"condominium authority",
			"cao ontario",
			"condominium act",
			"ontario condominium act",
			"condominium act ontario",
			"condo tribunal ontario",
			"condominium tribunal ontario",
			"condo authority tribunal",
			"condominium authority tribunal",
			"cao tribunal",
			"ontario condo laws",
			"condo governance ontario",
			"ontario condo regulations",
			"condo bylaws ontario",
			"condo policy changes ontario",
			"condo tribunal cases ontario",
			"condo tribunal decisions ontario",
			"condo tribunal rulings ontario",
			"condominium tribunal hearings",
			"condo tribunal appeals ontario",
			"condo tribunal enforcement ontario",
			"condo tribunal complaint process",
			"condo legal disputes ontario",
			"condo tribunal case law ontario",
			"condo board disputes ontario",
			"condo board complaints ontario",
			"condo board corruption ontario",
			"ontario condo board governance",
			"condo board misconduct ontario",
			"condo board mismanagement ontario",
			"condo board transparency issues ontario",
			"condo owner rights ontario",
			"condo owner disputes ontario",
			"condo dispute resolution ontario",
			"condo resident rights ontario",
			"condo complaint process ontario",
			"condo tenant rights ontario",
			"ontario condo act violations",
			"condo maintenance fees ontario",
			"condo fee increases ontario",
			"condo reserve fund ontario",
			"condo financial mismanagement ontario",
			"condo special assessments ontario",
			"condo developer fraud ontario",
			"condo property management ontario",
			"condo management disputes ontario",
			"condo management complaints ontario",
			"ontario condo rental rules",
			"ontario condo tribunal vs landlord tenant board",
		},
		ForumExtraKeywords: []string{
			"cao", "cao tribunal", "cao condo", "cao complaint", "cao decision",
			"condo issues ontario", "condo complaint ontario", "condo fees ontario",
			"condo fraud ontario", "condo problems ontario", "condo scam ontario",
			"condo rules ontario", "condo living ontario", "condo association ontario",
			"property manager issues ontario", "condo management ontario",
			"condo disputes ontario", "condo regulations ontario", "cat ontario",
		},
		BulletinExtraKeywords: []string{"cat", "cao"},
		Subreddits: []string{
			"TorontoRealEstate", "PersonalFinanceCanada", "CanadaHousing",
			"CanadaHousing2", "askTO", "OntarioLandlord", "Hamilton", "Landlord",
			"landlords", "LawCanada", "legaladvicecanada", "londonontario",
			"mississauga", "MississaugaRealEstate", "ontario", "ottawa",
			"toronto", "PersonalFinance", "REBubble", "Vaughan", "waterloo",
		},
		BulletinIndexURL: "https://tocondonews.com/",
		CampaignStart:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		WindowDays:       30,
		MaxTags:          10,
		FuzzyEnabled:     true,
		FuzzyThreshold:   90,
		MinYear:          2020,
		MaxYear:          2030,
	}
}

// LoadRules returns the default rule set merged with the YAML file at path.
// An empty path returns the defaults unchanged.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules file: %w", err)
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return rules, nil
}

// Validate checks the rule set for values the pipeline cannot run with.
func (r Rules) Validate() error {
	if len(r.LocationTerms) == 0 {
		return fmt.Errorf("location_terms must not be empty")
	}
	if len(r.StandardKeywords) == 0 {
		return fmt.Errorf("standard_keywords must not be empty")
	}
	if r.CampaignStart.IsZero() {
		return fmt.Errorf("campaign_start must be set")
	}
	if r.WindowDays <= 0 {
		return fmt.Errorf("window_days must be positive, got %d", r.WindowDays)
	}
	if r.MaxTags <= 0 {
		return fmt.Errorf("max_tags must be positive, got %d", r.MaxTags)
	}
	if r.FuzzyThreshold < 0 || r.FuzzyThreshold > 100 {
		return fmt.Errorf("fuzzy_threshold must be within [0, 100], got %d", r.FuzzyThreshold)
	}
	if r.MinYear > r.MaxYear {
		return fmt.Errorf("min_year %d exceeds max_year %d", r.MinYear, r.MaxYear)
	}
	return nil
}

// ForumKeywords returns the keyword list for forum sources, standard list
// first so tag order stays stable across sources.
func (r Rules) ForumKeywords() []string {
	return appendKeywords(r.StandardKeywords, r.ForumExtraKeywords)
}

// BulletinKeywords returns the keyword list for bulletin sources.
func (r Rules) BulletinKeywords() []string {
	return appendKeywords(r.StandardKeywords, r.BulletinExtraKeywords)
}

// Horizon returns the rolling recency window as a duration.
func (r Rules) Horizon() time.Duration {
	return time.Duration(r.WindowDays) * 24 * time.Hour
}

func appendKeywords(standard, extra []string) []string {
	out := make([]string, 0, len(standard)+len(extra))
	out = append(out, standard...)
	out = append(out, extra...)
	return out
}
