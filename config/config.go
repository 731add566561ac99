package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
)

// AIParams holds the parameters for one AI difficulty tier.
// The opponent acts once per tick; the delay between ticks is drawn
// uniformly from [DelayMinMS, DelayMaxMS].
type AIParams struct {
	Name       string `json:"name"`
	DelayMinMS int    `json:"delay_min_ms"`
	DelayMaxMS int    `json:"delay_max_ms"`
}

// Config holds all configurable game and server parameters.
type Config struct {
	// Rules engine
	PyramidRows    int `json:"pyramid_rows"`
	DeckCycles     int `json:"deck_cycles"`     // copies of each rank in the deck
	MaxRank        int `json:"max_rank"`        // ranks run 1..MaxRank
	TargetSum      int `json:"target_sum"`      // a valid match sums to this
	MatchPoints    int `json:"match_points"`    // points per removed unit
	ComboThreshold int `json:"combo_threshold"` // streak length that grants a bonus token
	GameTimeSec    int `json:"game_time_sec"`

	// Session layer
	StartDelayMS   int `json:"start_delay_ms"` // grace delay before game_start after the second join
	RoomCodeLength int `json:"room_code_length"`

	// Server
	MaxNameLength int    `json:"max_name_length"`
	WSPort        int    `json:"ws_port"`
	DatabaseURL   string `json:"-"` // env only; never read from config.json
	AuthBaseURL   string `json:"-"` // env only

	// AIProfiles lists the difficulty tiers, easiest first.
	AIProfiles []AIParams `json:"ai_profiles"`
}

// PyramidSlots returns the number of slots in the pyramid (1+2+...+rows).
func (c *Config) PyramidSlots() int {
	return c.PyramidRows * (c.PyramidRows + 1) / 2
}

// DeckSize returns the total number of ranks in a freshly built deck.
func (c *Config) DeckSize() int {
	return c.DeckCycles * c.MaxRank
}

// Profile returns the AI tier with the given name, or nil if unknown.
func (c *Config) Profile(name string) *AIParams {
	for i := range c.AIProfiles {
		if c.AIProfiles[i].Name == name {
			return &c.AIProfiles[i]
		}
	}
	return nil
}

// Defaults returns a Config with the standard-variant values.
func Defaults() *Config {
	return &Config{
		PyramidRows:    7,
		DeckCycles:     5,
		MaxRank:        11,
		TargetSum:      11,
		MatchPoints:    10,
		ComboThreshold: 5,
		GameTimeSec:    180,
		StartDelayMS:   2000,
		RoomCodeLength: 6,
		MaxNameLength:  24,
		WSPort:         8080,
		AIProfiles: []AIParams{
			{Name: "easy", DelayMinMS: 4000, DelayMaxMS: 7000},
			{Name: "medium", DelayMinMS: 2000, DelayMaxMS: 5000},
			{Name: "hard", DelayMinMS: 1000, DelayMaxMS: 3000},
		},
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	overrideInt(&cfg.PyramidRows, "PYRAMID_ROWS")
	overrideInt(&cfg.DeckCycles, "DECK_CYCLES")
	overrideInt(&cfg.MaxRank, "MAX_RANK")
	overrideInt(&cfg.TargetSum, "TARGET_SUM")
	overrideInt(&cfg.MatchPoints, "MATCH_POINTS")
	overrideInt(&cfg.ComboThreshold, "COMBO_THRESHOLD")
	overrideInt(&cfg.GameTimeSec, "GAME_TIME_SEC")
	overrideInt(&cfg.StartDelayMS, "START_DELAY_MS")
	overrideInt(&cfg.RoomCodeLength, "ROOM_CODE_LENGTH")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.AuthBaseURL, "AUTH_BASE_URL")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
