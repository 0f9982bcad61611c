package rates

import (
	"fmt"
	"sync"

	"github.com/bher20/ebillcalc/internal/billing"
)

// SlabParser is the generic slab-table parser used when a tariff has no
// parser of its own.
const SlabParser = "slab"

// ParserFunc parses a PDF file into a schedule.
type ParserFunc func(path string) (*billing.RateSchedule, error)

// TextParserFunc parses extracted PDF text into a schedule.
type TextParserFunc func(text string) (*billing.RateSchedule, error)

// ParserConfig holds the parser for one tariff (or the generic slab parser).
type ParserConfig struct {
	Key       string
	Name      string
	ParsePDF  ParserFunc
	ParseText TextParserFunc
}

var (
	parsersMu sync.RWMutex
	parsers   = make(map[string]ParserConfig)
)

// RegisterParser registers a parser. It panics on an empty key, a nil
// ParsePDF or a duplicate key, so it belongs in init functions.
func RegisterParser(cfg ParserConfig) {
	if cfg.Key == "" {
		panic("rates: RegisterParser called with empty key")
	}
	if cfg.ParsePDF == nil {
		panic(fmt.Sprintf("rates: RegisterParser(%q) called with nil ParsePDF", cfg.Key))
	}

	parsersMu.Lock()
	defer parsersMu.Unlock()

	if _, exists := parsers[cfg.Key]; exists {
		panic(fmt.Sprintf("rates: RegisterParser called twice for key %q", cfg.Key))
	}
	parsers[cfg.Key] = cfg
}

// ParserFor returns the parser registered for a tariff key, falling back to
// the slab parser.
func ParserFor(key string) ParserConfig {
	parsersMu.RLock()
	defer parsersMu.RUnlock()

	if cfg, ok := parsers[key]; ok {
		return cfg
	}
	return parsers[SlabParser]
}
