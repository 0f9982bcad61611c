package rates

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/bher20/ebillcalc/internal/billing"
	"github.com/bher20/ebillcalc/internal/storage"
)

// TariffDescriptor describes a named rate schedule and where to refresh it
// from. Bands may be empty for tariffs that only come from a PDF.
type TariffDescriptor struct {
	Key        string             `json:"key"`
	Name       string             `json:"name"`
	Currency   string             `json:"currency"`
	LandingURL string             `json:"landingUrl,omitempty"`
	PDFPath    string             `json:"pdfPath,omitempty"`
	Notes      string             `json:"notes,omitempty"`
	Bands      []billing.RateBand `json:"bands,omitempty"`
}

const (
	tariffsEnv = "EBILLCALC_TARIFFS_JSON"

	// DefaultTariff is the key of the built-in residential tariff.
	DefaultTariff = "bpdb"
)

func defaultTariffs() []TariffDescriptor {
	return []TariffDescriptor{
		{
			Key:        DefaultTariff,
			Name:       "BPDB Residential (LT-A)",
			Currency:   "BDT",
			LandingURL: "https://www.bpdb.gov.bd/site/page/tariff-rate",
			Notes:      "Five-slab residential tariff",
			Bands:      billing.DefaultBands(),
		},
	}
}

// Tariffs returns the tariff catalog. EBILLCALC_TARIFFS_JSON replaces the
// built-in list when it holds a non-empty JSON array.
func Tariffs() []TariffDescriptor {
	raw := os.Getenv(tariffsEnv)
	if raw == "" {
		return defaultTariffs()
	}
	var out []TariffDescriptor
	if err := json.Unmarshal([]byte(raw), &out); err != nil || len(out) == 0 {
		return defaultTariffs()
	}
	return out
}

// GetTariff looks a tariff up by key, case-insensitively.
func GetTariff(key string) (TariffDescriptor, bool) {
	for _, t := range Tariffs() {
		if strings.EqualFold(t.Key, key) {
			return t, true
		}
	}
	return TariffDescriptor{}, false
}

// StorageTariffs converts catalog entries into storage rows for seeding.
func StorageTariffs(list []TariffDescriptor) []storage.Tariff {
	out := make([]storage.Tariff, 0, len(list))
	for _, t := range list {
		out = append(out, t.storageRow())
	}
	return out
}

func (t TariffDescriptor) storageRow() storage.Tariff {
	return storage.Tariff{
		Key:        t.Key,
		Name:       t.Name,
		Currency:   t.Currency,
		LandingURL: t.LandingURL,
		PDFPath:    t.PDFPath,
		Notes:      t.Notes,
	}
}

func descriptorFromRow(row storage.Tariff) TariffDescriptor {
	return TariffDescriptor{
		Key:        row.Key,
		Name:       row.Name,
		Currency:   row.Currency,
		LandingURL: row.LandingURL,
		PDFPath:    row.PDFPath,
		Notes:      row.Notes,
	}
}
