package rates

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	pdf "github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"

	"github.com/bher20/ebillcalc/internal/billing"
)

var (
	// "0-75 3.50", "76 to 200 units: Tk 4.75"
	boundedSlabRe = regexp.MustCompile(`(?im)^\s*(\d+)\s*(?:-|–|to)\s*(\d+)\s*(?:units?|kwh)?\s*[:=]?\s*(?:tk\.?|bdt|৳)?\s*(\d+(?:\.\d+)?)\s*$`)
	// "401+ 9.90", "401 - above 9.90", "401 and above 9.90"
	openSlabRe = regexp.MustCompile(`(?im)^\s*(\d+)\s*(?:\+|(?:-|–|to)?\s*(?:and\s+)?above)\s*(?:units?|kwh)?\s*[:=]?\s*(?:tk\.?|bdt|৳)?\s*(\d+(?:\.\d+)?)\s*$`)
)

func init() {
	RegisterParser(ParserConfig{
		Key:       SlabParser,
		Name:      "Slab table",
		ParsePDF:  ParseSlabPDF,
		ParseText: ParseSlabText,
	})
}

// ParseSlabPDF extracts the text of a tariff PDF and parses its slab table.
func ParseSlabPDF(path string) (*billing.RateSchedule, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	rc, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}

	return ParseSlabText(buf.String())
}

// ParseSlabText reads one band per line. Lines that do not look like a band
// are ignored. The result is validated like any other schedule, so gaps or
// a missing open-ended band surface as billing.InvalidScheduleError.
func ParseSlabText(text string) (*billing.RateSchedule, error) {
	var bands []billing.RateBand

	for _, m := range boundedSlabRe.FindAllStringSubmatch(text, -1) {
		b, err := slabBand(m[1], m[2], m[3])
		if err != nil {
			return nil, err
		}
		bands = append(bands, b)
	}
	for _, m := range openSlabRe.FindAllStringSubmatch(text, -1) {
		b, err := slabBand(m[1], "", m[2])
		if err != nil {
			return nil, err
		}
		bands = append(bands, b)
	}

	sort.SliceStable(bands, func(i, j int) bool { return bands[i].Lower < bands[j].Lower })
	return billing.NewRateSchedule(bands)
}

func slabBand(lower, upper, rate string) (billing.RateBand, error) {
	lo, err := strconv.ParseInt(lower, 10, 64)
	if err != nil {
		return billing.RateBand{}, &billing.InvalidInputError{Field: "lower", Value: lower}
	}
	hi := billing.Unbounded
	if upper != "" {
		hi, err = strconv.ParseInt(upper, 10, 64)
		if err != nil {
			return billing.RateBand{}, &billing.InvalidInputError{Field: "upper", Value: upper}
		}
	}
	r, err := decimal.NewFromString(strings.TrimSpace(rate))
	if err != nil {
		return billing.RateBand{}, &billing.InvalidInputError{Field: "rate", Value: rate}
	}
	return billing.RateBand{Lower: lo, Upper: hi, Rate: r}, nil
}
