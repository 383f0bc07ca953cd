package ingest

import (
	"strings"
	"unicode"

	"github.com/flexfleet/flexdispatch/core/model"
)

// locationAliases maps the spellings found in the registration documents to
// the canonical depot codes used by the travel time matrix.
var locationAliases = map[string]string{
	"TIEL":     "TL",
	"XTL":      "TL",
	"ALP":      "ALR",
	"NWG":      "NIWG",
	"ZMB":      "ZBM",
	"WVWN":     "WVN",
	"XSAD":     "XASD",
	"ELST":     "ELT",
	"EXTWW":    "XWW",
	"EXT WW":   "XWW",
	"EX WW":    "XWW",
	"EXWW":     "XWW",
	"WW":       "XWW",
	"ASDZO":    "ASD",
	"ASD ZO":   "ASD",
	"ASZO":     "ASD",
	"SNI (BE)": "SNI",
	"OEV (BE)": "OEV",
	"OEVEL":    "OEV",
	"VIL (BE)": "VIL",
	"VILV":     "VIL",
	"DTD (BE)": "DTD",
	"WMG":      "WML",
	"WML (BE)": "WML",
	"ARD (BE)": "ARD",
	"NAM (BE)": "NAM",
	"STT (BE)": "STT",
	"TEM":      "NAM",
	"TEM (BE)": "NAM",
	"STN":      "STT",
	"WB (BE)":  "WB",
	"ZWO":      "ZL",
	"ZWD":      "ZL",
	"SKP NMG":  "SKP",
}

// NormalizeLocation canonicalises a location code from a registration
// document. It trims whitespace, uppercases, and resolves known aliases.
func NormalizeLocation(raw string) model.Location {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if canon, ok := locationAliases[s]; ok {
		return model.Location(canon)
	}
	return model.Location(s)
}

// baseAliases resolves full truck names from the roster that do not reduce
// to a depot code by stripping digits alone.
var baseAliases = map[string]string{
	"BFC":           "BFC",
	"BOL 2":         "TB",
	"BOL.COM":       "TB",
	"BLUE ALR":      "ALR",
	"BLUEFL ALR":    "ALR",
	"BLUE ALM":      "ALR",
	"BLUEFL TB":     "TB",
	"FLEX ALR":      "ALR",
	"BOLVW":         "HT",
	"BLUE FLEX ALR": "ALR",
	"BLUE FLEX TB":  "TB",
	"BLUE TB":       "TB",
	"FLEX EXT WW":   "XWW",
	"FLEX WMG":      "WML",
	"NWG EMB A":     "NIWG",
	"FLEX BOL":      "BFC",
	"FLEX BOL 1":    "BFC",
	"FLEX BOL 2":    "BFC",
	"FLEX BFC":      "TB",
	"BLUEFLEX ALR":  "ALR",
	"BLUEFLEX TB":   "TB",
	"BLEUFLEX TB":   "TB",
}

// TruckBase extracts the home base depot from a roster truck name. Names
// carry a depot prefix, sometimes decorated with digits or fleet labels.
func TruckBase(name string) model.Location {
	name = strings.ToUpper(strings.TrimSpace(name))
	if canon, ok := baseAliases[name]; ok {
		return model.Location(canon)
	}
	first := name
	if i := strings.IndexByte(first, ' '); i >= 0 {
		first = first[:i]
	}
	first = strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, first)
	return NormalizeLocation(first)
}
