// Package format renders numbers and labels for axes, tooltips and captions.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Label formatters accepted in chart input.
const (
	FormatterNone    = ""
	FormatterDay     = "day"
	FormatterHour    = "hour"
	FormatterFiveMin = "5min"
	FormatterDayHour = "dayHour"
)

// nanoTON is the number of base units in one TON.
const nanoTON = 1e9

var printer = message.NewPrinter(language.English)

// Float formats a float with at most the given number of decimals,
// trimming trailing zeros.
func Float(value float64, decimals int) string {
	formatted := strconv.FormatFloat(value, 'f', decimals, 64)

	// Only trim zeros after decimal point, not before it.
	if decimals > 0 && strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimRight(formatted, ".")
	}

	if formatted == "" || formatted == "-0" {
		formatted = "0"
	}

	return formatted
}

// Humanize abbreviates large values: 1500 becomes "1.5K", 2300000 "2.3M".
func Humanize(value float64, decimals int) string {
	abs := math.Abs(value)
	switch {
	case abs >= 1e9:
		return Float(value/1e9, decimals) + "B"
	case abs >= 1e6:
		return Float(value/1e6, decimals) + "M"
	case abs >= 1e3:
		return Float(value/1e3, decimals) + "K"
	case abs > 0 && abs < 1:
		return Float(value, 2)
	default:
		return Float(value, decimals)
	}
}

// Integer formats a value rounded to an integer with thousands separators.
func Integer(value float64) string {
	return printer.Sprintf("%d", int64(math.Round(value)))
}

// Crypto formats an amount given in nanoTON as TON.
func Crypto(value float64) string {
	ton := value / nanoTON
	switch abs := math.Abs(ton); {
	case abs >= 1000:
		return printer.Sprintf("%d", int64(math.Round(ton)))
	case abs >= 1:
		return Float(ton, 2)
	default:
		return Float(ton, 4)
	}
}

// Currency formats a USD amount converted from nanoTON with the given rate.
func Currency(value, rate float64) string {
	usd := value / nanoTON * rate
	if math.Abs(usd) >= 1000 {
		return "$" + Integer(usd)
	}
	return "$" + Float(usd, 2)
}

// Percent formats a share in [0, 1] as a percentage.
func Percent(share float64) string {
	p := share * 100
	if p > 0 && p < 1 {
		return "<1%"
	}
	return strconv.Itoa(int(math.Round(p))) + "%"
}

// Label formats an x label value with the given formatter.
//
// Values of time formatters are Unix milliseconds in UTC.
func Label(value float64, formatter string) string {
	switch formatter {
	case FormatterDay:
		return toTime(value).Format("Jan 2")
	case FormatterHour, FormatterFiveMin:
		return toTime(value).Format("15:04")
	case FormatterDayHour:
		return toTime(value).Format("Jan 2, 15:04")
	default:
		return Float(value, 2)
	}
}

// Title formats a label value for a tooltip title.
func Title(value float64, formatter string) string {
	switch formatter {
	case FormatterDay:
		return toTime(value).Format("Mon, 2 Jan 2006")
	case FormatterHour, FormatterFiveMin:
		return toTime(value).Format("15:04")
	case FormatterDayHour:
		return toTime(value).Format("Mon, 2 Jan 15:04")
	default:
		return Float(value, 2)
	}
}

// Caption formats the visible range for the header caption.
func Caption(from, to float64, formatter string) string {
	switch formatter {
	case FormatterDay, FormatterDayHour:
		fromText := toTime(from).Format("2 January 2006")
		toText := toTime(to).Format("2 January 2006")
		if fromText == toText {
			return toTime(from).Format("Monday, 2 January 2006")
		}
		return fromText + " - " + toText
	case FormatterHour, FormatterFiveMin:
		return toTime(from).Format("Monday, 2 January 2006")
	default:
		return Float(from, 2) + " - " + Float(to, 2)
	}
}

func toTime(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}
