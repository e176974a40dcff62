package parse

import "github.com/MobilityData/gtfs-validator-sub014/pkg/notice"

// Field-level notices. Errors leave the field absent; warnings keep the
// parsed value.
var (
	InvalidInteger      = notice.Define("invalid_integer", notice.Error)
	InvalidFloat        = notice.Define("invalid_float", notice.Error)
	InvalidDate         = notice.Define("invalid_date", notice.Error)
	InvalidTime         = notice.Define("invalid_time", notice.Error)
	InvalidColor        = notice.Define("invalid_color", notice.Error)
	InvalidURL          = notice.Define("invalid_url", notice.Error)
	InvalidEmail        = notice.Define("invalid_email", notice.Error)
	InvalidPhoneNumber  = notice.Define("invalid_phone_number", notice.Error)
	InvalidCurrency     = notice.Define("invalid_currency", notice.Error)
	InvalidTimezone     = notice.Define("invalid_timezone", notice.Error)
	InvalidLanguageCode = notice.Define("invalid_language_code", notice.Error)
	NumberOutOfRange    = notice.Define("number_out_of_range", notice.Error)

	UnexpectedEnumValue     = notice.Define("unexpected_enum_value", notice.Warning)
	SuspiciousNumericValue  = notice.Define("suspicious_numeric_value", notice.Warning)
	LeadingOrTrailingSpaces = notice.Define("leading_or_trailing_whitespaces", notice.Warning)
	NonASCIIOrNonPrintable  = notice.Define("non_ascii_or_non_printable_char", notice.Warning)
)
